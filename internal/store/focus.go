package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/focusflow/internal/domain"
)

// ErrSessionEnded is returned when ending a session twice
var ErrSessionEnded = errors.New("focus session already ended")

const focusColumns = "id, user_id, start_time, end_time, duration_seconds, blocked_notifications"

// StartFocus opens a focus session. A zero start time means now.
func (s *Store) StartFocus(ctx context.Context, userID string, in domain.FocusStart) (*domain.FocusSession, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	start := time.Now().UTC()
	if in.StartTime != nil && !in.StartTime.IsZero() {
		start = in.StartTime.UTC()
	}
	fs := domain.FocusSession{
		ID:                   uuid.New().String(),
		UserID:               userID,
		StartTime:            start,
		BlockedNotifications: in.BlockedNotifications,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO focus_sessions (id, user_id, start_time, blocked_notifications) VALUES (?, ?, ?, ?)",
		fs.ID, fs.UserID, fs.StartTime, fs.BlockedNotifications,
	)
	if err != nil {
		return nil, fmt.Errorf("insert focus session: %w", err)
	}
	return &fs, nil
}

// EndFocus closes a session at the given time and records its duration
func (s *Store) EndFocus(ctx context.Context, userID, id string, end time.Time) (*domain.FocusSession, error) {
	fs, err := s.getFocus(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !fs.Open() {
		return nil, ErrSessionEnded
	}

	end = end.UTC()
	duration := int(end.Sub(fs.StartTime).Seconds())
	res, err := s.db.ExecContext(ctx,
		"UPDATE focus_sessions SET end_time = ?, duration_seconds = ? WHERE id = ? AND user_id = ?",
		end, duration, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("end focus session: %w", err)
	}
	if err := affectedOne(res, "end focus session"); err != nil {
		return nil, err
	}

	fs.EndTime = &end
	fs.DurationSeconds = &duration
	return fs, nil
}

func (s *Store) getFocus(ctx context.Context, userID, id string) (*domain.FocusSession, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+focusColumns+" FROM focus_sessions WHERE id = ? AND user_id = ?", id, userID,
	)
	fs, err := scanFocus(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get focus session: %w", err)
	}
	return fs, nil
}

// ListFocusSessions returns the user's sessions started at or after since, oldest first
func (s *Store) ListFocusSessions(ctx context.Context, userID string, since time.Time) ([]domain.FocusSession, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+focusColumns+" FROM focus_sessions WHERE user_id = ? AND start_time >= ? ORDER BY start_time",
		userID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.FocusSession{}
	for rows.Next() {
		fs, err := scanFocus(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan focus session: %w", err)
		}
		sessions = append(sessions, *fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter focus sessions: %w", err)
	}
	return sessions, nil
}

func scanFocus(scan func(dest ...any) error) (*domain.FocusSession, error) {
	var (
		fs       domain.FocusSession
		end      sql.NullTime
		duration sql.NullInt64
	)
	if err := scan(&fs.ID, &fs.UserID, &fs.StartTime, &end, &duration, &fs.BlockedNotifications); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time.UTC()
		fs.EndTime = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		fs.DurationSeconds = &d
	}
	fs.StartTime = fs.StartTime.UTC()
	return &fs, nil
}
