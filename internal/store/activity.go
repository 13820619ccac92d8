package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/focusflow/internal/features"
)

// AddActivity stores raw activity records verbatim. Records are not validated
// here; the feature pipeline copes with whatever clients send.
func (s *Store) AddActivity(ctx context.Context, userID string, raws []features.RawLog) (int, error) {
	if len(raws) == 0 {
		return 0, nil
	}
	if _, err := s.GetUser(ctx, userID); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO activity_logs (id, user_id, payload, occurred_at, received_at) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("prepare activity insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, raw := range raws {
		payload, err := json.Marshal(raw)
		if err != nil {
			return 0, fmt.Errorf("encode activity %d: %w", i, err)
		}
		var occurred sql.NullTime
		if ts := features.ParseTimestamp(raw[features.KeyTimestamp]); ts.Valid() {
			occurred = sql.NullTime{Time: ts.Time, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), userID, string(payload), occurred, now); err != nil {
			return 0, fmt.Errorf("insert activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit activity: %w", err)
	}
	return len(raws), nil
}

// ListActivity returns the user's raw records in [since, until). A record is
// placed by its own timestamp when it has a usable one, else by when it was
// received.
func (s *Store) ListActivity(ctx context.Context, userID string, since, until time.Time) ([]features.RawLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM activity_logs
		WHERE user_id = ?
		  AND COALESCE(occurred_at, received_at) >= ?
		  AND COALESCE(occurred_at, received_at) < ?
		ORDER BY received_at, rowid`,
		userID, since.UTC(), until.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	raws := []features.RawLog{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		var raw features.RawLog
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter activity: %w", err)
	}
	return raws, nil
}
