package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/focusflow/internal/domain"
)

// ErrEmailTaken is returned when a user with the same email exists
var ErrEmailTaken = errors.New("email already registered")

const defaultAvatar = "https://picsum.photos/200"

const userColumns = `id, name, email, avatar, style, work_start, work_end, daily_goal_hours,
	onboarding_complete, notify_daily_summary, notify_distraction_alert, notify_weekly_report,
	cloud_sync_enabled, created_at`

// CreateUser creates a user with default preferences and returns it
func (s *Store) CreateUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	u := domain.User{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Email:          in.Email,
		Avatar:         defaultAvatar,
		Style:          in.Style,
		WorkStart:      "09:00",
		WorkEnd:        "17:00",
		DailyGoalHours: 8,
		Settings:       domain.DefaultSettings(),
		CreatedAt:      time.Now().UTC(),
	}
	if u.Style == "" {
		u.Style = "Balanced"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, avatar, style, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.Avatar, u.Style, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Style, &u.WorkStart, &u.WorkEnd, &u.DailyGoalHours,
		&u.OnboardingComplete, &u.Settings.DailySummary, &u.Settings.DistractionAlerts,
		&u.Settings.WeeklyReport, &u.Settings.CloudSync, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies a profile patch and returns the updated user
func (s *Store) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return u, nil
	}
	patch.Apply(u)

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, avatar = ?, style = ?, daily_goal_hours = ? WHERE id = ?",
		u.Name, u.Avatar, u.Style, u.DailyGoalHours, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := affectedOne(res, "update profile"); err != nil {
		return nil, err
	}
	return u, nil
}

// GetSettings returns the user's preferences
func (s *Store) GetSettings(ctx context.Context, id string) (domain.Settings, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.Settings{}, err
	}
	return u.Settings, nil
}

// UpdateSettings applies a settings patch and returns the resulting settings
func (s *Store) UpdateSettings(ctx context.Context, id string, patch domain.SettingsPatch) (domain.Settings, error) {
	settings, err := s.GetSettings(ctx, id)
	if err != nil {
		return domain.Settings{}, err
	}
	patch.Apply(&settings)

	res, err := s.db.ExecContext(ctx, `UPDATE users SET notify_daily_summary = ?, notify_distraction_alert = ?,
		notify_weekly_report = ?, cloud_sync_enabled = ? WHERE id = ?`,
		settings.DailySummary, settings.DistractionAlerts, settings.WeeklyReport, settings.CloudSync, id,
	)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	if err := affectedOne(res, "update settings"); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// CompleteOnboarding stores the onboarding answers and marks the user as onboarded
func (s *Store) CompleteOnboarding(ctx context.Context, id string, in domain.Onboarding) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET style = ?, work_start = ?, work_end = ?, onboarding_complete = 1 WHERE id = ?",
		in.Style, in.WorkStart, in.WorkEnd, id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}
	if err := affectedOne(res, "complete onboarding"); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user and everything they own
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return affectedOne(res, "delete user")
}
