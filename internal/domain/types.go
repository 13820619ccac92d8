package domain

import "time"

// Task statuses
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// User is a FocusFlow account with its profile and preferences
type User struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Avatar             string    `json:"avatar"`
	Style              string    `json:"style"`
	WorkStart          string    `json:"work_start"`
	WorkEnd            string    `json:"work_end"`
	DailyGoalHours     int       `json:"dailyGoalHours"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	Settings           Settings  `json:"settings"`
	CreatedAt          time.Time `json:"created_at"`
}

// Settings holds notification and sync preferences
type Settings struct {
	DailySummary      bool `json:"notifications_daily_summary"`
	DistractionAlerts bool `json:"notifications_distraction_alerts"`
	WeeklyReport      bool `json:"notifications_weekly_report"`
	CloudSync         bool `json:"cloud_sync_enabled"`
}

// DefaultSettings enables everything
func DefaultSettings() Settings {
	return Settings{DailySummary: true, DistractionAlerts: true, WeeklyReport: true, CloudSync: true}
}

// NewUser is the payload for creating a user
type NewUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Style string `json:"style" validate:"omitempty,oneof=Balanced High-Focus Flexible"`
}

// Task is a to-do item owned by a user
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	DueDate   *string   `json:"dueDate"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTask is the payload for creating a task
type NewTask struct {
	Title    string  `json:"title" validate:"required"`
	Category string  `json:"category"`
	DueDate  *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority string  `json:"priority" validate:"omitempty,oneof=Low Medium High"`
}

// FocusSession is one focus-mode run. EndTime and DurationSeconds stay nil
// while the session is open.
type FocusSession struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
	DurationSeconds      *int       `json:"duration_seconds"`
	BlockedNotifications bool       `json:"blocked_notifications"`
}

// Open reports whether the session has not ended yet
func (s FocusSession) Open() bool {
	return s.EndTime == nil
}

// FocusStart is the payload for starting a session
type FocusStart struct {
	BlockedNotifications bool       `json:"blocked_notifications"`
	StartTime            *time.Time `json:"start_time"`
}

// FocusEnd is the payload for ending a session
type FocusEnd struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Onboarding is the payload sent once after signup
type Onboarding struct {
	Style     string `json:"style" validate:"required,oneof=Balanced High-Focus Flexible"`
	WorkStart string `json:"work_start" validate:"required,datetime=15:04"`
	WorkEnd   string `json:"work_end" validate:"required,datetime=15:04"`
}
