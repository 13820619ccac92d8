package domain

// TaskPatch is a partial task update. Only non-nil fields are applied.
type TaskPatch struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	Category *string `json:"category"`
	DueDate  *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority *string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status   *string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	Progress *int    `json:"progress" validate:"omitempty,min=0,max=100"`
}

// Empty reports whether the patch sets nothing
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.DueDate == nil &&
		p.Priority == nil && p.Status == nil && p.Progress == nil
}

// Apply merges the patch into t
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
}

// StatusPatch is the patch used by the status shortcut: completing a task sets
// its progress to 100, any other status resets it to 0.
func StatusPatch(status string) TaskPatch {
	progress := 0
	if status == StatusCompleted {
		progress = 100
	}
	return TaskPatch{Status: &status, Progress: &progress}
}

// ProfilePatch is a partial profile update
type ProfilePatch struct {
	Name           *string `json:"name" validate:"omitempty,min=1"`
	Avatar         *string `json:"avatar" validate:"omitempty,url"`
	Style          *string `json:"style" validate:"omitempty,oneof=Balanced High-Focus Flexible"`
	DailyGoalHours *int    `json:"daily_goal_hours" validate:"omitempty,min=1,max=24"`
}

func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Avatar == nil && p.Style == nil && p.DailyGoalHours == nil
}

func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Style != nil {
		u.Style = *p.Style
	}
	if p.DailyGoalHours != nil {
		u.DailyGoalHours = *p.DailyGoalHours
	}
}

// SettingsPatch is a partial settings update
type SettingsPatch struct {
	DailySummary      *bool `json:"notifications_daily_summary"`
	DistractionAlerts *bool `json:"notifications_distraction_alerts"`
	WeeklyReport      *bool `json:"notifications_weekly_report"`
	CloudSync         *bool `json:"cloud_sync_enabled"`
}

func (p SettingsPatch) Empty() bool {
	return p.DailySummary == nil && p.DistractionAlerts == nil && p.WeeklyReport == nil && p.CloudSync == nil
}

func (p SettingsPatch) Apply(s *Settings) {
	if p.DailySummary != nil {
		s.DailySummary = *p.DailySummary
	}
	if p.DistractionAlerts != nil {
		s.DistractionAlerts = *p.DistractionAlerts
	}
	if p.WeeklyReport != nil {
		s.WeeklyReport = *p.WeeklyReport
	}
	if p.CloudSync != nil {
		s.CloudSync = *p.CloudSync
	}
}
