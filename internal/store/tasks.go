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

const taskColumns = "id, user_id, title, category, due_date, priority, status, progress, created_at"

// CreateTask adds a TODO task for the user and returns it
func (s *Store) CreateTask(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error) {
	t := domain.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     in.Title,
		Category:  in.Category,
		DueDate:   in.DueDate,
		Priority:  in.Priority,
		Status:    domain.StatusTodo,
		CreatedAt: time.Now().UTC(),
	}
	if t.Category == "" {
		t.Category = "Work"
	}
	if t.Priority == "" {
		t.Priority = "Medium"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.Title, t.Category, t.DueDate, t.Priority, t.Status, t.Progress, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

// GetTask retrieves one of the user's tasks
func (s *Store) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	var t domain.Task
	err := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Category, &t.DueDate, &t.Priority, &t.Status, &t.Progress, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the user's tasks, newest first
func (s *Store) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Category, &t.DueDate, &t.Priority, &t.Status, &t.Progress, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a patch to one of the user's tasks and returns the result
func (s *Store) UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	t, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return t, nil
	}
	patch.Apply(t)

	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, category = ?, due_date = ?, priority = ?, status = ?, progress = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Category, t.DueDate, t.Priority, t.Status, t.Progress, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := affectedOne(res, "update task"); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTaskStatus changes a task's status, keeping progress in line with it
func (s *Store) SetTaskStatus(ctx context.Context, userID, id, status string) (*domain.Task, error) {
	return s.UpdateTask(ctx, userID, id, domain.StatusPatch(status))
}

// DeleteTask removes one of the user's tasks
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return affectedOne(res, "delete task")
}
