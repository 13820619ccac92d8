package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/features"
	"github.com/pbaille/focusflow/internal/ingest"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var style string
	add := &cobra.Command{
		Use:   "add [name] [email]",
		Short: "Create a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.NewUser{Name: args[0], Email: args[1], Style: style}
			if err := domain.Validate(in); err != nil {
				return err
			}
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s)\n", u.ID, u.Email)
			return nil
		},
	}
	add.Flags().StringVar(&style, "style", "", "work style (Balanced, High-Focus, Flexible)")

	show := &cobra.Command{
		Use:   "show [user-id]",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.GetUser(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}
			fmt.Printf("ID:         %s\n", u.ID)
			fmt.Printf("Name:       %s <%s>\n", u.Name, u.Email)
			fmt.Printf("Style:      %s, %s-%s, goal %dh\n", u.Style, u.WorkStart, u.WorkEnd, u.DailyGoalHours)
			fmt.Printf("Onboarded:  %t\n", u.OnboardingComplete)
			fmt.Printf("Created:    %s\n", u.CreatedAt.Format(time.DateTime))
			return nil
		},
	}

	cmd.AddCommand(add, show)
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage a user's tasks",
	}

	var priority, category, due string
	add := &cobra.Command{
		Use:   "add [user-id] [title]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.NewTask{Title: strings.Join(args[1:], " "), Category: category, Priority: priority}
			if due != "" {
				in.DueDate = &due
			}
			if err := domain.Validate(in); err != nil {
				return err
			}
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.CreateTask(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			fmt.Printf("Added task %s: %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	add.Flags().StringVarP(&priority, "priority", "p", "", "Low, Medium or High")
	add.Flags().StringVarP(&category, "category", "c", "", "task category")
	add.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")

	list := &cobra.Command{
		Use:   "list [user-id]",
		Short: "List tasks, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.ListTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks yet. Use 'focusflow task add' to create one.")
				return nil
			}
			for _, t := range tasks {
				fmt.Printf("%s  %-11s %3d%%  %s\n", shortID(t.ID), t.Status, t.Progress, truncate(t.Title, 50))
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status [user-id] [task-id-prefix] [status]",
		Short: "Set a task's status (TODO, IN_PROGRESS, COMPLETED)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.StatusPatch(strings.ToUpper(args[2]))
			if err := domain.Validate(patch); err != nil {
				return err
			}
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.ListTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var found string
			for _, t := range tasks {
				if strings.HasPrefix(t.ID, args[1]) {
					found = t.ID
					break
				}
			}
			if found == "" {
				return fmt.Errorf("task not found: %s", args[1])
			}

			t, err := s.UpdateTask(cmd.Context(), args[0], found, patch)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s (%d%%)\n", shortID(t.ID), t.Status, t.Progress)
			return nil
		},
	}

	cmd.AddCommand(add, list, status)
	return cmd
}

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record raw activity",
	}

	var (
		value  float64
		source string
		at     string
	)
	add := &cobra.Command{
		Use:   "add [user-id] [event-type]",
		Short: "Record one activity event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := features.RawLog{
				features.KeyEventType: args[1],
				features.KeyValue:     value,
				features.KeyTimestamp: time.Now().UTC().Format(time.RFC3339),
			}
			if at != "" {
				raw[features.KeyTimestamp] = at
			}
			if source != "" {
				raw[features.KeySource] = source
			}
			if ts := features.ParseTimestamp(raw[features.KeyTimestamp]); !ts.Valid() {
				log.Warn("timestamp will be treated as missing", "reason", ts.Reason)
			}
			return storeActivity(cmd, args[0], []features.RawLog{raw})
		},
	}
	add.Flags().Float64VarP(&value, "value", "v", 0, "event value")
	add.Flags().StringVarP(&source, "source", "s", "", "event source (app or site)")
	add.Flags().StringVar(&at, "at", "", "event time (default now)")

	imp := &cobra.Command{
		Use:   "import [user-id] [file.json]",
		Short: "Import a JSON object or array of activity records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			raws, err := ingest.DecodePayload(data)
			if err != nil {
				return err
			}
			return storeActivity(cmd, args[0], raws)
		},
	}

	cmd.AddCommand(add, imp)
	return cmd
}

func storeActivity(cmd *cobra.Command, userID string, raws []features.RawLog) error {
	s, err := getStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.AddActivity(cmd.Context(), userID, raws)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %d record(s)\n", n)
	return nil
}
