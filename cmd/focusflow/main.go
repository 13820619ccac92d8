package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/logging"
	"github.com/pbaille/focusflow/internal/store"
)

var (
	cfg *config.Config
	log logging.Logger
)

func main() {
	cfg = config.Load()

	rootCmd := &cobra.Command{
		Use:           "focusflow",
		Short:         "Productivity tracking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(&logging.Config{
				Level:      logging.ParseLevel(cfg.LogLevel),
				Output:     os.Stderr,
				JSON:       cfg.LogJSON,
				TimeFormat: time.TimeOnly,
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "database path")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log as JSON")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(featuresCmd())
	rootCmd.AddCommand(seriesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func getStore(cmd *cobra.Command) (*store.Store, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return store.New(cmd.Context(), store.Config{Path: cfg.DBPath})
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := s.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s at schema version %d\n", cfg.DBPath, v)
			return nil
		},
	}
}

// truncate shortens s to at most width runes, ending with "..." when cut
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:max(width, 0)])
	}
	return string(r[:width-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
