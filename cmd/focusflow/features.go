package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/focusflow/internal/classifier"
	"github.com/pbaille/focusflow/internal/features"
)

func featuresCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "features [user-id]",
		Short: "Show the daily features and normalized vector for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := features.Day(time.Now())
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
				day = d
			}

			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			raws, err := s.ListActivity(cmd.Context(), args[0], day, day.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			res := features.Compute(raws)
			if n := len(res.Table.Issues()); n > 0 {
				log.Warn("records without usable timestamp", "count", n)
			}

			clf, err := loadClassifier()
			if err != nil {
				return err
			}
			raw := res.Features.Map()

			fmt.Printf("%s  (%d records)\n\n", day.Format(time.DateOnly), res.Table.Len())
			for _, k := range features.FeatureKeys {
				fmt.Printf("  %-20s %10v %8.4f\n", k, raw[k], res.Vector.Float(k))
			}
			pred := classifier.Predict(clf, res.Features)
			fmt.Printf("\nWorkload: %s (completion %.0f%%)\n", pred.Workload, pred.CompletionProbability*100)
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "UTC day (YYYY-MM-DD, default today)")
	return cmd
}

func seriesCmd() *cobra.Command {
	var (
		days     int
		forecast int
	)

	cmd := &cobra.Command{
		Use:   "series [user-id]",
		Short: "Show the daily forecasting series and a short forecast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			s, err := getStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			now := time.Now()
			today := features.Day(now)
			raws, err := s.ListActivity(cmd.Context(), args[0], today.AddDate(0, 0, -(days-1)), today.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			series := features.BuildSeries(features.Normalize(raws))
			if len(series) == 0 {
				fmt.Println("No dated activity in range.")
			}
			for _, p := range series {
				fmt.Printf("%s  %8.2f\n", p.DS.Format(time.DateOnly), p.Y)
			}

			if forecast > 0 {
				fmt.Println("\nForecast:")
				for _, o := range classifier.WeekAhead(classifier.WeekdayMean{}, series, now, forecast) {
					fmt.Printf("%s %s  %3d%%\n", o.Date.Format(time.DateOnly), o.Day, o.CompletionProb)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 30, "days of history")
	cmd.Flags().IntVarP(&forecast, "forecast", "f", 0, "days to forecast")
	return cmd
}
