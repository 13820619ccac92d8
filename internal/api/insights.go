package api

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/pbaille/focusflow/internal/analytics"
	"github.com/pbaille/focusflow/internal/classifier"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/features"
)

// Look-back windows, in days, for the aggregate views
const (
	weekDays           = 7
	summaryDays        = 30
	recommendationDays = 14
	forecastHistory    = 60
	forecastHorizon    = 7
	upNextCount        = 3
)

// DashboardSummary feeds the dashboard cards
type DashboardSummary struct {
	FocusScore      string            `json:"focusScore"`
	TasksCompleted  int               `json:"tasksCompleted"`
	DistractionTime string            `json:"distractionTime"`
	AIAlerts        []analytics.Alert `json:"aiAlerts"`
	UpNextTasks     []domain.Task     `json:"upNextTasks"`
}

func (s *Server) dashboardSummary(c *gin.Context) {
	var (
		tasks []domain.Task
		res   features.Result
		uid   = userID(c)
	)
	since, until := s.lastDays(1)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		tasks, err = s.store.ListTasks(ctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		res, err = s.loadFeatures(ctx, uid, since, until)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err)
		return
	}

	summary := DashboardSummary{
		FocusScore:      fmt.Sprintf("%d/100", int(math.Round(res.Features.AvgFocusScore))),
		DistractionTime: fmt.Sprintf("%dm", res.Features.DistractedMinutes),
		AIAlerts:        analytics.Alerts(res.Table),
		UpNextTasks:     []domain.Task{},
	}
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			summary.TasksCompleted++
		} else if len(summary.UpNextTasks) < upNextCount {
			summary.UpNextTasks = append(summary.UpNextTasks, t)
		}
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) dashboardHourly(c *gin.Context) {
	s.hourly(c, 8, 18)
}

func (s *Server) analyticsDailyTrend(c *gin.Context) {
	s.hourly(c, 8, 19)
}

func (s *Server) hourly(c *gin.Context, from, to int) {
	since, until := s.lastDays(1)
	table, err := s.loadTable(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.HourlyTrend(table, from, to))
}

func (s *Server) analyticsWeekly(c *gin.Context) {
	var (
		sessions []domain.FocusSession
		table    *features.Table
		uid      = userID(c)
	)
	since, until := s.lastDays(weekDays)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		sessions, err = s.store.ListFocusSessions(ctx, uid, since)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = s.loadTable(ctx, uid, since, until)
		return err
	})
	if err := g.Wait(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.Weekly(table, sessions))
}

func (s *Server) analyticsSummary(c *gin.Context) {
	since, until := s.lastDays(summaryDays)
	table, err := s.loadTable(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.Summarize(table))
}

func (s *Server) analyticsBreakdown(c *gin.Context) {
	since, until := s.lastDays(weekDays)
	table, err := s.loadTable(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.Breakdown(table))
}

func (s *Server) predictTomorrow(c *gin.Context) {
	since, until := s.lastDays(1)
	res, err := s.loadFeatures(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classifier.Predict(s.classifier, res.Features))
}

// ScoreResponse is the prediction for an ad-hoc batch of raw logs
type ScoreResponse struct {
	classifier.Prediction
	Records  int                    `json:"records"`
	Issues   int                    `json:"issues"`
	Features features.DailyFeatures `json:"features"`
	Vector   features.Vector        `json:"vector"`
}

// scoreLogs runs the pipeline over a posted batch without storing it
func (s *Server) scoreLogs(c *gin.Context) {
	var payload any
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, fmt.Errorf("%w: invalid request body: %v", errBadRequest, err))
		return
	}
	res, err := features.ComputeFrom(payload)
	if err != nil {
		fail(c, err)
		return
	}
	s.metrics.FeatureVectorComputed(len(res.Table.Issues()))
	c.JSON(http.StatusOK, ScoreResponse{
		Prediction: classifier.Predict(s.classifier, res.Features),
		Records:    res.Table.Len(),
		Issues:     len(res.Table.Issues()),
		Features:   res.Features,
		Vector:     res.Vector,
	})
}

func (s *Server) recommendFocus(c *gin.Context) {
	since, until := s.lastDays(recommendationDays)
	table, err := s.loadTable(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics.Recommend(table))
}

func (s *Server) forecastWeek(c *gin.Context) {
	since, until := s.lastDays(forecastHistory)
	table, err := s.loadTable(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	history := features.BuildSeries(table)
	c.JSON(http.StatusOK, classifier.WeekAhead(s.forecaster, history, s.now(), forecastHorizon))
}
