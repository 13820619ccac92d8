package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/focusflow/internal/features"
	"github.com/pbaille/focusflow/internal/ingest"
	"github.com/pbaille/focusflow/internal/logging"
	"github.com/pbaille/focusflow/internal/metrics"
)

const (
	maxActivityBody   = 4 << 20
	defaultSeriesDays = 30
	maxSeriesDays     = 365
)

func (s *Server) addActivity(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxActivityBody))
	if err != nil {
		fail(c, fmt.Errorf("%w: read body: %v", errBadRequest, err))
		return
	}
	raws, err := ingest.DecodePayload(body)
	if err != nil {
		fail(c, err)
		return
	}
	n, err := s.store.AddActivity(c.Request.Context(), userID(c), raws)
	if err != nil {
		fail(c, err)
		return
	}
	s.metrics.RecordsIngested(metrics.SourceHTTP, n)
	c.JSON(http.StatusCreated, gin.H{"stored": n})
}

// FeaturesResponse is the feature view of one UTC day
type FeaturesResponse struct {
	Date     string                 `json:"date"`
	Records  int                    `json:"records"`
	Issues   int                    `json:"issues"`
	Features features.DailyFeatures `json:"features"`
	Vector   features.Vector        `json:"vector"`
}

func (s *Server) activityFeatures(c *gin.Context) {
	day := features.Day(s.now())
	if q := c.Query("date"); q != "" {
		d, err := time.Parse(time.DateOnly, q)
		if err != nil {
			fail(c, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadRequest))
			return
		}
		day = d
	}

	res, err := s.loadFeatures(c.Request.Context(), userID(c), day, day.AddDate(0, 0, 1))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FeaturesResponse{
		Date:     day.Format(time.DateOnly),
		Records:  res.Table.Len(),
		Issues:   len(res.Table.Issues()),
		Features: res.Features,
		Vector:   res.Vector,
	})
}

func (s *Server) activitySeries(c *gin.Context) {
	days, err := queryDays(c, defaultSeriesDays)
	if err != nil {
		fail(c, err)
		return
	}
	since, until := s.lastDays(days)
	table, err := s.loadTable(c.Request.Context(), userID(c), since, until)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, features.BuildSeries(table))
}

func queryDays(c *gin.Context, fallback int) (int, error) {
	q := c.Query("days")
	if q == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(q)
	if err != nil || days < 1 || days > maxSeriesDays {
		return 0, fmt.Errorf("%w: days must be between 1 and %d", errBadRequest, maxSeriesDays)
	}
	return days, nil
}

// lastDays returns the window covering today and the days-1 UTC days before it
func (s *Server) lastDays(days int) (since, until time.Time) {
	today := features.Day(s.now())
	return today.AddDate(0, 0, -(days - 1)), today.AddDate(0, 0, 1)
}

// loadTable reads the user's raw activity in [since, until) and normalizes it
func (s *Server) loadTable(ctx context.Context, userID string, since, until time.Time) (*features.Table, error) {
	raws, err := s.store.ListActivity(ctx, userID, since, until)
	if err != nil {
		return nil, err
	}
	table := features.Normalize(raws)
	logIssues(ctx, userID, table)
	return table, nil
}

// loadFeatures runs the feature pipeline over the user's activity in [since, until)
func (s *Server) loadFeatures(ctx context.Context, userID string, since, until time.Time) (features.Result, error) {
	raws, err := s.store.ListActivity(ctx, userID, since, until)
	if err != nil {
		return features.Result{}, err
	}
	res := features.Compute(raws)
	logIssues(ctx, userID, res.Table)
	s.metrics.FeatureVectorComputed(len(res.Table.Issues()))
	return res, nil
}

func logIssues(ctx context.Context, userID string, t *features.Table) {
	if n := len(t.Issues()); n > 0 {
		logging.FromContext(ctx).Debug("records without usable timestamp", "user", userID, "count", n)
	}
}
