package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/focusflow/internal/analytics"
	"github.com/pbaille/focusflow/internal/classifier"
	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/logging"
	"github.com/pbaille/focusflow/internal/store"
)

// Monday 2024-01-08, mid-afternoon
var fixedNow = time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	store   *store.Store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.New(testContext(t), store.Config{Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := New(st, Options{
		CORSOrigins: []string{"http://localhost:3000"},
		Logger:      logging.NewForTests(),
		Now:         func() time.Time { return fixedNow },
	})
	return &testServer{handler: srv.Handler(), store: st}
}

func (ts *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) newUser(t *testing.T, email string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/users", "", map[string]string{"name": "Test", "email": email})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u domain.User
	decode(t, w, &u)
	return u.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func TestServiceRoutes(t *testing.T) {
	t.Run("Should answer the banner and health without a user", func(t *testing.T) {
		ts := setupServer(t)
		assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/", "", nil).Code)

		w := ts.do(t, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("Should reject user routes without the user header", func(t *testing.T) {
		ts := setupServer(t)
		w := ts.do(t, http.MethodGet, "/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), userHeader)
	})

	t.Run("Should answer CORS preflight for allowed origins", func(t *testing.T) {
		ts := setupServer(t)
		req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodOptions, "/tasks", nil)
		req.Header.Set("Origin", "http://evil.example")
		w = httptest.NewRecorder()
		ts.handler.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestUserRoutes(t *testing.T) {
	t.Run("Should validate and deduplicate signups", func(t *testing.T) {
		ts := setupServer(t)
		ts.newUser(t, "ada@example.com")

		w := ts.do(t, http.MethodPost, "/users", "", map[string]string{"name": "Ada", "email": "ada@example.com"})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = ts.do(t, http.MethodPost, "/users", "", map[string]string{"name": "Bad", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Email")

		w = ts.do(t, http.MethodPost, "/users", "", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should patch profile and settings", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "patch@example.com")

		w := ts.do(t, http.MethodPut, "/user/profile", id, map[string]any{"daily_goal_hours": 6})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var u domain.User
		decode(t, w, &u)
		assert.Equal(t, 6, u.DailyGoalHours)
		assert.Equal(t, "Test", u.Name)

		w = ts.do(t, http.MethodPut, "/user/profile", id, map[string]any{"daily_goal_hours": 40})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(t, http.MethodPut, "/user/settings", id, map[string]any{"notifications_weekly_report": false})
		require.Equal(t, http.StatusOK, w.Code)
		var settings domain.Settings
		decode(t, w, &settings)
		assert.False(t, settings.WeeklyReport)
		assert.True(t, settings.CloudSync)
	})

	t.Run("Should onboard and delete an account", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "onboard@example.com")

		w := ts.do(t, http.MethodPost, "/onboarding", id, map[string]string{
			"style": "Flexible", "work_start": "10:00", "work_end": "18:00",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"onboarding_complete":true`)

		w = ts.do(t, http.MethodPost, "/onboarding", id, map[string]string{
			"style": "Chaotic", "work_start": "10:00", "work_end": "18:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/user/delete", id, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/user/profile", id, nil).Code)
	})
}

func TestTaskRoutes(t *testing.T) {
	t.Run("Should run the task lifecycle", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "tasks@example.com")

		w := ts.do(t, http.MethodPost, "/tasks", id, map[string]any{"title": "Write report", "dueDate": "2024-01-10"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var task domain.Task
		decode(t, w, &task)

		w = ts.do(t, http.MethodPut, "/tasks/"+task.ID, id, map[string]any{"priority": "High"})
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(t, http.MethodPatch, "/tasks/"+task.ID+"/status?status=COMPLETED", id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &task)
		assert.Equal(t, domain.StatusCompleted, task.Status)
		assert.Equal(t, 100, task.Progress)
		assert.Equal(t, "High", task.Priority)

		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPatch, "/tasks/"+task.ID+"/status?status=DONE", id, nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPatch, "/tasks/"+task.ID+"/status", id, nil).Code)

		w = ts.do(t, http.MethodGet, "/tasks", id, nil)
		var tasks []domain.Task
		decode(t, w, &tasks)
		assert.Len(t, tasks, 1)

		assert.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/tasks/"+task.ID, id, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/tasks/"+task.ID, id, nil).Code)
	})

	t.Run("Should reject bad task payloads", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "badtask@example.com")
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/tasks", id, map[string]any{"title": ""}).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/tasks", id, map[string]any{"title": "x", "dueDate": "tomorrow"}).Code)
	})
}

func TestFocusRoutes(t *testing.T) {
	t.Run("Should time a focus session", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "focus@example.com")

		start := fixedNow.Add(-45 * time.Minute)
		w := ts.do(t, http.MethodPost, "/focus/start", id, map[string]any{"start_time": start, "blocked_notifications": true})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var fs domain.FocusSession
		decode(t, w, &fs)

		w = ts.do(t, http.MethodPost, "/focus/end", id, map[string]string{"session_id": fs.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decode(t, w, &fs)
		require.NotNil(t, fs.DurationSeconds)
		assert.Equal(t, 2700, *fs.DurationSeconds)

		w = ts.do(t, http.MethodPost, "/focus/end", id, map[string]string{"session_id": fs.ID})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = ts.do(t, http.MethodPost, "/focus/end", id, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should start a session without a body", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "nobody@example.com")
		assert.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/focus/start", id, nil).Code)
	})
}

func TestActivityRoutes(t *testing.T) {
	today := func(hour, minute int) string {
		return time.Date(2024, 1, 8, hour, minute, 0, 0, time.UTC).Format(time.RFC3339)
	}

	t.Run("Should store activity and compute the day's features", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "activity@example.com")

		w := ts.do(t, http.MethodPost, "/activity", id, []map[string]any{
			{"timestamp": today(9, 0), "event_type": "focus", "value": 80},
			{"timestamp": today(9, 30), "event_type": "typing", "value": 60},
			{"timestamp": today(11, 0), "event_type": "social_media", "source": "YouTube", "value": 90},
			{"timestamp": today(12, 0), "event_type": "unlock"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t, `{"stored":4}`, w.Body.String())

		w = ts.do(t, http.MethodPost, "/activity", id, map[string]any{"timestamp": "2024-01-07T10:00:00Z", "event_type": "work", "value": 50})
		require.Equal(t, http.StatusCreated, w.Code)

		w = ts.do(t, http.MethodGet, "/activity/features", id, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp FeaturesResponse
		decode(t, w, &resp)
		assert.Equal(t, "2024-01-08", resp.Date)
		assert.Equal(t, 4, resp.Records)
		assert.Equal(t, 2, resp.Features.ProductiveMinutes)
		assert.Equal(t, 1, resp.Features.DistractedMinutes)
		assert.Equal(t, 1, resp.Features.UnlockEvents)
		assert.Equal(t, 70.0, resp.Features.AvgFocusScore)
		assert.Equal(t, 2, resp.Features.DistractionSpikes)
		assert.Equal(t, 0.7, resp.Vector.Float("avg_focus_score"))
		assert.Equal(t, 0.0042, resp.Vector.Float("productive_minutes"))

		w = ts.do(t, http.MethodGet, "/activity/features?date=2024-01-07", id, nil)
		decode(t, w, &resp)
		assert.Equal(t, 1, resp.Records)

		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/activity/features?date=yesterday", id, nil).Code)
	})

	t.Run("Should build the daily series", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "series@example.com")
		ts.do(t, http.MethodPost, "/activity", id, []map[string]any{
			{"timestamp": "2024-01-07T10:00:00Z", "event_type": "focus", "value": 10},
			{"timestamp": "2024-01-07T11:00:00Z", "event_type": "focus", "value": 15},
			{"timestamp": today(9, 0), "event_type": "focus", "value": 5},
		})

		w := ts.do(t, http.MethodGet, "/activity/series?days=7", id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var series []struct {
			DS time.Time `json:"ds"`
			Y  float64   `json:"y"`
		}
		decode(t, w, &series)
		require.Len(t, series, 2)
		assert.Equal(t, 25.0, series[0].Y)
		assert.Equal(t, 5.0, series[1].Y)

		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/activity/series?days=0", id, nil).Code)
	})

	t.Run("Should reject payloads that are not records", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "badactivity@example.com")
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/activity", id, `"focus"`).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/activity", "ghost", `{"event_type":"focus"}`).Code)
	})
}

func TestInsightRoutes(t *testing.T) {
	seed := func(t *testing.T, ts *testServer) string {
		t.Helper()
		id := ts.newUser(t, "insights@example.com")
		w := ts.do(t, http.MethodPost, "/activity", id, []map[string]any{
			{"timestamp": "2024-01-08T10:00:00Z", "event_type": "focus", "value": 90},
			{"timestamp": "2024-01-08T10:20:00Z", "event_type": "work", "value": 70},
			{"timestamp": "2024-01-08T14:00:00Z", "event_type": "distraction", "source": "Instagram", "value": 75},
			{"timestamp": "2024-01-01T10:00:00Z", "event_type": "focus", "value": 40},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		ts.do(t, http.MethodPost, "/tasks", id, map[string]any{"title": "one"})
		ts.do(t, http.MethodPost, "/tasks", id, map[string]any{"title": "two"})
		return id
	}

	t.Run("Should summarize today on the dashboard", func(t *testing.T) {
		ts := setupServer(t)
		id := seed(t, ts)

		w := ts.do(t, http.MethodGet, "/dashboard/summary", id, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got DashboardSummary
		decode(t, w, &got)
		assert.Equal(t, "80/100", got.FocusScore)
		assert.Equal(t, "1m", got.DistractionTime)
		assert.Zero(t, got.TasksCompleted)
		assert.Len(t, got.UpNextTasks, 2)
		require.Len(t, got.AIAlerts, 2)
		assert.Equal(t, analytics.AlertWarning, got.AIAlerts[0].Type)

		w = ts.do(t, http.MethodGet, "/dashboard/hourly", id, nil)
		var hours []analytics.HourPoint
		decode(t, w, &hours)
		require.Len(t, hours, 11)
		assert.Equal(t, 80, hours[2].FocusScore)

		w = ts.do(t, http.MethodGet, "/analytics/daily-trend", id, nil)
		decode(t, w, &hours)
		assert.Len(t, hours, 12)
	})

	t.Run("Should serve the analytics views", func(t *testing.T) {
		ts := setupServer(t)
		id := seed(t, ts)

		var summary analytics.Summary
		decode(t, ts.do(t, http.MethodGet, "/analytics/summary", id, nil), &summary)
		assert.Equal(t, "10:00 AM", summary.MostProductiveTime)
		assert.Equal(t, "Instagram", summary.TopDistraction)
		assert.Equal(t, 100, summary.ConsistencyScore)

		var split analytics.Split
		decode(t, ts.do(t, http.MethodGet, "/analytics/breakdown", id, nil), &split)
		assert.Equal(t, analytics.Split{Productive: 2, Distracted: 1}, split)

		var week []analytics.WeekDay
		decode(t, ts.do(t, http.MethodGet, "/analytics/weekly", id, nil), &week)
		require.Len(t, week, 7)
		assert.Equal(t, "Mon", week[0].Day)
		assert.Equal(t, 67, week[0].Efficiency)
	})

	t.Run("Should serve the predictions", func(t *testing.T) {
		ts := setupServer(t)
		id := seed(t, ts)

		var pred classifier.Prediction
		decode(t, ts.do(t, http.MethodGet, "/ml/tomorrow", id, nil), &pred)
		assert.Equal(t, classifier.Low, pred.Workload)
		assert.GreaterOrEqual(t, pred.CompletionProbability, 0.55)
		assert.LessOrEqual(t, pred.CompletionProbability, 0.95)

		var window analytics.Window
		decode(t, ts.do(t, http.MethodGet, "/ml/recommendation", id, nil), &window)
		assert.Equal(t, analytics.Window{Start: "10:00", End: "12:30"}, window)

		var outlook []classifier.DayOutlook
		decode(t, ts.do(t, http.MethodGet, "/ml/forecast", id, nil), &outlook)
		require.Len(t, outlook, 7)
		assert.Equal(t, "Mon", outlook[0].Day)
		// mondays average (40+235)/2 against a best day of 235
		assert.Equal(t, 80, outlook[0].CompletionProb)
	})

	t.Run("Should expose ingest counters on /metrics", func(t *testing.T) {
		ts := setupServer(t)
		seed(t, ts)
		w := ts.do(t, http.MethodGet, "/metrics", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `focusflow_activity_records_ingested_total{source="http"} 4`)
	})
}

func TestNonFiniteValues(t *testing.T) {
	t.Run("Should zero-fill infinite values on every read path", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "inf@example.com")
		w := ts.do(t, http.MethodPost, "/activity", id, `[
			{"event_type":"focus","timestamp":"2024-01-08T09:00:00","value":"inf"},
			{"event_type":"distraction","timestamp":"2024-01-08T09:10:00","value":"-Infinity"}
		]`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp FeaturesResponse
		w = ts.do(t, http.MethodGet, "/activity/features?date=2024-01-08", id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &resp)
		assert.Equal(t, 2, resp.Records)
		assert.Equal(t, 0.0, resp.Features.AvgFocusScore)
		assert.Equal(t, 0.0, resp.Vector.Float("avg_focus_score"))

		var summary DashboardSummary
		decode(t, ts.do(t, http.MethodGet, "/dashboard/summary", id, nil), &summary)
		assert.Equal(t, "0/100", summary.FocusScore)
		assert.Equal(t, "1m", summary.DistractionTime)

		var trend []analytics.HourPoint
		decode(t, ts.do(t, http.MethodGet, "/analytics/daily-trend", id, nil), &trend)
		require.NotEmpty(t, trend)
		assert.Equal(t, analytics.HourPoint{Time: "9:00"}, trend[1])
	})
}

func TestScoreLogs(t *testing.T) {
	t.Run("Should score a posted batch without storing it", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "score@example.com")

		w := ts.do(t, http.MethodPost, "/ml/score", id, []map[string]any{
			{"event_type": "focus", "timestamp": "2024-01-08T09:00:00", "value": 80},
			{"event_type": "distraction", "timestamp": "not a date", "value": 70},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp ScoreResponse
		decode(t, w, &resp)
		assert.Equal(t, 2, resp.Records)
		assert.Equal(t, 1, resp.Issues)
		assert.Equal(t, 1, resp.Features.ProductiveMinutes)
		assert.Equal(t, 0.8, resp.Vector.Float("avg_focus_score"))
		assert.Equal(t, classifier.Low, resp.Workload)
		assert.GreaterOrEqual(t, resp.CompletionProbability, 0.55)

		var stored FeaturesResponse
		decode(t, ts.do(t, http.MethodGet, "/activity/features?date=2024-01-08", id, nil), &stored)
		assert.Equal(t, 0, stored.Records)
	})

	t.Run("Should reject payloads that are not record sequences", func(t *testing.T) {
		ts := setupServer(t)
		id := ts.newUser(t, "badscore@example.com")
		for _, body := range []string{`{"event_type":"focus"}`, `[1, 2]`, `"focus"`} {
			w := ts.do(t, http.MethodPost, "/ml/score", id, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})
}
