package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/features"
)

// 2024-01-01 is a Monday
func at(day, hour, minute int) string {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC).Format(time.RFC3339)
}

func sampleTable() *features.Table {
	return features.Normalize([]features.RawLog{
		{"timestamp": at(1, 10, 0), "event_type": "focus", "value": 80},
		{"timestamp": at(1, 10, 30), "event_type": "typing", "value": 60},
		{"timestamp": at(1, 14, 5), "event_type": "social_media", "source": "Instagram", "value": 90},
		{"timestamp": at(1, 14, 20), "event_type": "idle", "source": "YouTube", "value": 10},
		{"timestamp": at(1, 9, 0), "event_type": "unlock"},
		{"timestamp": at(2, 11, 0), "event_type": "distraction", "source": "Instagram", "value": 70},
		{"timestamp": "garbage", "event_type": "distraction", "source": "Email"},
	})
}

func TestHourlyTrend(t *testing.T) {
	t.Run("Should average focus and distraction per hour", func(t *testing.T) {
		got := HourlyTrend(sampleTable(), 8, 18)
		require.Len(t, got, 11)
		assert.Equal(t, "8:00", got[0].Time)
		assert.Equal(t, HourPoint{Time: "10:00", FocusScore: 70}, got[2])
		assert.Equal(t, HourPoint{Time: "14:00", DistractionLevel: 50}, got[6])
		assert.Equal(t, HourPoint{Time: "11:00", DistractionLevel: 70}, got[3])
	})

	t.Run("Should clamp the hour range", func(t *testing.T) {
		assert.Len(t, HourlyTrend(features.Normalize(nil), -5, 40), 24)
		assert.Empty(t, HourlyTrend(features.Normalize(nil), 10, 9))
	})
}

func TestBreakdown(t *testing.T) {
	t.Run("Should count unlocks as neutral", func(t *testing.T) {
		assert.Equal(t, Split{Productive: 2, Neutral: 1, Distracted: 4}, Breakdown(sampleTable()))
	})
}

func TestSummarize(t *testing.T) {
	t.Run("Should summarize a populated table", func(t *testing.T) {
		s := Summarize(sampleTable())
		assert.Equal(t, "10:00 AM", s.MostProductiveTime)
		assert.Equal(t, 50, s.ConsistencyScore)
		assert.Equal(t, "Instagram", s.TopDistraction)
		assert.Equal(t, 4, s.DistractionMinutes)
	})

	t.Run("Should fall back on an empty table", func(t *testing.T) {
		s := Summarize(features.Normalize(nil))
		assert.Equal(t, "10:00 AM", s.MostProductiveTime)
		assert.Zero(t, s.ConsistencyScore)
		assert.Equal(t, NoDistraction, s.TopDistraction)
	})

	t.Run("Should format afternoon hours", func(t *testing.T) {
		tbl := features.Normalize([]features.RawLog{{"timestamp": at(3, 15, 0), "event_type": "work"}})
		assert.Equal(t, "3:00 PM", Summarize(tbl).MostProductiveTime)
	})
}

func TestWeekly(t *testing.T) {
	t.Run("Should bucket sessions and efficiency by weekday", func(t *testing.T) {
		secs := 5400
		open := domain.FocusSession{StartTime: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)}
		done := domain.FocusSession{StartTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), DurationSeconds: &secs}

		got := Weekly(sampleTable(), []domain.FocusSession{done, open})
		require.Len(t, got, 7)
		assert.Equal(t, WeekDay{Day: "Mon", FocusHours: 1.5, Efficiency: 50}, got[0])
		assert.Equal(t, WeekDay{Day: "Tue", FocusHours: 0, Efficiency: 0}, got[1])
		assert.Equal(t, "Sun", got[6].Day)
	})
}

func TestRecommend(t *testing.T) {
	t.Run("Should start at the busiest productive hour", func(t *testing.T) {
		assert.Equal(t, Window{Start: "10:00", End: "12:30"}, Recommend(sampleTable()))
	})

	t.Run("Should default to the morning block", func(t *testing.T) {
		assert.Equal(t, Window{Start: "09:00", End: "11:30"}, Recommend(features.Normalize(nil)))
	})
}

func TestAlerts(t *testing.T) {
	t.Run("Should flag the spike hour and the focus peak", func(t *testing.T) {
		got := Alerts(sampleTable())
		require.Len(t, got, 2)
		assert.Equal(t, AlertWarning, got[0].Type)
		assert.Equal(t, "High distraction detected between 11 AM - 12 PM.", got[0].Message)
		assert.Equal(t, AlertSuccess, got[1].Type)
		assert.Equal(t, 2, got[1].ID)
		assert.Contains(t, got[1].Message, "10:00 AM")
	})

	t.Run("Should stay quiet without activity", func(t *testing.T) {
		assert.Empty(t, Alerts(features.Normalize(nil)))
	})
}
