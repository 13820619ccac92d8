package analytics

import (
	"fmt"

	"github.com/pbaille/focusflow/internal/features"
)

// Alert is a short insight shown on the dashboard
type Alert struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Alert types
const (
	AlertWarning = "warning"
	AlertSuccess = "success"
)

// Alerts derives dashboard insights from a day of activity: the hour with
// the most distraction spikes and the hour with the best focus.
func Alerts(t *features.Table) []Alert {
	var (
		spikes [24]int
		focus  [24]meanAcc
	)
	for _, r := range dated(t).Records() {
		h := r.Timestamp.Time.Hour()
		switch features.Categorize(r.EventType) {
		case features.CategoryDistracted:
			if r.Value > features.SpikeThreshold {
				spikes[h]++
			}
		case features.CategoryProductive:
			focus[h].add(r.Value)
		}
	}

	alerts := []Alert{}
	if h, ok := peakHour(spikes); ok {
		alerts = append(alerts, Alert{
			ID:    len(alerts) + 1,
			Type:  AlertWarning,
			Title: "Distraction Spike",
			Message: fmt.Sprintf("High distraction detected between %s - %s.",
				clock(h, 0).Format("3 PM"), clock((h+1)%24, 0).Format("3 PM")),
		})
	}

	best, bestHour := 0.0, -1
	for h := range focus {
		if focus[h].n > 0 && focus[h].mean() > best {
			best, bestHour = focus[h].mean(), h
		}
	}
	if bestHour >= 0 {
		alerts = append(alerts, Alert{
			ID:      len(alerts) + 1,
			Type:    AlertSuccess,
			Title:   "Peak Performance",
			Message: fmt.Sprintf("Your focus peaked around %s.", clock(bestHour, 0).Format("3:04 PM")),
		})
	}
	return alerts
}
