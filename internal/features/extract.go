package features

import "math"

// SpikeThreshold is the value above which any record counts as a distraction spike.
const SpikeThreshold = 60.0

// Event categories. The sets are disjoint.
var (
	ProductiveEvents = map[string]bool{"focus": true, "typing": true, "work": true}
	DistractedEvents = map[string]bool{"distraction": true, "social_media": true, "idle": true}
	UnlockEvents     = map[string]bool{"unlock": true}
)

// Category of an event type
type Category string

const (
	CategoryProductive Category = "productive"
	CategoryDistracted Category = "distracted"
	CategoryUnlock     Category = "unlock"
	CategoryNeutral    Category = "neutral"
)

// Categorize maps an event type to its category
func Categorize(eventType string) Category {
	switch {
	case ProductiveEvents[eventType]:
		return CategoryProductive
	case DistractedEvents[eventType]:
		return CategoryDistracted
	case UnlockEvents[eventType]:
		return CategoryUnlock
	default:
		return CategoryNeutral
	}
}

// Feature keys, in vector order.
const (
	FeatureProductiveMinutes = "productive_minutes"
	FeatureDistractedMinutes = "distracted_minutes"
	FeatureUnlockEvents      = "unlock_events"
	FeatureAvgFocusScore     = "avg_focus_score"
	FeatureDistractionSpikes = "distraction_spikes"
)

// FeatureKeys lists the daily feature keys in their canonical order.
var FeatureKeys = []string{
	FeatureProductiveMinutes,
	FeatureDistractedMinutes,
	FeatureUnlockEvents,
	FeatureAvgFocusScore,
	FeatureDistractionSpikes,
}

// DailyFeatures summarizes a period of activity.
//
// ProductiveMinutes and DistractedMinutes are event counts, not durations:
// each productive or distracted event counts once.
type DailyFeatures struct {
	ProductiveMinutes int     `json:"productive_minutes"`
	DistractedMinutes int     `json:"distracted_minutes"`
	UnlockEvents      int     `json:"unlock_events"`
	AvgFocusScore     float64 `json:"avg_focus_score"`
	DistractionSpikes int     `json:"distraction_spikes"`
}

// Map returns the features keyed by feature name
func (f DailyFeatures) Map() map[string]any {
	return map[string]any{
		FeatureProductiveMinutes: f.ProductiveMinutes,
		FeatureDistractedMinutes: f.DistractedMinutes,
		FeatureUnlockEvents:      f.UnlockEvents,
		FeatureAvgFocusScore:     f.AvgFocusScore,
		FeatureDistractionSpikes: f.DistractionSpikes,
	}
}

// Extract computes the daily features of a canonical table.
// An empty table yields all zeros.
func Extract(t *Table) DailyFeatures {
	var (
		f        DailyFeatures
		focusSum float64
	)
	for _, r := range t.Records() {
		switch Categorize(r.EventType) {
		case CategoryProductive:
			f.ProductiveMinutes++
			focusSum += r.Value
		case CategoryDistracted:
			f.DistractedMinutes++
		case CategoryUnlock:
			f.UnlockEvents++
		}
		if r.Value > SpikeThreshold {
			f.DistractionSpikes++
		}
	}

	if f.ProductiveMinutes > 0 {
		avg := focusSum / float64(f.ProductiveMinutes)
		if !math.IsNaN(avg) {
			f.AvgFocusScore = avg
		}
	}
	return f
}
