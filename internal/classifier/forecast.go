package classifier

import (
	"math"
	"time"

	"github.com/pbaille/focusflow/internal/features"
)

// Forecaster predicts the next days of a daily series
type Forecaster interface {
	Forecast(series []features.ForecastPoint, start time.Time, days int) []features.ForecastPoint
}

// WeekdayMean predicts each day as the mean of past points on the same
// weekday, falling back to the mean of the whole series. An empty series
// forecasts zeros.
type WeekdayMean struct{}

func (WeekdayMean) Forecast(series []features.ForecastPoint, start time.Time, days int) []features.ForecastPoint {
	if days <= 0 {
		return []features.ForecastPoint{}
	}

	var (
		sums   [7]float64
		counts [7]int
		total  float64
	)
	for _, p := range series {
		wd := p.DS.UTC().Weekday()
		sums[wd] += p.Y
		counts[wd]++
		total += p.Y
	}
	overall := 0.0
	if len(series) > 0 {
		overall = total / float64(len(series))
	}

	out := make([]features.ForecastPoint, days)
	day := features.Day(start)
	for i := range out {
		ds := day.AddDate(0, 0, i)
		y := overall
		if wd := ds.Weekday(); counts[wd] > 0 {
			y = sums[wd] / float64(counts[wd])
		}
		out[i] = features.ForecastPoint{DS: ds, Y: y}
	}
	return out
}

// DayOutlook is one forecast day in the form the productivity page plots
type DayOutlook struct {
	Day            string    `json:"day"`
	Date           time.Time `json:"date"`
	CompletionProb int       `json:"completionProb"`
}

// Completion percentages stay within this band
const (
	minCompletionPct = 60
	maxCompletionPct = 95
)

// Outlook maps forecast points onto completion percentages relative to the
// best day seen in history. Without history every day gets the floor.
func Outlook(history, forecast []features.ForecastPoint) []DayOutlook {
	peak := 0.0
	for _, p := range history {
		peak = math.Max(peak, p.Y)
	}

	out := make([]DayOutlook, len(forecast))
	for i, p := range forecast {
		pct := minCompletionPct
		if peak > 0 {
			ratio := math.Max(0, math.Min(1, p.Y/peak))
			pct = minCompletionPct + int(math.Round(ratio*(maxCompletionPct-minCompletionPct)))
		}
		out[i] = DayOutlook{
			Day:            p.DS.Format("Mon"),
			Date:           p.DS,
			CompletionProb: pct,
		}
	}
	return out
}

// WeekAhead forecasts the given number of days, starting with the UTC day
// of now, and maps them onto the outlook.
func WeekAhead(f Forecaster, history []features.ForecastPoint, now time.Time, days int) []DayOutlook {
	return Outlook(history, f.Forecast(history, now, days))
}
