// Package analytics builds the dashboard and analytics aggregates from a
// canonical activity table. Hours and weekdays are taken in UTC, and records
// without a usable timestamp only count where no time is needed.
package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pbaille/focusflow/internal/domain"
	"github.com/pbaille/focusflow/internal/features"
)

// HourPoint is one hour of the focus vs distraction chart
type HourPoint struct {
	Time             string `json:"time"`
	FocusScore       int    `json:"focusScore"`
	DistractionLevel int    `json:"distractionLevel"`
}

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	m.sum += v
	m.n++
}

func (m meanAcc) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

// HourlyTrend returns one point per hour in [from, to]. The focus score is
// the mean value of productive events in that hour and the distraction
// level the mean value of distracted events; empty hours score 0.
func HourlyTrend(t *features.Table, from, to int) []HourPoint {
	from = max(from, 0)
	to = min(to, 23)

	var focus, distraction [24]meanAcc
	for _, r := range dated(t).Records() {
		h := r.Timestamp.Time.Hour()
		switch features.Categorize(r.EventType) {
		case features.CategoryProductive:
			focus[h].add(r.Value)
		case features.CategoryDistracted:
			distraction[h].add(r.Value)
		}
	}

	points := []HourPoint{}
	for h := from; h <= to; h++ {
		points = append(points, HourPoint{
			Time:             fmt.Sprintf("%d:00", h),
			FocusScore:       roundInt(focus[h].mean()),
			DistractionLevel: roundInt(distraction[h].mean()),
		})
	}
	return points
}

// Split counts events per broad category. Unlocks count as neutral.
type Split struct {
	Productive int `json:"productive"`
	Neutral    int `json:"neutral"`
	Distracted int `json:"distracted"`
}

// Breakdown counts the table's events by category
func Breakdown(t *features.Table) Split {
	var s Split
	for _, r := range t.Records() {
		switch features.Categorize(r.EventType) {
		case features.CategoryProductive:
			s.Productive++
		case features.CategoryDistracted:
			s.Distracted++
		default:
			s.Neutral++
		}
	}
	return s
}

// Summary feeds the analytics overview cards
type Summary struct {
	MostProductiveTime string `json:"mostProductiveTime"`
	ConsistencyScore   int    `json:"consistencyScore"`
	TopDistraction     string `json:"topDistraction"`
	DistractionMinutes int    `json:"distractionMinutes"`
}

// Defaults used when the table has nothing to say
const (
	DefaultPeakHour     = 9
	NoDistraction       = "None"
	defaultProductiveAt = 10
)

// Summarize computes the overview of a table. Distraction minutes are event
// counts, like the daily features.
func Summarize(t *features.Table) Summary {
	s := Summary{TopDistraction: NoDistraction}

	var (
		perHour    [24]int
		days       = map[time.Time]bool{}
		activeDays = map[time.Time]bool{}
		sources    = map[string]int{}
	)
	for _, r := range t.Records() {
		cat := features.Categorize(r.EventType)
		if cat == features.CategoryDistracted {
			s.DistractionMinutes++
			if r.Source != "" {
				sources[r.Source]++
			}
		}
		if !r.Timestamp.Valid() {
			continue
		}
		day := features.Day(r.Timestamp.Time)
		days[day] = true
		if cat == features.CategoryProductive {
			perHour[r.Timestamp.Time.Hour()]++
			activeDays[day] = true
		}
	}

	peak, ok := peakHour(perHour)
	if !ok {
		peak = defaultProductiveAt
	}
	s.MostProductiveTime = clock(peak, 0).Format("3:04 PM")

	if len(days) > 0 {
		s.ConsistencyScore = roundInt(100 * float64(len(activeDays)) / float64(len(days)))
	}

	best := 0
	for src, n := range sources {
		if n > best || (n == best && src < s.TopDistraction) {
			best, s.TopDistraction = n, src
		}
	}
	return s
}

// WeekDay is one bar of the weekly chart
type WeekDay struct {
	Day        string  `json:"day"`
	FocusHours float64 `json:"focusHours"`
	Efficiency int     `json:"efficiency"`
}

var week = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Weekly returns Mon..Sun focus hours from finished focus sessions and
// efficiency as the percentage of productive among productive and distracted
// events of that weekday.
func Weekly(t *features.Table, sessions []domain.FocusSession) []WeekDay {
	var (
		seconds    [7]int
		productive [7]int
		distracted [7]int
	)
	for _, fs := range sessions {
		if fs.DurationSeconds == nil {
			continue
		}
		seconds[fs.StartTime.UTC().Weekday()] += *fs.DurationSeconds
	}
	for _, r := range dated(t).Records() {
		wd := r.Timestamp.Time.Weekday()
		switch features.Categorize(r.EventType) {
		case features.CategoryProductive:
			productive[wd]++
		case features.CategoryDistracted:
			distracted[wd]++
		}
	}

	out := make([]WeekDay, len(week))
	for i, wd := range week {
		eff := 0
		if total := productive[wd] + distracted[wd]; total > 0 {
			eff = roundInt(100 * float64(productive[wd]) / float64(total))
		}
		out[i] = WeekDay{
			Day:        wd.String()[:3],
			FocusHours: decimal.NewFromInt(int64(seconds[wd])).Div(decimal.NewFromInt(3600)).Round(1).InexactFloat64(),
			Efficiency: eff,
		}
	}
	return out
}

// Window is a recommended focus block, as "15:04" clock times
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FocusWindowLength is the length of a recommended focus block
const FocusWindowLength = 2*time.Hour + 30*time.Minute

// Recommend suggests a focus block starting at the hour with the most
// productive events, or 09:00 when there are none.
func Recommend(t *features.Table) Window {
	var perHour [24]int
	productive := dated(t).Filter(func(r features.Record) bool {
		return features.Categorize(r.EventType) == features.CategoryProductive
	})
	for _, r := range productive.Records() {
		perHour[r.Timestamp.Time.Hour()]++
	}
	peak, ok := peakHour(perHour)
	if !ok {
		peak = DefaultPeakHour
	}
	start := clock(peak, 0)
	return Window{
		Start: start.Format("15:04"),
		End:   start.Add(FocusWindowLength).Format("15:04"),
	}
}

// dated keeps the records that can be placed in time
func dated(t *features.Table) *features.Table {
	return t.Filter(func(r features.Record) bool { return r.Timestamp.Valid() })
}

// peakHour returns the earliest hour with the highest count
func peakHour(counts [24]int) (int, bool) {
	best, hour := 0, 0
	for h, n := range counts {
		if n > best {
			best, hour = n, h
		}
	}
	return hour, best > 0
}

func clock(hour, minute int) time.Time {
	return time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC)
}

func roundInt(f float64) int {
	return int(math.Round(f))
}
