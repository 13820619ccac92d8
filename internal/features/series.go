package features

import "time"

// ForecastPoint is one day of the forecasting series: DS is the UTC date at
// midnight and Y the summed value of that day's records.
type ForecastPoint struct {
	DS time.Time `json:"ds"`
	Y  float64   `json:"y"`
}

// BuildSeries reduces a canonical table to one point per UTC calendar date,
// ascending. Days without records are not filled in, and records with a null
// timestamp have no date so they are left out.
func BuildSeries(t *Table) []ForecastPoint {
	series := []ForecastPoint{}
	index := make(map[time.Time]int)

	for _, r := range t.Records() {
		if !r.Timestamp.Valid() {
			continue
		}
		day := Day(r.Timestamp.Time)
		i, ok := index[day]
		if !ok {
			i = len(series)
			index[day] = i
			series = append(series, ForecastPoint{DS: day})
		}
		series[i].Y += r.Value
	}

	// Valid records come first and in time order, so series is already sorted.
	return series
}

// Day truncates t to midnight of its UTC calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
