package features

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultFeatureMax is the divisor for numeric features missing from FeatureMax.
const DefaultFeatureMax = 100.0

// FeatureMax holds the assumed daily maximum of each feature.
var FeatureMax = map[string]float64{
	FeatureProductiveMinutes: 480, // 8 hours
	FeatureDistractedMinutes: 300,
	FeatureUnlockEvents:      200,
	FeatureAvgFocusScore:     100,
	FeatureDistractionSpikes: 50,
}

// Vector is a normalized feature set. Numeric features are float64; anything
// else is carried over from the input untouched.
type Vector map[string]any

// Float returns the numeric value of key, or 0 when it is absent or not numeric
func (v Vector) Float(key string) float64 {
	f, ok := v[key].(float64)
	if !ok {
		return 0
	}
	return f
}

// Values returns the vector's numeric values in FeatureKeys order
func (v Vector) Values() []float64 {
	out := make([]float64, len(FeatureKeys))
	for i, k := range FeatureKeys {
		out[i] = v.Float(k)
	}
	return out
}

// NormalizeFeatures divides every numeric feature by its assumed maximum and
// rounds to 4 decimal places. The result is not clamped: a day above the
// assumed maximum scores above 1.
func NormalizeFeatures(in map[string]any) Vector {
	out := make(Vector, len(in))
	for key, val := range in {
		f, ok := numeric(val)
		if !ok {
			out[key] = val
			continue
		}
		divisor, ok := FeatureMax[key]
		if !ok {
			divisor = DefaultFeatureMax
		}
		out[key] = round4(f / divisor)
	}
	return out
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func round4(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, _ := decimal.NewFromFloat(f).Round(4).Float64()
	return r
}
