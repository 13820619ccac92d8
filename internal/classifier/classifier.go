// Package classifier turns daily feature summaries into workload levels and
// daily series into short-range forecasts. Both models are swappable behind
// small interfaces; the defaults are deterministic rules.
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/shopspring/decimal"

	"github.com/pbaille/focusflow/internal/features"
)

// Level is a workload / productivity label
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// Classifier labels a day of activity
type Classifier interface {
	Classify(f features.DailyFeatures) Level
}

// RuleClassifier applies the fixed labelling rule: High needs more than 300
// productive and fewer than 60 distracted minutes, Medium more than 150
// productive minutes.
type RuleClassifier struct{}

func (RuleClassifier) Classify(f features.DailyFeatures) Level {
	switch {
	case f.ProductiveMinutes > 300 && f.DistractedMinutes < 60:
		return High
	case f.ProductiveMinutes > 150:
		return Medium
	default:
		return Low
	}
}

// Model is a linear scoring model over the normalized feature vector
type Model struct {
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
	MediumAt     float64            `json:"medium_at"`
	HighAt       float64            `json:"high_at"`
}

// LinearClassifier scores the normalized vector with a Model and cuts the
// score at the model thresholds
type LinearClassifier struct {
	model Model
}

// NewLinearClassifier validates m and wraps it
func NewLinearClassifier(m Model) (*LinearClassifier, error) {
	if len(m.Coefficients) == 0 {
		return nil, fmt.Errorf("model has no coefficients")
	}
	if m.HighAt < m.MediumAt {
		return nil, fmt.Errorf("model thresholds out of order: high_at %v < medium_at %v", m.HighAt, m.MediumAt)
	}
	for k := range m.Coefficients {
		if _, ok := features.FeatureMax[k]; !ok {
			return nil, fmt.Errorf("model references unknown feature %q", k)
		}
	}
	return &LinearClassifier{model: m}, nil
}

// LoadModel reads a JSON model file
func LoadModel(path string) (*LinearClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return NewLinearClassifier(m)
}

// Score returns the raw linear score for f
func (c *LinearClassifier) Score(f features.DailyFeatures) float64 {
	v := features.NormalizeFeatures(f.Map())
	score := c.model.Intercept
	for k, coef := range c.model.Coefficients {
		score += coef * v.Float(k)
	}
	return score
}

func (c *LinearClassifier) Classify(f features.DailyFeatures) Level {
	score := c.Score(f)
	switch {
	case score >= c.model.HighAt:
		return High
	case score >= c.model.MediumAt:
		return Medium
	default:
		return Low
	}
}

// Prediction is the outlook for the next day
type Prediction struct {
	Workload              Level   `json:"workload"`
	CompletionProbability float64 `json:"completionProbability"`
}

// Completion probability stays within this band
const (
	minCompletion = 0.55
	maxCompletion = 0.95
)

// Predict labels f and estimates the chance of finishing planned work. The
// estimate rises with productive time and focus and falls with distraction.
func Predict(c Classifier, f features.DailyFeatures) Prediction {
	v := features.NormalizeFeatures(f.Map())
	p := 0.6*clamp01(v.Float(features.FeatureProductiveMinutes)) +
		0.4*clamp01(v.Float(features.FeatureAvgFocusScore)) -
		0.3*clamp01(v.Float(features.FeatureDistractedMinutes))
	prob := minCompletion + (maxCompletion-minCompletion)*clamp01(p)
	return Prediction{
		Workload:              c.Classify(f),
		CompletionProbability: decimal.NewFromFloat(prob).Round(2).InexactFloat64(),
	}
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}
