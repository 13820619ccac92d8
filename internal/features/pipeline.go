// Package features turns raw activity logs into the inputs of the
// productivity classifier and forecaster.
//
// The flow is one way: raw logs are normalized into a canonical Table, which
// is reduced either to DailyFeatures (then scaled into a Vector) or to a
// daily ForecastPoint series. Every step is a pure function over in-memory
// data and returns a new value, so concurrent callers need no coordination.
package features

// Result holds every stage of one pipeline run
type Result struct {
	Table    *Table
	Features DailyFeatures
	Vector   Vector
}

// Compute runs normalize, extract and scale over raw logs.
// It is the entry point of the online prediction path.
func Compute(raws []RawLog) Result {
	return compute(Normalize(raws))
}

// ComputeFrom is Compute for untyped payloads such as decoded JSON.
// It fails only with ErrInvalidInput.
func ComputeFrom(v any) (Result, error) {
	table, err := NormalizeAny(v)
	if err != nil {
		return Result{}, err
	}
	return compute(table), nil
}

func compute(t *Table) Result {
	daily := Extract(t)
	return Result{Table: t, Features: daily, Vector: NormalizeFeatures(daily.Map())}
}

// ComputeFeatureVector is Compute reduced to the scaled vector
func ComputeFeatureVector(raws []RawLog) Vector {
	return Compute(raws).Vector
}

// ComputeFeatureVectorFrom is ComputeFrom reduced to the scaled vector
func ComputeFeatureVectorFrom(v any) (Vector, error) {
	res, err := ComputeFrom(v)
	if err != nil {
		return nil, err
	}
	return res.Vector, nil
}
