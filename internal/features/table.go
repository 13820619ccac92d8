package features

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput is returned when the caller hands over something that is
// not a sequence of records. Dirty records never produce it.
var ErrInvalidInput = errors.New("invalid input")

// Columns is the canonical table schema, present even when the table is empty.
var Columns = []string{KeyTimestamp, KeyEventType, KeySource, KeyValue}

// Record is one cleaned, typed activity event.
// EventType and Source are "" when the raw record had no value for them.
type Record struct {
	Timestamp Timestamp
	EventType string
	Source    string
	Value     float64
}

// Table is the canonical, time-ordered form of a batch of raw logs.
// It is never modified after Normalize returns it.
type Table struct {
	records []Record
}

// Normalize converts raw logs into a canonical table.
//
// No record is dropped. Records are ordered by timestamp ascending; records
// whose timestamp is null keep their input order and sort after all valid ones.
func Normalize(raws []RawLog) *Table {
	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = normalizeRecord(raw)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Timestamp, records[j].Timestamp
		if !a.Valid() {
			return false
		}
		if !b.Valid() {
			return true
		}
		return a.Time.Before(b.Time)
	})

	return &Table{records: records}
}

// NormalizeAny is Normalize for payloads whose shape is only known at runtime,
// such as decoded JSON. It accepts nil, []RawLog, []map[string]any and []any
// whose elements are maps; anything else fails with ErrInvalidInput.
func NormalizeAny(v any) (*Table, error) {
	raws, err := toRawLogs(v)
	if err != nil {
		return nil, err
	}
	return Normalize(raws), nil
}

func toRawLogs(v any) ([]RawLog, error) {
	switch in := v.(type) {
	case nil:
		return []RawLog{}, nil
	case []RawLog:
		return in, nil
	case []map[string]any:
		out := make([]RawLog, len(in))
		for i, m := range in {
			out[i] = RawLog(m)
		}
		return out, nil
	case []any:
		out := make([]RawLog, len(in))
		for i, item := range in {
			switch m := item.(type) {
			case map[string]any:
				out[i] = RawLog(m)
			case RawLog:
				out[i] = m
			default:
				return nil, fmt.Errorf("%w: record %d is %T, not an object", ErrInvalidInput, i, item)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a sequence of records, got %T", ErrInvalidInput, v)
	}
}

func normalizeRecord(raw RawLog) Record {
	return Record{
		Timestamp: ParseTimestamp(raw[KeyTimestamp]),
		EventType: coerceString(raw[KeyEventType]),
		Source:    coerceString(raw[KeySource]),
		Value:     coerceValue(raw[KeyValue]),
	}
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Empty reports whether the table has no records
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Records returns a copy of the records in table order
func (t *Table) Records() []Record {
	if t == nil {
		return []Record{}
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Columns returns the table schema
func (t *Table) Columns() []string {
	out := make([]string, len(Columns))
	copy(out, Columns)
	return out
}

// Issues returns the records whose timestamp could not be used, so callers
// can report what the normalizer silently nulled.
func (t *Table) Issues() []Record {
	var out []Record
	for _, r := range t.Records() {
		if !r.Timestamp.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// Filter returns a new table holding the records for which keep is true
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := make([]Record, 0, t.Len())
	for _, r := range t.Records() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{records: out}
}
