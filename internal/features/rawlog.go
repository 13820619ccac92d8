package features

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"
)

// Raw record keys as stored by clients.
const (
	KeyTimestamp = "timestamp"
	KeyEventType = "event_type"
	KeySource    = "source"
	KeyValue     = "value"
)

// RawLog is an unvalidated activity event as produced by a client device.
// Any key may be missing and any value may have the wrong type.
type RawLog map[string]any

// TimestampStatus tells whether a raw timestamp could be used
type TimestampStatus int

const (
	TimestampValid TimestampStatus = iota
	TimestampMissing
	TimestampInvalid
)

func (s TimestampStatus) String() string {
	switch s {
	case TimestampValid:
		return "valid"
	case TimestampMissing:
		return "missing"
	case TimestampInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("TimestampStatus(%d)", int(s))
	}
}

// Timestamp is the parse result of a raw timestamp. Time is only meaningful
// when Status is TimestampValid; otherwise Reason explains why it is null.
type Timestamp struct {
	Time   time.Time
	Status TimestampStatus
	Reason string
}

// Valid reports whether the timestamp parsed
func (t Timestamp) Valid() bool {
	return t.Status == TimestampValid
}

// ParseTimestamp coerces a raw timestamp value. It never fails: values that
// cannot be read become a null timestamp carrying the reason.
//
// Strings without a zone and bare dates are read as UTC, numbers as Unix
// seconds. Valid results are always in UTC.
func ParseTimestamp(v any) Timestamp {
	switch t := v.(type) {
	case nil:
		return Timestamp{Status: TimestampMissing, Reason: "no timestamp"}
	case time.Time:
		if t.IsZero() {
			return Timestamp{Status: TimestampMissing, Reason: "zero time"}
		}
		return Timestamp{Time: t.UTC(), Status: TimestampValid}
	case *time.Time:
		if t == nil {
			return Timestamp{Status: TimestampMissing, Reason: "no timestamp"}
		}
		return ParseTimestamp(*t)
	case string:
		if t == "" {
			return Timestamp{Status: TimestampMissing, Reason: "empty timestamp"}
		}
		parsed, err := cast.ToTimeInDefaultLocationE(t, time.UTC)
		if err != nil {
			return Timestamp{Status: TimestampInvalid, Reason: err.Error()}
		}
		return Timestamp{Time: parsed.UTC(), Status: TimestampValid}
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Timestamp{Status: TimestampInvalid, Reason: "non-finite timestamp"}
		}
		if t < minUnix || t >= maxUnix+1 {
			return outOfRange(t)
		}
		sec, frac := math.Modf(t)
		return Timestamp{Time: time.Unix(int64(sec), int64(frac*1e9)).UTC(), Status: TimestampValid}
	case uint64:
		if t > maxUnix {
			return outOfRange(t)
		}
		return ParseTimestamp(int64(t))
	case uint:
		return ParseTimestamp(uint64(t))
	case int, int32, int64, uint32, json.Number:
		sec, err := cast.ToInt64E(t)
		if err != nil {
			return Timestamp{Status: TimestampInvalid, Reason: err.Error()}
		}
		if sec < minUnix || sec > maxUnix {
			return outOfRange(t)
		}
		return Timestamp{Time: time.Unix(sec, 0).UTC(), Status: TimestampValid}
	default:
		return Timestamp{Status: TimestampInvalid, Reason: fmt.Sprintf("unsupported timestamp type %T", v)}
	}
}

// Numeric timestamps must fall in years 1 through 9999
const (
	minUnix = -62135596800
	maxUnix = 253402300799
)

func outOfRange(v any) Timestamp {
	return Timestamp{Status: TimestampInvalid, Reason: fmt.Sprintf("timestamp %v out of range", v)}
}

// coerceValue turns a raw value into a float; anything unusable is 0
func coerceValue(v any) float64 {
	if v == nil {
		return 0
	}
	if s, ok := v.(string); ok && s == "" {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// coerceString reads an optional string field; null becomes ""
func coerceString(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}
