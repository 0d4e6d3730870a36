// Package epoch turns epoch-like numbers of unknown unit into dates.
package epoch

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unit is the granularity implied by a raw timestamp's magnitude.
type Unit string

const (
	Seconds      Unit = "s"
	Milliseconds Unit = "ms"
	Microseconds Unit = "us"
	Nanoseconds  Unit = "ns"
)

// Thresholds are checked in this order against the column maximum.
const (
	nanosAbove  = 1e17
	microsAbove = 1e14
	millisAbove = 1e11
)

// DetectUnit infers the unit from the largest value of a column.
func DetectUnit(peak float64) Unit {
	switch {
	case peak > nanosAbove:
		return Nanoseconds
	case peak > microsAbove:
		return Microseconds
	case peak > millisAbove:
		return Milliseconds
	default:
		return Seconds
	}
}

// Converted times must fall in years 1 through 9999 UTC.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

// Column is the outcome of normalizing one timestamp column.
type Column struct {
	Unit  Unit
	Times []*time.Time // nil where the raw value did not parse
}

// Normalize parses every value, infers one shared unit from the maximum and
// converts each value to a UTC time. Unparseable values and values outside
// years 1-9999 yield nil entries.
// The whole column is assumed to share a unit; mixed units are not detected.
func Normalize(values []any) Column {
	parsed := make([]float64, len(values))
	ok := make([]bool, len(values))
	peak := math.Inf(-1)
	for i, v := range values {
		f, good := ParseNumber(v)
		if !good {
			continue
		}
		parsed[i], ok[i] = f, true
		if f > peak {
			peak = f
		}
	}

	unit := DetectUnit(peak)
	out := Column{Unit: unit, Times: make([]*time.Time, len(values))}
	for i := range values {
		if !ok[i] || !InRange(parsed[i], unit) {
			continue
		}
		t := ToTime(parsed[i], unit)
		out.Times[i] = &t
	}
	return out
}

// InRange reports whether v in unit lands in years 1 through 9999.
func InRange(v float64, unit Unit) bool {
	var sec float64
	switch unit {
	case Nanoseconds:
		sec = v / 1e9
	case Microseconds:
		sec = v / 1e6
	case Milliseconds:
		sec = v / 1e3
	default:
		sec = v
	}
	return sec >= minUnixSeconds && sec <= maxUnixSeconds
}

// ToTime converts a value in unit to a UTC time. v must be InRange.
func ToTime(v float64, unit Unit) time.Time {
	var nanos float64
	switch unit {
	case Nanoseconds:
		nanos = v
	case Microseconds:
		nanos = v * 1e3
	case Milliseconds:
		nanos = v * 1e6
	default:
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	sec := math.Floor(nanos / 1e9)
	return time.Unix(int64(sec), int64(nanos-sec*1e9)).UTC()
}

// ParseNumber accepts ints, floats, json.Number and numeric strings.
// NaN, infinities, booleans and anything else do not parse.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		return parseString(n.String())
	case string:
		return parseString(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
