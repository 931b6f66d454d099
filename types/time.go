package types

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Time is a millisecond resolution exchange timestamp. It unmarshals from a
// JSON number or numeric string holding milliseconds since the Unix epoch and
// marshals back to the same millisecond form.
type Time time.Time

// FromMillis returns the Time for a millisecond Unix timestamp
func FromMillis(ms int64) Time {
	return Time(time.UnixMilli(ms))
}

// UnmarshalJSON deserializes a millisecond timestamp
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch s {
	case "null", `""`:
		*t = Time(time.Time{})
		return nil
	}
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = FromMillis(ms)
		return nil
	}

	// Millisecond values occasionally arrive with a fractional part, e.g. 1573482478000.0
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into Time: %w", string(data), err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("cannot unmarshal %s into Time: %w", string(data), strconv.ErrRange)
	}
	*t = FromMillis(int64(math.Round(f)))
	return nil
}

// Time represents a time instance.
func (t Time) Time() time.Time { return time.Time(t) }

// Millis returns the timestamp in milliseconds, zero for an unset Time
func (t Time) Millis() int64 {
	if t.Time().IsZero() {
		return 0
	}
	return t.Time().UnixMilli()
}

// String returns a string representation of the time.
func (t Time) String() string {
	return t.Time().String()
}

// MarshalJSON serializes the time to its millisecond wire form
func (t Time) MarshalJSON() ([]byte, error) {
	if t.Time().IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, t.Millis(), 10), nil
}
