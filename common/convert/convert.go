package convert

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var errNotString = errors.New("unable to parse, value not string")

// FloatFromString format
func FloatFromString(raw any) (float64, error) {
	str, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %T", errNotString, raw)
	}
	flt, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert value: %s Error: %w", str, err)
	}
	return flt, nil
}

// Int64FromString format
func Int64FromString(raw any) (int64, error) {
	str, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %T", errNotString, raw)
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %q as int64: %w", str, err)
	}
	return n, nil
}

// Uint64FromString format
func Uint64FromString(raw any) (uint64, error) {
	str, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %T", errNotString, raw)
	}
	n, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %q as uint64: %w", str, err)
	}
	return n, nil
}

// DecimalFromString parses a decimal number without passing through a float
func DecimalFromString(raw any) (decimal.Decimal, error) {
	str, ok := raw.(string)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %T", errNotString, raw)
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not convert value: %s Error: %w", str, err)
	}
	return d, nil
}

// UnixMillis converts a time to milliseconds since the Unix epoch
func UnixMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// BoolPtr takes in boolen condition and returns pointer version of it
func BoolPtr(condition bool) *bool {
	b := condition
	return &b
}
