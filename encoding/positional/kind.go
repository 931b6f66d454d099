package positional

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/bfxclient/common/convert"
	"github.com/thrasher-corp/bfxclient/types"
)

// Kind converts one JSON element into a Go value of type V. The value passed
// to a Kind is the raw element as returned by jsonparser, so string contents
// arrive without their surrounding quotes.
type Kind[V any] struct {
	name  string
	parse func(value []byte, dataType jsonparser.ValueType) (V, error)
}

// NewKind returns a Kind backed by the supplied conversion function
func NewKind[V any](name string, parse func(value []byte, dataType jsonparser.ValueType) (V, error)) Kind[V] {
	return Kind[V]{name: name, parse: parse}
}

// Name returns the descriptive name of the kind
func (k Kind[V]) Name() string {
	return k.name
}

// Parse converts a single JSON element
func (k Kind[V]) Parse(value []byte, dataType jsonparser.ValueType) (V, error) {
	return k.parse(value, dataType)
}

func wrongType(want string, got jsonparser.ValueType) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrWrongType, want, got)
}

// Built in kinds
var (
	String = NewKind("string", func(value []byte, dataType jsonparser.ValueType) (string, error) {
		if dataType != jsonparser.String {
			return "", wrongType("string", dataType)
		}
		return jsonparser.ParseString(value)
	})

	Float = NewKind("float", func(value []byte, dataType jsonparser.ValueType) (float64, error) {
		if dataType != jsonparser.Number {
			return 0, wrongType("number", dataType)
		}
		return jsonparser.ParseFloat(value)
	})

	Int64 = NewKind("int64", func(value []byte, dataType jsonparser.ValueType) (int64, error) {
		if dataType != jsonparser.Number {
			return 0, wrongType("number", dataType)
		}
		if i, err := strconv.ParseInt(string(value), 10, 64); err == nil {
			return i, nil
		}
		f, err := integral(value)
		if err != nil {
			return 0, err
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, value)
		}
		return int64(f), nil
	})

	Uint64 = NewKind("uint64", func(value []byte, dataType jsonparser.ValueType) (uint64, error) {
		if dataType != jsonparser.Number {
			return 0, wrongType("number", dataType)
		}
		if u, err := strconv.ParseUint(string(value), 10, 64); err == nil {
			return u, nil
		}
		f, err := integral(value)
		if err != nil {
			return 0, err
		}
		if f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %s", ErrOutOfRange, value)
		}
		return uint64(f), nil
	})

	// Bool treats a positive number as true, matching the exchange's 0/1 and
	// 1/-1 integer booleans. JSON booleans are accepted as they are.
	Bool = NewKind("bool", func(value []byte, dataType jsonparser.ValueType) (bool, error) {
		switch dataType {
		case jsonparser.Boolean:
			return jsonparser.ParseBoolean(value)
		case jsonparser.Number:
			f, err := jsonparser.ParseFloat(value)
			if err != nil {
				return false, err
			}
			return f > 0, nil
		default:
			return false, wrongType("number", dataType)
		}
	})

	// Time decodes a millisecond timestamp
	Time = NewKind("millisecond timestamp", func(value []byte, dataType jsonparser.ValueType) (types.Time, error) {
		if dataType != jsonparser.Number {
			return types.Time{}, wrongType("number", dataType)
		}
		var t types.Time
		err := t.UnmarshalJSON(value)
		return t, err
	})

	// Decimal decodes a JSON number straight from its text, without a float
	// round trip
	Decimal = NewKind("decimal", func(value []byte, dataType jsonparser.ValueType) (decimal.Decimal, error) {
		if dataType != jsonparser.Number {
			return decimal.Zero, wrongType("number", dataType)
		}
		return convert.DecimalFromString(string(value))
	})

	// RawJSON captures any non-null element verbatim
	RawJSON = NewKind("raw json", func(value []byte, dataType jsonparser.ValueType) (json.RawMessage, error) {
		if dataType == jsonparser.Null || dataType == jsonparser.NotExist {
			return nil, wrongType("value", dataType)
		}
		out := make([]byte, 0, len(value)+2)
		if dataType == jsonparser.String {
			out = append(out, '"')
			out = append(out, value...)
			return append(out, '"'), nil
		}
		return append(out, value...), nil
	})
)

func integral(value []byte) (float64, error) {
	f, err := jsonparser.ParseFloat(value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrOutOfRange, value)
	}
	return f, nil
}

// Enum returns a Kind that maps wire strings onto a closed set of values.
// Strings missing from the mapping fail with ErrUnknownValue.
func Enum[V any](name string, mapping map[string]V) Kind[V] {
	return NewKind(name, func(value []byte, dataType jsonparser.ValueType) (V, error) {
		var zero V
		s, err := String.parse(value, dataType)
		if err != nil {
			return zero, err
		}
		v, ok := mapping[s]
		if !ok {
			return zero, fmt.Errorf("%w: %s %q", ErrUnknownValue, name, s)
		}
		return v, nil
	})
}

// Coercible wraps a numeric kind so it also accepts a JSON string holding a
// number, e.g. "1234.5". A JSON number is passed through unchanged.
func Coercible[V any](k Kind[V]) Kind[V] {
	return NewKind("coercible "+k.name, func(value []byte, dataType jsonparser.ValueType) (V, error) {
		if dataType != jsonparser.String {
			return k.parse(value, dataType)
		}
		var zero V
		if _, err := convert.FloatFromString(string(value)); err != nil {
			return zero, fmt.Errorf("%w: %q", ErrNotNumeric, value)
		}
		v, err := k.parse(value, jsonparser.Number)
		if err != nil {
			return zero, fmt.Errorf("%w: %q: %w", ErrNotNumeric, value, err)
		}
		return v, nil
	})
}
