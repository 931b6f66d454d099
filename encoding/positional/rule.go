package positional

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// Op identifies the extraction rule applied to one array slot
type Op uint8

// Rule operations
const (
	OpRequired Op = iota
	OpNullable
	OpSentinel
	OpSkip
	OpFlags
	OpNested
	OpCoercible
)

var opNames = [...]string{
	OpRequired:  "required",
	OpNullable:  "nullable",
	OpSentinel:  "sentinel",
	OpSkip:      "skip",
	OpFlags:     "flags",
	OpNested:    "nested",
	OpCoercible: "coercible",
}

// String implements fmt.Stringer
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Rule consumes exactly one array element and stores the result in a record
// of type T
type Rule[T any] struct {
	Name  string
	Op    Op
	apply func(dst *T, value []byte, dataType jsonparser.ValueType) error
}

// Required decodes a mandatory element; JSON null is a decode error
func Required[T, V any](name string, kind Kind[V], set func(*T, V)) Rule[T] {
	return Rule[T]{Name: name, Op: OpRequired, apply: func(dst *T, value []byte, dataType jsonparser.ValueType) error {
		v, err := kind.parse(value, dataType)
		if err != nil {
			return err
		}
		set(dst, v)
		return nil
	}}
}

// Nullable decodes an element that may be JSON null, in which case set is
// called with the zero value and valid set to false
func Nullable[T, V any](name string, kind Kind[V], set func(dst *T, v V, valid bool)) Rule[T] {
	return Rule[T]{Name: name, Op: OpNullable, apply: func(dst *T, value []byte, dataType jsonparser.ValueType) error {
		var v V
		if dataType == jsonparser.Null {
			set(dst, v, false)
			return nil
		}
		v, err := kind.parse(value, dataType)
		if err != nil {
			return err
		}
		set(dst, v, true)
		return nil
	}}
}

// Sentinel decodes an element whose absence is signalled by a specific in
// range value, e.g. 0 for an unset price. A decoded value equal to sentinel,
// or JSON null, calls set with valid false. A genuine value equal to the
// sentinel cannot be told apart from absence on the wire.
func Sentinel[T any, V comparable](name string, kind Kind[V], sentinel V, set func(dst *T, v V, valid bool)) Rule[T] {
	return Rule[T]{Name: name, Op: OpSentinel, apply: func(dst *T, value []byte, dataType jsonparser.ValueType) error {
		if dataType == jsonparser.Null {
			var zero V
			set(dst, zero, false)
			return nil
		}
		v, err := kind.parse(value, dataType)
		if err != nil {
			return err
		}
		set(dst, v, v != sentinel)
		return nil
	}}
}

// Skip consumes a reserved placeholder slot of any shape
func Skip[T any](name string) Rule[T] {
	return Rule[T]{Name: name, Op: OpSkip}
}

// Flags decodes a bit field that may arrive as a number or a numeric string
func Flags[T any](name string, flags *FlagSet, set func(*T, uint32)) Rule[T] {
	return Rule[T]{Name: name, Op: OpFlags, apply: func(dst *T, value []byte, dataType jsonparser.ValueType) error {
		bits, err := flags.Decode(value, dataType)
		if err != nil {
			return err
		}
		set(dst, bits)
		return nil
	}}
}

// Nested decodes an element that is itself a positional array
func Nested[T, C any](name string, child *Schema[C], set func(*T, C)) Rule[T] {
	return Rule[T]{Name: name, Op: OpNested, apply: func(dst *T, value []byte, dataType jsonparser.ValueType) error {
		if dataType != jsonparser.Array {
			return wrongType("array", dataType)
		}
		c, err := child.Decode(value)
		if err != nil {
			return err
		}
		set(dst, c)
		return nil
	}}
}

// CoercibleNumeric decodes a numeric element that may arrive as a JSON string
// holding the number
func CoercibleNumeric[T, V any](name string, kind Kind[V], set func(*T, V)) Rule[T] {
	r := Required(name, Coercible(kind), set)
	r.Op = OpCoercible
	return r
}

// Embed adapts the rules of a narrower schema so that they populate the field
// of T returned by field. Wider records use it to reuse a shared prefix.
func Embed[T, P any](s *Schema[P], field func(*T) *P) []Rule[T] {
	out := make([]Rule[T], len(s.rules))
	for i := range s.rules {
		r := s.rules[i]
		out[i] = Rule[T]{Name: r.Name, Op: r.Op}
		if r.apply == nil {
			continue
		}
		out[i].apply = func(dst *T, value []byte, dataType jsonparser.ValueType) error {
			return r.apply(field(dst), value, dataType)
		}
	}
	return out
}
