// Package positional decodes exchange responses that encode records as JSON
// arrays with fields identified by index rather than by name.
//
// A Schema is an ordered table of rules, one per array slot. Decoding walks
// the array left to right and consumes exactly one element per rule. Running
// out of elements is an error; trailing elements the schema does not describe
// are ignored so that fields appended by the exchange do not break decoding.
package positional

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// Schema describes one positional record type
type Schema[T any] struct {
	name  string
	rules []Rule[T]
}

// NewSchema returns a schema for the record named name
func NewSchema[T any](name string, rules ...Rule[T]) *Schema[T] {
	return &Schema[T]{name: name, rules: rules}
}

// Name returns the record name used in decode errors
func (s *Schema[T]) Name() string {
	return s.name
}

// Len returns the number of array elements the schema consumes
func (s *Schema[T]) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the schema's rule table
func (s *Schema[T]) Rules() []Rule[T] {
	return append([]Rule[T](nil), s.rules...)
}

// Decode decodes a single JSON array into a record. On failure the zero
// record is returned alongside a *DecodeError.
func (s *Schema[T]) Decode(data []byte) (T, error) {
	elems, err := elements(data)
	if err != nil {
		var zero T
		return zero, &DecodeError{Record: s.name, Index: -1, Err: err}
	}
	return s.decodeElements(elems)
}

func (s *Schema[T]) decodeElements(elems []element) (T, error) {
	var rec, zero T
	for i := range s.rules {
		r := &s.rules[i]
		if i >= len(elems) {
			return zero, &DecodeError{Record: s.name, Field: r.Name, Index: i, Err: ErrMissingElement}
		}
		if r.apply == nil {
			continue
		}
		if err := r.apply(&rec, elems[i].value, elems[i].dataType); err != nil {
			return zero, &DecodeError{Record: s.name, Field: r.Name, Index: i, Err: err}
		}
	}
	return rec, nil
}

// DecodeSlice decodes a JSON array whose elements are each a record
func DecodeSlice[T any](data []byte, s *Schema[T]) ([]T, error) {
	rows, err := elements(data)
	if err != nil {
		return nil, &DecodeError{Record: s.name, Index: -1, Err: err}
	}
	out := make([]T, len(rows))
	for i := range rows {
		if rows[i].dataType != jsonparser.Array {
			return nil, fmt.Errorf("%s row %d: %w", s.name, i, wrongType("array", rows[i].dataType))
		}
		if out[i], err = s.Decode(rows[i].value); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.name, i, err)
		}
	}
	return out, nil
}

type element struct {
	value    []byte
	dataType jsonparser.ValueType
}

// elements splits a JSON array into its top level elements
func elements(data []byte) ([]element, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("%w: got %s", ErrNotArray, dataType)
	}

	var (
		out   []element
		cbErr error
	)
	_, err = jsonparser.ArrayEach(value, func(v []byte, dt jsonparser.ValueType, _ int, e error) {
		if e != nil {
			if cbErr == nil {
				cbErr = e
			}
			return
		}
		out = append(out, element{value: v, dataType: dt})
	})
	if err == nil {
		err = cbErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	return out, nil
}
