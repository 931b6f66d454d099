package positional

import (
	"errors"
	"fmt"
)

// Decode failure reasons, reachable from any *DecodeError with errors.Is
var (
	ErrMalformedJSON  = errors.New("malformed json")
	ErrNotArray       = errors.New("value is not a json array")
	ErrMissingElement = errors.New("missing element")
	ErrWrongType      = errors.New("unexpected json type")
	ErrUnknownValue   = errors.New("unknown enumeration value")
	ErrNotNumeric     = errors.New("string does not hold a number")
	ErrOutOfRange     = errors.New("number out of range")
	ErrInvalidFlags   = errors.New("invalid flags")
	ErrEmptyPayload   = errors.New("empty payload")
)

// DecodeError identifies the record, field and array index at which a
// positional decode failed
type DecodeError struct {
	Record string
	Field  string
	Index  int
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: field %q at index %d: %v", e.Record, e.Field, e.Index, e.Err)
}

// Unwrap returns the underlying reason
func (e *DecodeError) Unwrap() error {
	return e.Err
}
