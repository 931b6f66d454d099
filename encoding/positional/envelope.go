package positional

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/thrasher-corp/bfxclient/types"
	"github.com/volatiletech/null"
)

// Nesting reports how the payload slot of an envelope wrapped its record
type Nesting uint8

// Payload nesting shapes
const (
	// NestingNone is reported when the payload slot held null
	NestingNone Nesting = iota
	// NestingSingle means the payload slot held the record's fields directly
	NestingSingle
	// NestingDouble means the payload slot held a list whose first entry was
	// the record's fields
	NestingDouble
)

// String implements fmt.Stringer
func (n Nesting) String() string {
	switch n {
	case NestingNone:
		return "none"
	case NestingSingle:
		return "single"
	case NestingDouble:
		return "double"
	}
	return fmt.Sprintf("Nesting(%d)", uint8(n))
}

// Envelope is the outer notification wrapper used by write endpoints:
// [mts, type, message_id, null, payload, code, status, text]
type Envelope struct {
	Timestamp types.Time
	Kind      string
	MessageID null.Int64
	// Payload is the flat field sequence of the inner record after
	// unwrapping
	Payload json.RawMessage
	Nesting Nesting
	Code    null.Int64
	Status  string
	Text    string
}

type payloadSlot struct {
	inner   []byte
	nesting Nesting
}

var payloadKind = NewKind("payload", func(value []byte, dataType jsonparser.ValueType) (payloadSlot, error) {
	if dataType != jsonparser.Array {
		return payloadSlot{}, wrongType("array", dataType)
	}
	inner, n, err := UnwrapPayload(value)
	if errors.Is(err, ErrEmptyPayload) {
		// Rejections may carry [] or [[]], the status and text still follow
		return payloadSlot{nesting: NestingNone}, nil
	}
	return payloadSlot{inner: inner, nesting: n}, err
})

var envelopeSchema = NewSchema("envelope",
	Required("mts", Time, func(e *Envelope, v types.Time) { e.Timestamp = v }),
	Required("type", String, func(e *Envelope, v string) { e.Kind = v }),
	Nullable("message_id", Int64, func(e *Envelope, v int64, ok bool) { e.MessageID = null.NewInt64(v, ok) }),
	Skip[Envelope]("placeholder"),
	Nullable("payload", payloadKind, func(e *Envelope, v payloadSlot, ok bool) {
		if ok {
			e.Payload, e.Nesting = v.inner, v.nesting
		}
	}),
	Nullable("code", Int64, func(e *Envelope, v int64, ok bool) { e.Code = null.NewInt64(v, ok) }),
	Required("status", String, func(e *Envelope, v string) { e.Status = v }),
	Nullable("text", String, func(e *Envelope, v string, _ bool) { e.Text = v }),
)

// DecodeEnvelope decodes the outer notification fields and resolves the
// payload slot to the inner record's field sequence
func DecodeEnvelope(data []byte) (Envelope, error) {
	return envelopeSchema.Decode(data)
}

// UnwrapPayload resolves the nesting of a payload slot. If the first entry of
// value is itself an array the payload is double nested and that entry is
// returned, otherwise value is already the flat field sequence.
func UnwrapPayload(value []byte) ([]byte, Nesting, error) {
	elems, err := elements(value)
	if err != nil {
		return nil, NestingNone, err
	}
	if len(elems) == 0 {
		return nil, NestingNone, ErrEmptyPayload
	}
	if elems[0].dataType == jsonparser.Array {
		return unwrapDouble(elems[0].value)
	}
	return unwrapSingle(value)
}

func unwrapSingle(value []byte) ([]byte, Nesting, error) {
	return value, NestingSingle, nil
}

func unwrapDouble(first []byte) ([]byte, Nesting, error) {
	elems, err := elements(first)
	if err != nil {
		return nil, NestingNone, err
	}
	if len(elems) == 0 {
		return nil, NestingNone, ErrEmptyPayload
	}
	return first, NestingDouble, nil
}

// DecodeNotification decodes an envelope and its inner record. The decoded
// envelope is returned even when the inner record fails so that the status
// and text of a rejected request remain available to the caller.
func DecodeNotification[T any](data []byte, s *Schema[T]) (Envelope, T, error) {
	var zero T
	env, err := DecodeEnvelope(data)
	if err != nil {
		return env, zero, err
	}
	if env.Nesting == NestingNone {
		return env, zero, &DecodeError{Record: s.name, Field: "payload", Index: 4, Err: ErrEmptyPayload}
	}
	rec, err := s.Decode(env.Payload)
	if err != nil {
		return env, zero, err
	}
	return env, rec, nil
}
