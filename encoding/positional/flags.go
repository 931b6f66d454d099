package positional

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// Flag is a single named bit in a FlagSet
type Flag struct {
	Name string
	Bit  uint32
}

// FlagSet is a closed set of single bit flags that combine by bitwise OR
type FlagSet struct {
	name  string
	flags []Flag
	known uint32
}

// NewFlagSet returns a FlagSet. Every flag must be a single distinct bit.
func NewFlagSet(name string, flags ...Flag) (*FlagSet, error) {
	fs := &FlagSet{name: name, flags: append([]Flag(nil), flags...)}
	for _, f := range flags {
		if bits.OnesCount32(f.Bit) != 1 {
			return nil, fmt.Errorf("flag %s: %w: %d is not a single bit", f.Name, ErrInvalidFlags, f.Bit)
		}
		if fs.known&f.Bit != 0 {
			return nil, fmt.Errorf("flag %s: %w: bit %d defined twice", f.Name, ErrInvalidFlags, f.Bit)
		}
		fs.known |= f.Bit
	}
	return fs, nil
}

// MustFlagSet is like NewFlagSet but panics on an invalid definition
func MustFlagSet(name string, flags ...Flag) *FlagSet {
	fs, err := NewFlagSet(name, flags...)
	if err != nil {
		panic(err)
	}
	return fs
}

// Known returns the union of every defined bit
func (fs *FlagSet) Known() uint32 {
	return fs.known
}

// Validate checks that v only contains defined bits
func (fs *FlagSet) Validate(v uint64) (uint32, error) {
	if v > math.MaxUint32 || uint32(v)&^fs.known != 0 {
		return 0, fmt.Errorf("%s %w: %d has undefined bits set", fs.name, ErrInvalidFlags, v)
	}
	return uint32(v), nil
}

// Decode converts a wire element to a bit field. The element may be a JSON
// number or a string holding a non-negative integer. Undefined bits are an
// error.
func (fs *FlagSet) Decode(value []byte, dataType jsonparser.ValueType) (uint32, error) {
	var raw string
	switch dataType {
	case jsonparser.Number:
		raw = string(value)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return 0, err
		}
		raw = strings.TrimSpace(s)
	default:
		return 0, wrongType("number or numeric string", dataType)
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%s %w: %q is not numeric", fs.name, ErrInvalidFlags, raw)
		}
		if f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
			return 0, fmt.Errorf("%s %w: %q is not a valid bit field", fs.name, ErrInvalidFlags, raw)
		}
		v = uint64(f)
	}
	return fs.Validate(v)
}

// Encode combines the supplied flags into a single bit field. Each flag must
// belong to the set.
func (fs *FlagSet) Encode(flags ...uint32) (uint32, error) {
	var out uint32
	for _, f := range flags {
		out |= f
	}
	return fs.Validate(uint64(out))
}

// Has reports whether every bit of flag is set in v
func Has(v, flag uint32) bool {
	return v&flag == flag
}

// Names returns the names of the flags set in v in definition order
func (fs *FlagSet) Names(v uint32) []string {
	var out []string
	for _, f := range fs.flags {
		if v&f.Bit != 0 {
			out = append(out, f.Name)
		}
	}
	return out
}
