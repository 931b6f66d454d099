// Package nonce issues the per-request nonces required by authenticated
// exchange endpoints.
//
// A Generator samples the wall clock at microsecond resolution after a small
// random delay so that concurrent callers sharing a credential pair rarely
// sample the same tick. The jitter alone is best-effort; each Generator also
// tracks the last value it issued with an atomic high-water mark so it never
// issues the same value twice. Separate Generators (for example in separate
// processes) sharing one credential pair are only protected by the jitter.
package nonce

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"
)

// DefaultMaxJitter is the upper bound of the random delay inserted before the
// clock is sampled
const DefaultMaxJitter = 500 * time.Microsecond

// ErrClockBeforeEpoch is returned when the system clock reports a time before
// the Unix epoch
var ErrClockBeforeEpoch = errors.New("system clock is before the unix epoch")

// Value is a return type for Next
type Value uint64

// String is a Value method that changes format to a string
func (v Value) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// Generator issues strictly increasing microsecond nonces for one credential
// pair. The zero value is ready to use. A Generator must not be copied after
// first use.
type Generator struct {
	// MaxJitter bounds the random pre-sample delay. Zero selects
	// DefaultMaxJitter and a negative value disables the delay.
	MaxJitter time.Duration

	now  func() time.Time
	last atomic.Uint64
}

// NewGenerator returns a Generator with the supplied jitter bound
func NewGenerator(maxJitter time.Duration) *Generator {
	return &Generator{MaxJitter: maxJitter}
}

// Next waits for a random sub-millisecond delay, samples the clock and returns
// the resulting nonce. Cancelling ctx during the delay abandons the nonce.
func (g *Generator) Next(ctx context.Context) (Value, error) {
	if err := g.jitter(ctx); err != nil {
		return 0, err
	}

	now := time.Now
	if g.now != nil {
		now = g.now
	}
	micros := now().UnixMicro()
	if micros < 0 {
		return 0, ErrClockBeforeEpoch
	}

	for {
		last := g.last.Load()
		next := uint64(micros)
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return Value(next), nil
		}
	}
}

// Last returns the most recently issued nonce, zero if none has been issued
func (g *Generator) Last() Value {
	return Value(g.last.Load())
}

func (g *Generator) jitter(ctx context.Context) error {
	maxJitter := g.MaxJitter
	if maxJitter == 0 {
		maxJitter = DefaultMaxJitter
	}
	if maxJitter < 0 {
		return ctx.Err()
	}

	t := time.NewTimer(rand.N(maxJitter))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
