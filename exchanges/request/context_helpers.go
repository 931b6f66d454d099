package request

import (
	"context"

	"github.com/gofrs/uuid"
)

type contextKey uint8

const (
	verboseKey contextKey = iota
	retryNotAllowedKey
	jobIDKey
)

// WithVerbose enables request and response logging for requests made with ctx
// without changing the verbosity of the Requester
func WithVerbose(ctx context.Context) context.Context {
	return context.WithValue(ctx, verboseKey, true)
}

// IsVerbose reports whether verbose is set or ctx was built with WithVerbose
func IsVerbose(ctx context.Context, verbose bool) bool {
	if verbose {
		return true
	}
	v, _ := ctx.Value(verboseKey).(bool)
	return v
}

// WithRetryNotAllowed disables retries for requests made with ctx. A failed
// attempt is returned to the caller as is.
func WithRetryNotAllowed(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryNotAllowedKey, struct{}{})
}

func hasRetryNotAllowed(ctx context.Context) bool {
	_, ok := ctx.Value(retryNotAllowedKey).(struct{})
	return ok
}

// WithJobID sets the identifier logged against every attempt of requests made
// with ctx, letting callers correlate their own log lines with the request
func WithJobID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// jobID returns the identifier attached by WithJobID or a new random one
func jobID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(jobIDKey).(uuid.UUID); ok && !id.IsNil() {
		return id, nil
	}
	return uuid.NewV4()
}
