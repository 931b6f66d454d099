package request

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVerbose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.False(t, IsVerbose(ctx, false))
	assert.True(t, IsVerbose(ctx, true))
	assert.True(t, IsVerbose(WithVerbose(ctx), false))
	assert.False(t, IsVerbose(context.WithValue(ctx, verboseKey, "yes"), false), "non bool values must be ignored")
	assert.False(t, IsVerbose(WithRetryNotAllowed(ctx), false))
}

func TestWithRetryNotAllowed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.True(t, hasRetryNotAllowed(WithRetryNotAllowed(ctx)))
	assert.True(t, hasRetryNotAllowed(WithVerbose(WithRetryNotAllowed(ctx))), "flag must survive derived contexts")
	assert.False(t, hasRetryNotAllowed(ctx))
	assert.False(t, hasRetryNotAllowed(WithVerbose(ctx)))
}

func TestJobID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a, err := jobID(ctx)
	require.NoError(t, err)
	b, err := jobID(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "untagged contexts must get a fresh id per call")

	want := uuid.Must(uuid.NewV4())
	got, err := jobID(WithJobID(ctx, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = jobID(WithJobID(ctx, uuid.Nil))
	require.NoError(t, err)
	assert.False(t, got.IsNil(), "a nil id must be replaced")
}
