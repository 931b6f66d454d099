package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime(t *testing.T) {
	t.Parallel()
	var testTime Time

	require.NoError(t, json.Unmarshal([]byte(`null`), &testTime))
	assert.True(t, testTime.Time().IsZero())

	require.NoError(t, json.Unmarshal([]byte(`1628736847325`), &testTime))
	assert.Equal(t, time.UnixMilli(1628736847325), testTime.Time())

	require.NoError(t, json.Unmarshal([]byte(`"1628736847325"`), &testTime))
	assert.Equal(t, time.UnixMilli(1628736847325), testTime.Time())

	require.NoError(t, json.Unmarshal([]byte(`1573482478000.0`), &testTime))
	assert.Equal(t, time.UnixMilli(1573482478000), testTime.Time())

	require.NoError(t, json.Unmarshal([]byte(`1.5734824780e12`), &testTime))
	assert.Equal(t, time.UnixMilli(1573482478000), testTime.Time())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &testTime))
}

func TestTimeMarshalJSON(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(FromMillis(1628736847325))
	require.NoError(t, err)
	assert.Equal(t, "1628736847325", string(b))

	b, err = json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestMillis(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(100), FromMillis(100).Millis())
	assert.Zero(t, Time{}.Millis())
}
