package lastseen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTouchKeepsLatest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "AA:BB:CC:DD:EE:01")
	require.NoError(t, err)
	assert.False(t, ok)

	t1 := time.Date(2026, 4, 2, 5, 0, 0, 0, time.UTC)
	require.NoError(t, m.Touch(ctx, "AA:BB:CC:DD:EE:01", t1))
	require.NoError(t, m.Touch(ctx, "AA:BB:CC:DD:EE:01", t1.Add(-time.Hour)))

	at, ok, err := m.Get(ctx, "AA:BB:CC:DD:EE:01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, t1, at)
}

func TestMemoryForget(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Touch(ctx, "AA:BB:CC:DD:EE:01", time.Now()))
	require.NoError(t, m.Forget(ctx, "AA:BB:CC:DD:EE:01"))
	require.NoError(t, m.Forget(ctx, "AA:BB:CC:DD:EE:02"))

	_, ok, _ := m.Get(ctx, "AA:BB:CC:DD:EE:01")
	assert.False(t, ok)
}
