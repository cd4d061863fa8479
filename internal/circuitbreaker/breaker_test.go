package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

func TestOpensAfterMaxFailures(t *testing.T) {
	b := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		err := b.Call(func() error { return errUpstream })
		require.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, StateOpen, b.State())

	// While open, calls fail fast without running.
	ran := false
	err := b.Call(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, ran)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(3, time.Minute)

	require.Error(t, b.Call(func() error { return errUpstream }))
	require.Error(t, b.Call(func() error { return errUpstream }))
	require.NoError(t, b.Call(func() error { return nil }))

	// Two more failures should not open (count was reset).
	require.Error(t, b.Call(func() error { return errUpstream }))
	require.Error(t, b.Call(func() error { return errUpstream }))
	assert.Equal(t, StateClosed, b.State())
}

func TestProbeAfterCooldown(t *testing.T) {
	b := New(1, 10*time.Millisecond)

	require.Error(t, b.Call(func() error { return errUpstream }))
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// Failed probe reopens immediately.
	require.Error(t, b.Call(func() error { return errUpstream }))
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	// Successful probe closes.
	require.NoError(t, b.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestReset(t *testing.T) {
	b := New(1, time.Minute)
	require.Error(t, b.Call(func() error { return errUpstream }))
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Call(func() error { return nil }))
}

func TestMetrics(t *testing.T) {
	b := New(5, time.Minute)
	require.Error(t, b.Call(func() error { return errUpstream }))

	m := b.Metrics()
	assert.Equal(t, "closed", m.State)
	assert.Equal(t, 1, m.Failures)
	assert.Equal(t, 5, m.MaxFailures)
}
