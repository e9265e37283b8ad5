package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold, probes int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   probes,
	})
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b, now := newTestBreaker(2, 1)

	require.NoError(t, b.Allow())
	b.Done(true)
	assert.Equal(t, CircuitStateClosed, b.State())

	require.NoError(t, b.Allow())
	b.Done(true)
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	*now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "probe slots are exhausted")

	b.Done(false)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(2, 1)

	b.Done(true)
	b.Done(false)
	b.Done(true)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b, now := newTestBreaker(1, 2)

	require.NoError(t, b.Allow())
	b.Done(true)
	*now = now.Add(5 * time.Second)

	require.NoError(t, b.Allow())
	b.Done(true)
	assert.Equal(t, CircuitStateOpen, b.State())

	*now = now.Add(4 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_Execute(t *testing.T) {
	b, _ := newTestBreaker(1, 1)
	errIgnored := errors.New("bad request")
	errUpstream := errors.New("upstream 503")
	transient := func(err error) bool { return errors.Is(err, errUpstream) }

	err := b.Execute(func() error { return errIgnored }, transient)
	assert.ErrorIs(t, err, errIgnored)
	assert.Equal(t, CircuitStateClosed, b.State())

	err = b.Execute(func() error { return errUpstream }, transient)
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, CircuitStateOpen, b.State())

	called := false
	err = b.Execute(func() error { called = true; return nil }, transient)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow())
		b.Done(true)
	}
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreakerConfig_Normalize(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true, FailureThreshold: -1, HalfOpenMaxReq: 3}.Normalize()
	assert.Equal(t, CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   3,
	}, got)
	assert.Equal(t, "half_open", CircuitStateHalfOpen.String())
}
