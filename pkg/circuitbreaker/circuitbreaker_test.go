package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func fail() error    { return errUpstream }
func succeed() error { return nil }

func TestOpensAfterMaxFailures(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(fail), errUpstream)
	}
	assert.ErrorIs(t, cb.Execute(succeed), ErrOpen, "calls rejected while open")
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(fail))
	require.NoError(t, cb.Execute(succeed))
	require.Error(t, cb.Execute(fail))
	// Still closed: the success cleared the streak.
	assert.NoError(t, cb.Execute(succeed))
}

func TestHalfOpenProbe(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(fail))
	require.ErrorIs(t, cb.Execute(succeed), ErrOpen)

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, cb.Execute(succeed), "probe allowed after timeout")
	assert.NoError(t, cb.Execute(succeed), "breaker closed again")
}

func TestFailedProbeReopens(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(fail))
	time.Sleep(20 * time.Millisecond)
	require.ErrorIs(t, cb.Execute(fail), errUpstream)
	assert.ErrorIs(t, cb.Execute(succeed), ErrOpen)
}

func TestDefaults(t *testing.T) {
	cb := New(Settings{Name: "defaults"})
	assert.Equal(t, "defaults", cb.Name())
	assert.NoError(t, cb.Execute(succeed))
}
