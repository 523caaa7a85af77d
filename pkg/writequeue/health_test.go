package writequeue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthMonitor_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("starts healthy", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
		assert.Equal(t, HealthHealthy, h.Status())
	})

	t.Run("single error degrades", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
		h.RecordError()
		assert.Equal(t, HealthDegraded, h.Status())
	})

	t.Run("threshold errors make unavailable", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
		for range 10 {
			h.RecordError()
		}
		assert.Equal(t, HealthUnavailable, h.Status())
	})

	t.Run("single success clears the window", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
		for range 10 {
			h.RecordError()
		}
		h.RecordSuccess()
		assert.Equal(t, HealthHealthy, h.Status())
		assert.False(t, h.GateRetries())
	})

	t.Run("stale errors fall out of the window", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(20*time.Millisecond, 3, 10, 5*time.Second)
		h.RecordError()
		assert.Equal(t, HealthDegraded, h.Status())

		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, HealthHealthy, h.Status())
	})
}

func TestHealthMonitor_GateRetries(t *testing.T) {
	t.Parallel()

	t.Run("gates while unavailable inside cooldown", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
		for range 10 {
			h.RecordError()
		}
		assert.True(t, h.GateRetries())
	})

	t.Run("does not gate when merely degraded", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
		h.RecordError()
		assert.False(t, h.GateRetries())
	})

	t.Run("releases after cooldown elapses", func(t *testing.T) {
		t.Parallel()

		h := newHealthMonitor(time.Minute, 3, 10, 10*time.Millisecond)
		for range 10 {
			h.RecordError()
		}
		assert.True(t, h.GateRetries())

		time.Sleep(20 * time.Millisecond)
		assert.False(t, h.GateRetries())
	})
}

func TestHealthMonitor_AllowFastPath(t *testing.T) {
	t.Parallel()

	h := newHealthMonitor(time.Minute, 3, 10, 5*time.Second)
	assert.True(t, h.AllowFastPath())

	h.RecordError()
	assert.False(t, h.AllowFastPath())

	h.RecordSuccess()
	assert.True(t, h.AllowFastPath())
}
