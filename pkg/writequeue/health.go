package writequeue

import (
	"sync"
	"time"
)

// HealthStatus is the tri-state health signal derived from the rolling
// datastore error window.
type HealthStatus int

const (
	// HealthHealthy means no datastore errors inside the window.
	HealthHealthy HealthStatus = iota
	// HealthDegraded means some errors were recorded but below the
	// unavailable threshold.
	HealthDegraded
	// HealthUnavailable means the error count reached the unavailable
	// threshold and dispatch should back off.
	HealthUnavailable
)

// String returns the string representation of the health status.
func (s HealthStatus) String() string {
	switch s {
	case HealthHealthy:
		return "healthy"
	case HealthDegraded:
		return "degraded"
	case HealthUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// healthMonitor tracks a rolling window of datastore errors and derives the
// current health status. Safe for concurrent use.
type healthMonitor struct {
	mu sync.RWMutex

	window               time.Duration
	degradedThreshold    int
	unavailableThreshold int
	cooldown             time.Duration

	errorTimes []time.Time
	lastError  time.Time
	status     HealthStatus
}

func newHealthMonitor(window time.Duration, degraded, unavailable int, cooldown time.Duration) *healthMonitor {
	return &healthMonitor{
		window:               window,
		degradedThreshold:    degraded,
		unavailableThreshold: unavailable,
		cooldown:             cooldown,
		status:               HealthHealthy,
	}
}

// RecordSuccess clears the rolling error window. A single success is enough
// to return to healthy.
func (h *healthMonitor) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errorTimes = h.errorTimes[:0]
	h.status = HealthHealthy
}

// RecordError appends an error occurrence and recomputes the status against
// the window thresholds.
func (h *healthMonitor) RecordError() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.errorTimes = append(h.errorTimes, now)
	h.lastError = now
	h.prune(now)
	h.recompute()
}

// Status returns the current health status after pruning stale errors.
func (h *healthMonitor) Status() HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune(time.Now())
	h.recompute()
	return h.status
}

// GateRetries reports whether dispatch should skip this tick: the datastore
// is unavailable and the cool-down since the most recent error has not yet
// elapsed. Avoids hammering a down datastore.
func (h *healthMonitor) GateRetries() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.prune(now)
	h.recompute()

	return h.status == HealthUnavailable && now.Sub(h.lastError) < h.cooldown
}

// prune drops window entries older than the window duration.
// Must be called while holding the mutex.
func (h *healthMonitor) prune(now time.Time) {
	cutoff := now.Add(-h.window)
	i := 0
	for i < len(h.errorTimes) && h.errorTimes[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		h.errorTimes = append(h.errorTimes[:0], h.errorTimes[i:]...)
	}
}

// AllowFastPath reports whether an immediate synchronous write may bypass
// the queue: fully healthy and the error count has not crossed the soft
// queue-writes threshold.
func (h *healthMonitor) AllowFastPath() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.prune(now)
	h.recompute()

	return h.status == HealthHealthy && len(h.errorTimes) < h.degradedThreshold
}

// recompute derives the status from the current window count.
// Must be called while holding the mutex.
func (h *healthMonitor) recompute() {
	switch n := len(h.errorTimes); {
	case n >= h.unavailableThreshold:
		h.status = HealthUnavailable
	case n > 0:
		h.status = HealthDegraded
	default:
		h.status = HealthHealthy
	}
}
