package writequeue

import (
	"sync"
	"time"
)

// Stats is an aggregate view over the queue for operational visibility.
type Stats struct {
	ByStatus         map[Status]int `json:"by_status"`
	TotalQueued      int64          `json:"total_queued"`
	TotalProcessed   int64          `json:"total_processed"`
	TotalFailed      int64          `json:"total_failed"`
	AvgProcessing    time.Duration  `json:"avg_processing"`
	OldestPendingAge time.Duration  `json:"oldest_pending_age"`
	Health           string         `json:"health"`
	IsHealthy        bool           `json:"is_healthy"`
}

// movingAverage keeps a bounded sample window of processing durations.
// Safe for concurrent use.
type movingAverage struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	filled  bool
}

func newMovingAverage(size int) *movingAverage {
	if size <= 0 {
		size = 100
	}
	return &movingAverage{samples: make([]time.Duration, size)}
}

// Record adds a sample, evicting the oldest once the window is full.
func (m *movingAverage) Record(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples[m.next] = d
	m.next++
	if m.next == len(m.samples) {
		m.next = 0
		m.filled = true
	}
}

// Value returns the current average, zero when no samples were recorded.
func (m *movingAverage) Value() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.next
	if m.filled {
		n = len(m.samples)
	}
	if n == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range m.samples[:n] {
		sum += d
	}
	return sum / time.Duration(n)
}
