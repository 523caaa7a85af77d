package writequeue

import (
	"sync"
	"time"
)

// queueStore is the in-memory arena of QueuedWrite records. The live order
// holds non-terminal records sorted by priority tier, insertion-ordered
// within each tier. Failed records stay in the arena (off the live order)
// for operator inspection until explicitly cleared or retried.
// Safe for concurrent use; the manager never mutates records outside it.
type queueStore struct {
	mu     sync.RWMutex
	writes map[string]*QueuedWrite
	order  []string // live queue: pending, processing, retrying
	failed []string // terminal failed, retained
	byIdem map[string]string
}

func newQueueStore() *queueStore {
	return &queueStore{
		writes: make(map[string]*QueuedWrite),
		byIdem: make(map[string]string),
	}
}

// Insert places the record in the live order, after the last entry of the
// same or higher priority tier. FIFO within a tier is preserved.
func (s *queueStore) Insert(w *QueuedWrite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes[w.ID] = w
	if w.IdempotencyKey != "" {
		s.byIdem[w.IdempotencyKey] = w.ID
	}
	s.insertOrdered(w.ID, w.Priority)
}

// Get returns a copy of the record, if present.
func (s *queueStore) Get(id string) (QueuedWrite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.writes[id]
	if !ok {
		return QueuedWrite{}, false
	}
	return *w, true
}

// ByIdempotencyKey returns a copy of the non-terminal record holding the key.
func (s *queueStore) ByIdempotencyKey(key string) (QueuedWrite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byIdem[key]
	if !ok {
		return QueuedWrite{}, false
	}
	w, ok := s.writes[id]
	if !ok || w.Status.Terminal() {
		return QueuedWrite{}, false
	}
	return *w, true
}

// LiveLen returns the number of records in the live queue.
func (s *queueStore) LiveLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Position returns the 1-based place of the record in the live queue,
// or 0 if absent.
func (s *queueStore) Position(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, qid := range s.order {
		if qid == id {
			return i + 1
		}
	}
	return 0
}

// NextBatch returns copies of up to n pending/retrying records in queue
// order. Records already processing are skipped.
func (s *queueStore) NextBatch(n int) []QueuedWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := make([]QueuedWrite, 0, n)
	for _, id := range s.order {
		w := s.writes[id]
		if w.Status != StatusPending && w.Status != StatusRetrying {
			continue
		}
		batch = append(batch, *w)
		if len(batch) == n {
			break
		}
	}
	return batch
}

// MarkProcessing transitions a pending/retrying record to processing and
// increments its attempt counter. Returns false if the record is gone or
// not dispatchable, which can happen when it was canceled between batch
// selection and dispatch.
func (s *queueStore) MarkProcessing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writes[id]
	if !ok || (w.Status != StatusPending && w.Status != StatusRetrying) {
		return false
	}
	w.Status = StatusProcessing
	w.Attempts++
	return true
}

// Complete removes the record from the arena entirely and returns a copy
// with its final state. Completed records are not retained.
func (s *queueStore) Complete(id string) (QueuedWrite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writes[id]
	if !ok {
		return QueuedWrite{}, false
	}
	now := time.Now()
	w.Status = StatusCompleted
	w.ProcessedAt = &now
	final := *w
	s.evict(id)
	return final, true
}

// Fail records a dispatch failure. If attempts remain the record becomes
// retrying and stays in place for the next tick; otherwise it turns
// terminal failed and moves off the live order. Returns a copy and whether
// the record is now terminal.
func (s *queueStore) Fail(id string, errMsg string) (QueuedWrite, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writes[id]
	if !ok {
		return QueuedWrite{}, false, false
	}
	w.LastError = errMsg
	if w.Attempts >= w.MaxAttempts {
		now := time.Now()
		w.Status = StatusFailed
		w.ProcessedAt = &now
		s.removeFromOrder(id)
		s.failed = append(s.failed, id)
		if w.IdempotencyKey != "" {
			// Terminal records must not block new idempotent enqueues.
			delete(s.byIdem, w.IdempotencyKey)
		}
		return *w, true, true
	}
	w.Status = StatusRetrying
	return *w, true, false
}

// Remove deletes a pending or retrying record. Processing records cannot be
// removed while an attempt is in flight.
func (s *queueStore) Remove(id string) (QueuedWrite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writes[id]
	if !ok || (w.Status != StatusPending && w.Status != StatusRetrying) {
		return QueuedWrite{}, false
	}
	final := *w
	s.evict(id)
	return final, true
}

// Live returns copies of the live queue in order.
func (s *queueStore) Live() []QueuedWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]QueuedWrite, 0, len(s.order)+len(s.failed))
	for _, id := range s.order {
		out = append(out, *s.writes[id])
	}
	for _, id := range s.failed {
		out = append(out, *s.writes[id])
	}
	return out
}

// NonTerminal returns copies of pending and retrying records for snapshots.
// Processing records are included as well since a restart would lose their
// in-flight attempt anyway; load normalizes all statuses back to pending.
func (s *queueStore) NonTerminal() []QueuedWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]QueuedWrite, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.writes[id])
	}
	return out
}

// CountByStatus returns the number of records per status.
func (s *queueStore) CountByStatus() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Status]int)
	for _, w := range s.writes {
		counts[w.Status]++
	}
	return counts
}

// OldestPendingAge returns the age of the oldest live record, zero when the
// live queue is empty.
func (s *queueStore) OldestPendingAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest time.Time
	for _, id := range s.order {
		w := s.writes[id]
		if oldest.IsZero() || w.CreatedAt.Before(oldest) {
			oldest = w.CreatedAt
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return time.Since(oldest)
}

// FailedLen returns the number of retained failed records.
func (s *queueStore) FailedLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.failed)
}

// RetryFailed moves every failed record back to the live order as retrying
// with its attempt counter reset. Returns the number of revived records.
func (s *queueStore) RetryFailed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.failed)
	for _, id := range s.failed {
		w := s.writes[id]
		w.Status = StatusRetrying
		w.Attempts = 0
		w.ProcessedAt = nil
		if w.IdempotencyKey != "" {
			// The terminal failure released the key and a newer write may
			// have claimed it since. The revived record then gives its key
			// up; a key never maps to two live records.
			if _, taken := s.byIdem[w.IdempotencyKey]; taken {
				w.IdempotencyKey = ""
			} else {
				s.byIdem[w.IdempotencyKey] = id
			}
		}
		s.insertOrdered(id, w.Priority)
	}
	s.failed = s.failed[:0]
	return n
}

// ClearFailed drops all retained failed records. Returns the number removed.
func (s *queueStore) ClearFailed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.failed)
	for _, id := range s.failed {
		delete(s.writes, id)
	}
	s.failed = s.failed[:0]
	return n
}

// Clear drops every record that is not currently processing.
func (s *queueStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, id := range s.order {
		w := s.writes[id]
		if w.Status == StatusProcessing {
			kept = append(kept, id)
			continue
		}
		if w.IdempotencyKey != "" {
			delete(s.byIdem, w.IdempotencyKey)
		}
		delete(s.writes, id)
	}
	s.order = kept

	for _, id := range s.failed {
		delete(s.writes, id)
	}
	s.failed = s.failed[:0]
}

// insertOrdered places an id in the live order by priority tier.
// Must be called while holding the mutex.
func (s *queueStore) insertOrdered(id string, p Priority) {
	pos := len(s.order)
	for i, qid := range s.order {
		if s.writes[qid].Priority.rank() > p.rank() {
			pos = i
			break
		}
	}
	s.order = append(s.order, "")
	copy(s.order[pos+1:], s.order[pos:])
	s.order[pos] = id
}

// evict removes a record from the arena and all indexes.
// Must be called while holding the mutex.
func (s *queueStore) evict(id string) {
	w := s.writes[id]
	if w != nil && w.IdempotencyKey != "" {
		delete(s.byIdem, w.IdempotencyKey)
	}
	s.removeFromOrder(id)
	delete(s.writes, id)
}

// removeFromOrder drops the id from the live order, preserving order.
// Must be called while holding the mutex.
func (s *queueStore) removeFromOrder(id string) {
	for i, qid := range s.order {
		if qid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
