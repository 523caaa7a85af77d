package writequeue

import (
	"context"
	"encoding/json"
	"time"
)

// SnapshotStore is the external key-value mirror used for crash recovery.
// It is best-effort: it is never read for decision-making during normal
// operation, only at startup, so its staleness or unavailability affects
// crash-recovery completeness, not runtime correctness.
type SnapshotStore interface {
	// Set stores the serialized snapshot under the key with an expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the snapshot bytes, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)
}

// snapshot is the wire format stored in the key-value mirror.
type snapshot struct {
	SavedAt time.Time     `json:"saved_at"`
	Writes  []QueuedWrite `json:"writes"`
}

// encodeSnapshot serializes the non-terminal portion of the queue.
func encodeSnapshot(writes []QueuedWrite) ([]byte, error) {
	return json.Marshal(snapshot{SavedAt: time.Now(), Writes: writes})
}

// decodeSnapshot reconstructs queued writes from a stored snapshot. Statuses
// are normalized back to pending regardless of stored state, since a
// processing attempt cannot have survived a restart. A corrupt snapshot is
// treated as an empty queue.
func decodeSnapshot(data []byte) []QueuedWrite {
	if len(data) == 0 {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}

	writes := make([]QueuedWrite, 0, len(snap.Writes))
	for _, w := range snap.Writes {
		if w.ID == "" || w.Model == "" || !w.Operation.Valid() {
			continue
		}
		w.Status = StatusPending
		if !w.Priority.Valid() {
			w.Priority = PriorityDefault
		}
		writes = append(writes, w)
	}
	return writes
}
