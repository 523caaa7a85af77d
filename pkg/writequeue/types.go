package writequeue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Operation represents the kind of write performed against the datastore.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationUpsert Operation = "upsert"
)

// Valid checks if the operation is one of the supported kinds.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete, OperationUpsert:
		return true
	}
	return false
}

// RequiresSelector reports whether the operation needs match criteria
// to locate the target record.
func (o Operation) RequiresSelector() bool {
	return o == OperationUpdate || o == OperationDelete || o == OperationUpsert
}

// Priority is a coarse scheduling class for queued writes.
// All high writes drain before any normal, and all normal before any low.
type Priority string

const (
	PriorityHigh    Priority = "high"
	PriorityNormal  Priority = "normal"
	PriorityLow     Priority = "low"
	PriorityDefault Priority = PriorityNormal
)

// Valid checks if the priority is a known tier.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// rank orders priorities for queue insertion; lower drains first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	default:
		return 2
	}
}

// Status represents the lifecycle state of a queued write.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusRetrying   Status = "retrying"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further automatic transitions occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// QueuedWrite is one pending or historical write intent.
// Records are owned exclusively by the manager; callers only ever see copies.
type QueuedWrite struct {
	ID             string         `json:"id"`
	Model          string         `json:"model"`
	Operation      Operation      `json:"operation"`
	Payload        map[string]any `json:"payload,omitempty"`
	MatchCriteria  map[string]any `json:"match_criteria,omitempty"`
	Priority       Priority       `json:"priority"`
	Status         Status         `json:"status"`
	Attempts       int            `json:"attempts"`
	MaxAttempts    int            `json:"max_attempts"`
	CreatedAt      time.Time      `json:"created_at"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	TenantID       string         `json:"tenant_id,omitempty"`
	ActorID        string         `json:"actor_id,omitempty"`
	LastError      string         `json:"last_error,omitempty"`
}

// EnqueueResult is returned to callers of Enqueue. Callers receive either an
// immediate-completion acknowledgment (Queued false), a queued acknowledgment
// with position and wait estimate, or a synchronous error. They are never
// blocked waiting for eventual queued success or failure.
type EnqueueResult struct {
	WriteID       string        `json:"write_id"`
	Queued        bool          `json:"queued"`
	Message       string        `json:"message"`
	Position      int           `json:"position,omitempty"`
	EstimatedWait time.Duration `json:"estimated_wait,omitempty"`
}

// newWriteID generates a time-prefixed identifier with a random suffix so
// snapshot entries remain sortable by enqueue time.
func newWriteID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("wq_%d_%s", now.UnixMilli(), suffix)
}
