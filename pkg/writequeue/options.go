package writequeue

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	cfg      Config
	logger   *slog.Logger
	snapshot SnapshotStore
}

// WithConfig replaces the entire configuration, typically loaded from the
// environment.
func WithConfig(cfg Config) Option {
	return func(o *managerOptions) {
		o.cfg = cfg
	}
}

// WithLogger sets the structured logger used by the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSnapshotStore wires the external key-value mirror used for crash
// recovery. Without it the queue runs with no snapshot persistence.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(o *managerOptions) {
		o.snapshot = store
	}
}

// WithMaxQueueSize sets the live queue capacity.
func WithMaxQueueSize(n int) Option {
	return func(o *managerOptions) {
		if n > 0 {
			o.cfg.MaxQueueSize = n
		}
	}
}

// WithBatchSize sets how many records each processing tick may dispatch.
func WithBatchSize(n int) Option {
	return func(o *managerOptions) {
		if n > 0 {
			o.cfg.BatchSize = n
		}
	}
}

// WithProcessInterval sets the period of the processing loop.
func WithProcessInterval(d time.Duration) Option {
	return func(o *managerOptions) {
		if d > 0 {
			o.cfg.ProcessInterval = d
		}
	}
}

// WithMaxAttempts sets the default retry budget for new writes.
func WithMaxAttempts(n int) Option {
	return func(o *managerOptions) {
		if n > 0 {
			o.cfg.DefaultMaxAttempts = n
		}
	}
}

// EnqueueOption is a functional option for a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	criteria       map[string]any
	priority       Priority
	idempotencyKey string
	tenantID       string
	actorID        string
	maxAttempts    int
}

// WithMatchCriteria sets the selector for update, delete and upsert writes.
func WithMatchCriteria(criteria map[string]any) EnqueueOption {
	return func(o *enqueueOptions) {
		o.criteria = criteria
	}
}

// WithPriority sets the scheduling tier for the write.
func WithPriority(p Priority) EnqueueOption {
	return func(o *enqueueOptions) {
		o.priority = p
	}
}

// WithIdempotencyKey supplies a dedup token: while a non-terminal write
// holds the same key, repeated enqueues return the existing write instead
// of creating a duplicate.
func WithIdempotencyKey(key string) EnqueueOption {
	return func(o *enqueueOptions) {
		o.idempotencyKey = key
	}
}

// WithTenant attaches tenant provenance, carried through for observability
// only.
func WithTenant(tenantID string) EnqueueOption {
	return func(o *enqueueOptions) {
		o.tenantID = tenantID
	}
}

// WithActor attaches actor provenance, carried through for observability
// only.
func WithActor(actorID string) EnqueueOption {
	return func(o *enqueueOptions) {
		o.actorID = actorID
	}
}

// WithWriteMaxAttempts overrides the retry budget for this write.
func WithWriteMaxAttempts(n int) EnqueueOption {
	return func(o *enqueueOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}
