// Package writequeue provides a resilient write queue that sits in front of
// the primary datastore and absorbs write operations while the datastore is
// slow, erroring or unreachable.
//
// The package is organised around a single Manager that composes four
// smaller parts:
//
//   - a health monitor deriving a healthy/degraded/unavailable signal from a
//     rolling datastore error window
//   - an in-memory priority queue, insertion-ordered within each tier
//   - an Executor dispatching queued records against per-model datastore
//     adapters registered in a typed Registry
//   - a best-effort snapshot mirror in an external key-value store so no
//     write is silently lost across a process restart
//
// # Behavior
//
// A submitted write either executes immediately (healthy datastore, empty
// queue), is queued by priority with an idempotency-key dedup check, or is
// rejected synchronously when the queue is at capacity. Queued writes are
// drained in batches by a periodic loop that starts lazily on enqueue and
// stops itself once the queue is empty. Failed dispatches retry up to the
// write's attempt budget; the processing interval itself acts as the
// backoff, and a health-aware gate pauses dispatch entirely while the
// datastore is unavailable. Writes that exhaust their attempts are retained
// as failed for operator inspection and bulk retry.
//
// Delivery to the datastore is at-least-once; dedup via idempotency keys
// applies at the queue layer only.
//
// # Usage
//
//	reg := writequeue.NewRegistry()
//	reg.Register("invoices", invoiceStore)
//
//	mgr, err := writequeue.New(writequeue.NewExecutor(reg),
//	    writequeue.WithSnapshotStore(snapshots),
//	    writequeue.WithMaxAttempts(5),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := mgr.Start(ctx); err != nil {
//	    return err
//	}
//	defer mgr.Stop()
//
//	res, err := mgr.Enqueue(ctx, "invoices", writequeue.OperationCreate,
//	    map[string]any{"number": "INV-1042", "total": 129.99},
//	    writequeue.WithPriority(writequeue.PriorityHigh),
//	    writequeue.WithIdempotencyKey("invoice-1042"),
//	)
//
// # Error Handling
//
// Package-level sentinel errors (ErrQueueFull, ErrMissingSelector,
// ErrUnknownModel, ...) signal synchronous, pre-queue violations and can be
// checked with errors.Is. Failures after a write has been queued never reach
// the original caller; they surface through Subscribe events and GetStats.
package writequeue
