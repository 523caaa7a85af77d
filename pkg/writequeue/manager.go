package writequeue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Manager is the public entry point of the write queue. It owns the
// in-memory queue and health state, decides immediate-vs-queued execution,
// runs the periodic processing loop and applies the retry policy.
//
// Construct one explicitly with New and wire it where it is needed; there is
// no package-level singleton, so independent instances (e.g. per tenant
// shard) can coexist.
type Manager struct {
	executor *Executor
	store    *queueStore
	health   *healthMonitor
	events   *eventBus
	snapshot SnapshotStore
	avg      *movingAverage
	cfg      Config
	logger   *slog.Logger

	totalQueued    atomic.Int64
	totalProcessed atomic.Int64
	totalFailed    atomic.Int64

	// enqMu serializes the queue-length check, fast-path attempt and
	// insert of concurrent Enqueue calls.
	enqMu sync.Mutex

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	loopRunning bool
	started     bool
	stopped     bool
	wg          sync.WaitGroup
}

// New creates a write queue manager in front of the given executor.
func New(executor *Executor, opts ...Option) (*Manager, error) {
	if executor == nil {
		return nil, ErrExecutorNil
	}

	options := &managerOptions{
		cfg:    defaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	cfg := options.cfg
	return &Manager{
		executor: executor,
		store:    newQueueStore(),
		health:   newHealthMonitor(cfg.HealthWindow, cfg.DegradedThreshold, cfg.UnavailableThreshold, cfg.RetryCooldown),
		events:   newEventBus(options.logger),
		snapshot: options.snapshot,
		avg:      newMovingAverage(cfg.AvgSampleSize),
		cfg:      cfg,
		logger:   options.logger,
	}, nil
}

// Start restores any persisted snapshot and arms the processing loop when
// the restored queue is non-empty. Absence of a snapshot is not an error.
// Canceling the context closes the manager to new writes; prefer Stop for a
// graceful shutdown that also persists a final snapshot.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("write queue manager already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	if restored := m.loadSnapshot(ctx); restored > 0 {
		m.logger.Info("restored write queue snapshot",
			slog.Int("writes", restored))
		m.ensureLoop()
	}

	return nil
}

// Stop shuts down the processing loop, waits for the in-flight batch and
// persists a final snapshot. Queued writes survive in the snapshot mirror.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return fmt.Errorf("write queue manager not running")
	}
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.persistSnapshot()

	m.logger.Info("write queue manager stopped",
		slog.Int("queued", m.store.LiveLen()),
		slog.Int("failed", m.store.FailedLen()))

	return nil
}

// Enqueue submits a write. Depending on queue state and datastore health the
// write is either executed immediately, queued by priority, deduplicated
// against an existing idempotency key, or rejected when the queue is full.
func (m *Manager) Enqueue(ctx context.Context, model string, op Operation, payload map[string]any, opts ...EnqueueOption) (EnqueueResult, error) {
	m.mu.Lock()
	if !m.started || m.stopped || m.ctx.Err() != nil {
		m.mu.Unlock()
		return EnqueueResult{}, ErrManagerClosed
	}
	m.mu.Unlock()

	options := &enqueueOptions{
		priority:    PriorityDefault,
		maxAttempts: m.cfg.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := m.validate(model, op, payload, options); err != nil {
		return EnqueueResult{}, err
	}

	m.enqMu.Lock()
	defer m.enqMu.Unlock()

	// Idempotency: a non-terminal write already holding the key is returned
	// as-is instead of queueing a duplicate.
	if options.idempotencyKey != "" {
		if existing, ok := m.store.ByIdempotencyKey(options.idempotencyKey); ok {
			return EnqueueResult{
				WriteID:       existing.ID,
				Queued:        true,
				Message:       "already queued",
				Position:      m.store.Position(existing.ID),
				EstimatedWait: m.estimateWait(m.store.Position(existing.ID)),
			}, nil
		}
	}

	if m.store.LiveLen() >= m.cfg.MaxQueueSize {
		return EnqueueResult{Message: "queue is full"}, fmt.Errorf("%w: %d writes pending", ErrQueueFull, m.store.LiveLen())
	}

	now := time.Now()
	w := &QueuedWrite{
		ID:             newWriteID(now),
		Model:          model,
		Operation:      op,
		Payload:        payload,
		MatchCriteria:  options.criteria,
		Priority:       options.priority,
		Status:         StatusPending,
		MaxAttempts:    options.maxAttempts,
		CreatedAt:      now,
		IdempotencyKey: options.idempotencyKey,
		TenantID:       options.tenantID,
		ActorID:        options.actorID,
	}

	// Fast path: healthy datastore and an empty queue means the write can
	// go straight through without ever entering the queue. A failure here
	// counts against the health window and falls through to queueing; a
	// write is never silently dropped.
	if m.store.LiveLen() == 0 && m.health.AllowFastPath() {
		start := time.Now()
		err := m.executor.Execute(ctx, model, op, payload, options.criteria)
		if err == nil {
			m.health.RecordSuccess()
			m.avg.Record(time.Since(start))
			m.totalProcessed.Add(1)

			processed := time.Now()
			w.Status = StatusCompleted
			w.Attempts = 1
			w.ProcessedAt = &processed
			m.events.Emit(Event{Type: EventCompleted, Write: *w})

			return EnqueueResult{
				WriteID: w.ID,
				Message: "completed immediately",
			}, nil
		}

		m.health.RecordError()
		w.LastError = err.Error()
		m.logger.Warn("immediate write failed, queueing",
			slog.String("write_id", w.ID),
			slog.String("model", model),
			slog.String("operation", string(op)),
			slog.String("error", err.Error()))
	}

	m.store.Insert(w)
	m.totalQueued.Add(1)
	m.events.Emit(Event{Type: EventEnqueued, Write: *w})
	m.persistAsync()
	m.ensureLoop()

	pos := m.store.Position(w.ID)
	return EnqueueResult{
		WriteID:       w.ID,
		Queued:        true,
		Message:       "queued for write",
		Position:      pos,
		EstimatedWait: m.estimateWait(pos),
	}, nil
}

// Cancel removes a pending or retrying write. Writes currently processing
// cannot be canceled: interrupting an in-flight dispatch would leave the
// datastore state ambiguous.
func (m *Manager) Cancel(id string) bool {
	w, ok := m.store.Remove(id)
	if !ok {
		return false
	}
	m.events.Emit(Event{Type: EventCancelled, Write: w})
	m.persistAsync()
	return true
}

// Subscribe registers a lifecycle event listener and returns its
// unsubscribe function.
func (m *Manager) Subscribe(fn Listener) func() {
	return m.events.Subscribe(fn)
}

// GetQueue returns a read-only copy of the queue, live entries first in
// dispatch order, retained failed entries after.
func (m *Manager) GetQueue() []QueuedWrite {
	return m.store.Live()
}

// Health returns the current datastore health signal.
func (m *Manager) Health() HealthStatus {
	return m.health.Status()
}

// GetStats returns aggregate statistics for operational visibility.
func (m *Manager) GetStats() Stats {
	health := m.health.Status()
	oldest := m.store.OldestPendingAge()
	failed := m.store.FailedLen()

	return Stats{
		ByStatus:         m.store.CountByStatus(),
		TotalQueued:      m.totalQueued.Load(),
		TotalProcessed:   m.totalProcessed.Load(),
		TotalFailed:      m.totalFailed.Load(),
		AvgProcessing:    m.avg.Value(),
		OldestPendingAge: oldest,
		Health:           health.String(),
		IsHealthy:        health == HealthHealthy && failed == 0 && oldest < m.cfg.StalePendingAge,
	}
}

// ClearFailed drops all retained failed writes. Returns the number removed.
func (m *Manager) ClearFailed() int {
	n := m.store.ClearFailed()
	if n > 0 {
		m.persistAsync()
	}
	return n
}

// RetryFailed moves every failed write back into the queue with its attempt
// counter reset. Returns the number of revived writes.
func (m *Manager) RetryFailed() int {
	n := m.store.RetryFailed()
	if n > 0 {
		m.persistAsync()
		m.ensureLoop()
	}
	return n
}

// ClearQueue drops every write that is not currently processing.
func (m *Manager) ClearQueue() {
	m.store.Clear()
	m.persistAsync()
}

// validate applies the synchronous, pre-queue checks. Violations propagate
// to the caller at enqueue time and are never queued.
func (m *Manager) validate(model string, op Operation, payload map[string]any, options *enqueueOptions) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}
	if !options.priority.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, options.priority)
	}
	if payload == nil && op != OperationDelete {
		return ErrPayloadNil
	}
	if op.RequiresSelector() && len(options.criteria) == 0 {
		return fmt.Errorf("%w: %s %s", ErrMissingSelector, op, model)
	}
	if _, err := m.executor.Registry().Resolve(model); err != nil {
		return err
	}
	return nil
}

// estimateWait derives the caller-facing wait estimate from the write's
// queue position and the moving average processing time.
func (m *Manager) estimateWait(position int) time.Duration {
	return time.Duration(position) * m.avg.Value()
}

// ensureLoop lazily starts the processing loop. The loop stops itself once
// the queue drains and is re-armed here on the next enqueue.
func (m *Manager) ensureLoop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loopRunning || !m.started || m.stopped || m.ctx.Err() != nil {
		return
	}
	m.loopRunning = true
	m.wg.Add(1)
	go m.run()
}

// run is the periodic processing loop.
func (m *Manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.ProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.mu.Lock()
			m.loopRunning = false
			m.mu.Unlock()
			return
		case <-ticker.C:
			m.processTick()
			if m.maybeStopLoop() {
				return
			}
		}
	}
}

// maybeStopLoop stops the loop when the live queue has drained. The check
// shares the manager mutex with ensureLoop so an enqueue racing the
// shutdown either sees the loop still running or restarts it.
func (m *Manager) maybeStopLoop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store.LiveLen() == 0 {
		m.loopRunning = false
		return true
	}
	return false
}

// processTick drains one batch: it skips entirely while the datastore is in
// its unavailable cool-down, dispatches up to BatchSize records
// sequentially in queue order, then persists the snapshot once.
func (m *Manager) processTick() {
	if m.health.GateRetries() {
		m.logger.Debug("datastore unavailable, skipping tick")
		return
	}

	batch := m.store.NextBatch(m.cfg.BatchSize)
	if len(batch) == 0 {
		return
	}

	for _, w := range batch {
		// Canceled between selection and dispatch.
		if !m.store.MarkProcessing(w.ID) {
			continue
		}
		m.dispatch(w.ID)
	}

	m.persistSnapshot()
}

// dispatch performs one attempt for the record and advances it through the
// state machine based on the outcome.
func (m *Manager) dispatch(id string) {
	w, ok := m.store.Get(id)
	if !ok {
		return
	}

	// Detached from the manager lifecycle so a graceful Stop lets the
	// in-flight batch finish instead of failing it.
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.DispatchTimeout)
	defer cancel()

	start := time.Now()
	err := m.executor.Execute(ctx, w.Model, w.Operation, w.Payload, w.MatchCriteria)
	duration := time.Since(start)

	if err == nil {
		m.health.RecordSuccess()
		m.avg.Record(duration)
		m.totalProcessed.Add(1)
		if final, ok := m.store.Complete(id); ok {
			m.events.Emit(Event{Type: EventCompleted, Write: final})
		}
		m.logger.Debug("write completed",
			slog.String("write_id", id),
			slog.String("model", w.Model),
			slog.Duration("duration", duration))
		return
	}

	m.health.RecordError()
	final, ok, terminal := m.store.Fail(id, err.Error())
	if !ok {
		return
	}

	if terminal {
		m.totalFailed.Add(1)
		m.events.Emit(Event{Type: EventFailed, Write: final, Err: err.Error()})
		m.logger.Error("write failed permanently",
			slog.String("write_id", id),
			slog.String("model", final.Model),
			slog.Int("attempts", final.Attempts),
			slog.String("error", err.Error()))
		return
	}

	m.events.Emit(Event{Type: EventRetrying, Write: final, Err: err.Error()})
	m.logger.Warn("write failed, will retry",
		slog.String("write_id", id),
		slog.String("model", final.Model),
		slog.Int("attempts", final.Attempts),
		slog.Int("max_attempts", final.MaxAttempts),
		slog.String("error", err.Error()))
}

// loadSnapshot restores non-terminal writes persisted by a previous run.
// A missing or corrupt snapshot is an empty queue, never a startup error.
func (m *Manager) loadSnapshot(ctx context.Context) int {
	if m.snapshot == nil {
		return 0
	}

	data, err := m.snapshot.Get(ctx, m.cfg.SnapshotKey)
	if err != nil {
		m.logger.Warn("failed to load queue snapshot",
			slog.String("key", m.cfg.SnapshotKey),
			slog.String("error", err.Error()))
		return 0
	}

	writes := decodeSnapshot(data)
	for i := range writes {
		w := writes[i]
		m.store.Insert(&w)
	}
	return len(writes)
}

// persistSnapshot mirrors the non-terminal queue to the snapshot store.
// Best-effort: losing the snapshot degrades crash recovery but must never
// block the write path.
func (m *Manager) persistSnapshot() {
	if m.snapshot == nil {
		return
	}

	data, err := encodeSnapshot(m.store.NonTerminal())
	if err != nil {
		m.logger.Warn("failed to encode queue snapshot",
			slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.snapshot.Set(ctx, m.cfg.SnapshotKey, data, m.cfg.SnapshotTTL); err != nil {
		m.logger.Warn("failed to persist queue snapshot",
			slog.String("key", m.cfg.SnapshotKey),
			slog.String("error", err.Error()))
	}
}

// persistAsync fires a snapshot persist off the critical path. The wait
// group add shares the manager mutex with Stop so no goroutine starts after
// shutdown began; Stop persists the final state itself.
func (m *Manager) persistAsync() {
	if m.snapshot == nil {
		return
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.persistSnapshot()
	}()
}
