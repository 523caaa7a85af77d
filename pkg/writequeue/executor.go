package writequeue

import (
	"context"
	"fmt"
	"sync"
)

// ModelStore is the per-model datastore adapter. Implementations perform
// exactly one write per call and raise any adapter-level error to the
// caller; retry policy lives entirely in the manager.
type ModelStore interface {
	// Create inserts the payload as a new record.
	Create(ctx context.Context, payload map[string]any) error

	// Update applies the payload to records matching the criteria.
	Update(ctx context.Context, criteria, payload map[string]any) error

	// Delete removes the record matching the criteria.
	Delete(ctx context.Context, criteria map[string]any) error

	// Upsert inserts the payload if no record matches the criteria,
	// otherwise applies it as an update.
	Upsert(ctx context.Context, criteria, payload map[string]any) error
}

// Registry resolves logical model names to their datastore adapters.
// Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]ModelStore
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]ModelStore)}
}

// Register binds a model name to its adapter. Registering the same name
// twice replaces the previous adapter.
func (r *Registry) Register(model string, store ModelStore) {
	if model == "" || store == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[model] = store
}

// Resolve returns the adapter for the model name.
func (r *Registry) Resolve(model string) (ModelStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return store, nil
}

// Executor translates a queued record into a concrete write against the
// datastore adapter resolved from the registry.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor backed by the given registry.
func NewExecutor(registry *Registry) *Executor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Executor{registry: registry}
}

// Registry exposes the underlying registry for model registration.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute performs a single write. Adapter errors are returned unwrapped in
// meaning; the manager records them against the health monitor and advances
// the record's retry state.
func (e *Executor) Execute(ctx context.Context, model string, op Operation, payload, criteria map[string]any) error {
	store, err := e.registry.Resolve(model)
	if err != nil {
		return err
	}

	if op.RequiresSelector() && len(criteria) == 0 {
		return fmt.Errorf("%w: %s %s", ErrMissingSelector, op, model)
	}

	switch op {
	case OperationCreate:
		return store.Create(ctx, payload)
	case OperationUpdate:
		return store.Update(ctx, criteria, payload)
	case OperationDelete:
		return store.Delete(ctx, criteria)
	case OperationUpsert:
		return store.Upsert(ctx, criteria, payload)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}
}
