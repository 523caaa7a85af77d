package writequeue

import "errors"

// Common errors
var (
	// ErrQueueFull is returned when the live queue has reached its configured
	// maximum capacity. The write is rejected outright and the caller decides
	// whether to retry.
	ErrQueueFull = errors.New("write queue is at capacity")

	// ErrMissingSelector is returned when update, delete or upsert is
	// requested without match criteria. This is a programmer error and is
	// never queued.
	ErrMissingSelector = errors.New("match criteria required for this operation")

	// ErrUnknownModel is returned when the model identifier is not
	// resolvable by the datastore registry.
	ErrUnknownModel = errors.New("no datastore registered for model")

	// ErrInvalidOperation is returned for an unrecognized operation kind.
	ErrInvalidOperation = errors.New("invalid write operation")

	// ErrInvalidPriority is returned when priority is not a known tier.
	ErrInvalidPriority = errors.New("priority must be high, normal or low")

	// ErrExecutorNil is returned when a nil executor is provided to New.
	ErrExecutorNil = errors.New("executor cannot be nil")

	// ErrManagerClosed is returned when enqueueing after Stop.
	ErrManagerClosed = errors.New("write queue manager is stopped")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload
	// for an operation that writes data.
	ErrPayloadNil = errors.New("payload cannot be nil")
)
