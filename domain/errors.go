package domain

import "errors"

var (
	// ErrMalformedVariant marks variant records whose counters cannot form
	// a valid posterior. The whole selection call fails rather than
	// silently skipping the record.
	ErrMalformedVariant = errors.New("malformed variant data")

	// ErrQueueFull is returned by the feedback pipeline when the bounded
	// event queue is at capacity. Callers should retry later.
	ErrQueueFull = errors.New("feedback queue full")

	// ErrPipelineStopped is returned when events arrive after shutdown.
	ErrPipelineStopped = errors.New("feedback pipeline stopped")
)
