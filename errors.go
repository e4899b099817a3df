package graphstreams

import (
	"errors"
	"fmt"
)

// ErrCapacity indicates that an accumulator's declared space budget was
// exceeded. The affected accumulator is poisoned and keeps returning
// ErrCapacity; other accumulators are unaffected.
var ErrCapacity = errors.New("space budget exceeded")

// ErrIncompatibleMerge indicates an attempt to merge sketches built with
// different seeds or parameters. The merge is rejected, never performed
// partially.
var ErrIncompatibleMerge = errors.New("incompatible sketch merge")

// ErrInsufficientData indicates a query whose precondition is unmet, for
// example querying an algorithm that requires full-stream observation
// before the stream is exhausted. The condition is recoverable by feeding
// further updates.
var ErrInsufficientData = errors.New("not enough data")

// An InputError is used to short-circuit a stream by canceling its context to
// indicate that an edge update is malformed: a self-loop, or a vertex
// identifier outside the declared universe.
type InputError struct {
	// Update is the malformed edge update.
	Update Update

	// Reason describes why the update was rejected.
	Reason string
}

// Error implements error.
func (e *InputError) Error() string {
	return fmt.Sprintf("invalid update %v: %s", e.Update, e.Reason)
}

func incompatible(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIncompatibleMerge, fmt.Sprintf(format, args...))
}
