package forge

import "errors"

var (
	// ErrCycleDetected is the panic value raised when a compute function
	// re-enters its own recomputation before finishing. Catch it with
	// recover + errors.Is rather than letting the stack unwind.
	ErrCycleDetected = errors.New("reactive cycle detected")

	// ErrWriteToComputed is returned by dynamic surfaces (e.g. the store)
	// when a write targets a derived node.
	ErrWriteToComputed = errors.New("cannot set computed signal")
)
