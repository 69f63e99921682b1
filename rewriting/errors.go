package rewriting

import (
	"errors"
	"fmt"
)

// ErrAllocationFailure is the only error the engine produces. Every error
// returned by Expand matches it with errors.Is.
var ErrAllocationFailure = errors.New("allocation failure")

// Stage names the step that asked for memory.
type Stage string

// The allocation stages.
const (
	StageSeed           Stage = "seed"
	StagePredictiveGrow Stage = "predictive-grow"
	StageAppend         Stage = "append"
	StageScratchGrow    Stage = "scratch-grow"
	StageFinalize       Stage = "finalize"
)

// An AllocationError describes a failed allocation.
type AllocationError struct {
	Stage     Stage
	Buffer    string
	Requested int

	// Err is the error reported by the allocator.
	Err error
}

func (e *AllocationError) Error() string {
	msg := fmt.Sprintf("%s: %s of %d bytes for %s",
		ErrAllocationFailure, e.Stage, e.Requested, e.Buffer)

	if e.Err != nil && e.Err != ErrAllocationFailure {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the allocator error.
func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Is reports every AllocationError as an ErrAllocationFailure, whatever the
// allocator returned.
func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocationFailure
}
