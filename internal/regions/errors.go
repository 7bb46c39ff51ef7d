package regions

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is matched by every GPU allocation or upload failure.
	ErrAllocation = errors.New("regions: gpu allocation failed")
	// ErrQueueFull is returned when the ingestion queue is at capacity.
	ErrQueueFull = errors.New("regions: ingestion queue full")
)

// AllocationError reports a failed GPU allocation or upload for a region or a single chunk.
// The object it names is left in the state it had before the failing call.
type AllocationError struct {
	Op     string
	Region RegionCoord
	Chunk  *ChunkCoord // set when a standalone chunk buffer failed
	Err    error
}

func (e *AllocationError) Error() string {
	if e.Chunk != nil {
		return fmt.Sprintf("%s %v: %v", e.Op, *e.Chunk, e.Err)
	}
	return fmt.Sprintf("%s %v: %v", e.Op, e.Region, e.Err)
}

func (e *AllocationError) Unwrap() []error {
	return []error{ErrAllocation, e.Err}
}
