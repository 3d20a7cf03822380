package cit

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedLoopMarkers is matched by every *MarkerError.
	ErrMalformedLoopMarkers = errors.New("malformed loop markers")
	// ErrEmptyInput means the timing channel has no bass trigger at all.
	ErrEmptyInput = errors.New("no bass trigger on timing channel")
)

// MarkerError reports loop markers the extractor cannot use: it needs
// exactly one start and one end, with the start first.
type MarkerError struct {
	Starts []int // ticks
	Ends   []int
}

func (e *MarkerError) Error() string {
	if len(e.Starts) == 1 && len(e.Ends) == 1 {
		return fmt.Sprintf("malformed loop markers: loop start at tick %d is not before loop end at tick %d",
			e.Starts[0], e.Ends[0])
	}
	return fmt.Sprintf("malformed loop markers: need one start and one end, found %d start(s) %v and %d end(s) %v",
		len(e.Starts), e.Starts, len(e.Ends), e.Ends)
}

func (e *MarkerError) Is(target error) bool {
	return target == ErrMalformedLoopMarkers
}
