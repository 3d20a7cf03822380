package layout

import (
	"errors"
	"fmt"
)

// ErrUnresolvedReference is matched by every *UnresolvedError.
var ErrUnresolvedReference = errors.New("unresolved reference")

// UnresolvedError reports a placeholder that could not be patched. It always
// indicates a layout defect; the buffer is discarded.
type UnresolvedError struct {
	Kind    RefKind
	Site    int
	Channel int
	Reason  string
}

func (e *UnresolvedError) Error() string {
	msg := fmt.Sprintf("unresolved %v at %#06x", e.Kind, e.Site)
	if e.Kind == ChannelDataPointer {
		msg += fmt.Sprintf(" (channel %d)", e.Channel)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolvedReference
}
