package appevent

import (
	"fmt"

	"github.com/colebrumley/fswatch/internal/fsevent"
)

// ErrInvalidState is raised when one side of a file rename fails to
// classify and the other side classifies without error (§4.4.8).
type ErrInvalidState struct {
	From, To string
	Reason   string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("invalid state converting rename/move %q -> %q: %s", e.From, e.To, e.Reason)
}

// ConversionError attaches the offending FsEvent to a classification or
// invalid-state failure, so the batch result can report per-event
// failures without losing the events that did convert successfully.
type ConversionError struct {
	Event fsevent.Event
	Kind  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting event %s on %q: %v", e.Event.Action, e.Event.Path, e.Kind)
}

func (e *ConversionError) Unwrap() error { return e.Kind }
