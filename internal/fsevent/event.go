// Package fsevent folds raw, debounced filesystem-watcher events into the
// typed File/Folder/Any events the rest of the pipeline reasons about.
package fsevent

import (
	"time"

	"github.com/google/uuid"
)

// Subject is the kind of filesystem node an Event describes.
type Subject int

const (
	SubjectFile Subject = iota
	SubjectFolder
	SubjectAny
)

func (s Subject) String() string {
	switch s {
	case SubjectFile:
		return "file"
	case SubjectFolder:
		return "folder"
	case SubjectAny:
		return "any"
	default:
		return "unknown"
	}
}

// Action is what happened to the Subject.
type Action int

const (
	ActionCreated Action = iota
	ActionRemoved
	ActionRenamed
	ActionMoved
	ActionDataModified
	ActionOther
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionRemoved:
		return "removed"
	case ActionRenamed:
		return "renamed"
	case ActionMoved:
		return "moved"
	case ActionDataModified:
		return "data_modified"
	case ActionOther:
		return "other"
	default:
		return "unknown"
	}
}

// Event is a single typed filesystem event. Renamed/Moved events carry both
// From and To, with Path set to To for uniform access; every other action
// carries only Path.
type Event struct {
	ID      uuid.UUID
	Time    time.Time
	Subject Subject
	Action  Action

	// Path is the event's single path for actions that do not pair two
	// locations (Created, Removed, DataModified, Other). For Renamed/Moved
	// it is the destination path (equivalent to To).
	Path string
	From string
	To   string

	// Parents are the originating raw events this Event was folded from,
	// retained so a downstream classification failure can be attached to
	// something concrete for diagnostics.
	Parents []Raw
}

// NewSingle constructs a single-path Event (Created/Removed/DataModified/Other).
func NewSingle(subject Subject, action Action, path string, t time.Time, parents ...Raw) Event {
	return Event{
		ID:      uuid.New(),
		Time:    t,
		Subject: subject,
		Action:  action,
		Path:    path,
		Parents: parents,
	}
}

// NewPair constructs a Renamed/Moved Event carrying both endpoints.
func NewPair(subject Subject, action Action, from, to string, t time.Time, parents ...Raw) Event {
	return Event{
		ID:      uuid.New(),
		Time:    t,
		Subject: subject,
		Action:  action,
		Path:    to,
		From:    from,
		To:      to,
		Parents: parents,
	}
}
