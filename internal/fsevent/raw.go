package fsevent

import "time"

// RawAction is the backend-watcher event kind the normalizer groups and
// converts. It mirrors the small set of notify-style kinds this pipeline
// filters down to before grouping.
type RawAction int

const (
	RawCreate RawAction = iota
	RawRemove
	RawRenameFrom
	RawRenameTo
	RawRenameBoth
	RawRenameAny
	RawModifyData
	RawModifyAny
	RawOther
)

// Raw is a single debounced event as reported by the raw watcher actor,
// before normalization. Hint is the backend's best guess at file vs.
// folder; SubjectAny means the backend could not tell and the normalizer
// must probe the filesystem itself.
type Raw struct {
	Kind  RawAction
	Hint  Subject
	Paths []string
	Time  time.Time
}

// Path returns the event's sole path; for RawRenameBoth the from-path.
func (r Raw) Path() string {
	if len(r.Paths) == 0 {
		return ""
	}
	return r.Paths[0]
}
