package fsevent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/colebrumley/fswatch/internal/fsid"
)

// ErrUnknownFileType is returned when a raw event's destination path
// exists but is neither a regular file nor a directory.
type ErrUnknownFileType struct {
	Path string
}

func (e *ErrUnknownFileType) Error() string {
	return fmt.Sprintf("unknown file type at %q", e.Path)
}

// Prober reports whether path is currently a regular file, a directory, or
// neither. The default implementation (Stat) is overridable in tests.
type Prober interface {
	IsFile(path string) bool
	IsDir(path string) bool
	Exists(path string) bool
}

// osProber probes the real filesystem with os.Stat.
type osProber struct{}

func (osProber) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (osProber) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (osProber) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultProber probes the real filesystem.
var DefaultProber Prober = osProber{}

// Normalizer reduces raw debounced watcher batches to typed Events. It
// owns no state beyond the shared identity cache; callers create one per
// raw-watcher actor.
type Normalizer struct {
	Cache  *fsid.Cache
	Prober Prober
}

// New creates a Normalizer backed by cache. If prober is nil, the real
// filesystem is probed via os.Stat.
func New(cache *fsid.Cache, prober Prober) *Normalizer {
	if prober == nil {
		prober = DefaultProber
	}
	return &Normalizer{Cache: cache, Prober: prober}
}

// Normalize runs the full algorithm: filter, identity-pair grouping,
// direct conversion of anything left over, then an identity-cache update.
// It returns the typed events plus any processing errors encountered.
func (n *Normalizer) Normalize(batch []Raw) ([]Event, []error) {
	filtered := n.filter(batch)
	grouped, remaining := n.group(filtered)
	converted, errs := n.convertAll(remaining)
	events := append(grouped, converted...)

	n.updateCache(filtered)
	return events, errs
}

// filter drops events this pipeline never acts on: anything outside the
// create/remove/rename/data-modify/any-modify family, and OS metadata
// noise such as .DS_Store.
func (n *Normalizer) filter(batch []Raw) []Raw {
	out := make([]Raw, 0, len(batch))
	for _, r := range batch {
		switch r.Kind {
		case RawCreate, RawRemove, RawRenameFrom, RawRenameTo, RawRenameBoth, RawRenameAny, RawModifyData, RawModifyAny:
		default:
			continue
		}
		if len(r.Paths) == 1 && filepath.Base(r.Paths[0]) == ".DS_Store" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// group implements identity-pair grouping: events that
// share an OS file-id are gathered, sorted by time, and collapsed into a
// single Renamed/Moved Event when exactly two compatible events remain.
// Everything else (singletons, incompatible pairs, triples) falls through
// to direct conversion.
func (n *Normalizer) group(batch []Raw) ([]Event, []Raw) {
	byID := make(map[fsid.ID][]Raw)
	var remaining []Raw

	for _, r := range batch {
		switch r.Kind {
		case RawRenameFrom, RawRemove:
			id, ok := n.Cache.CachedID(r.Path())
			if !ok {
				remaining = append(remaining, r)
				continue
			}
			byID[id] = append(byID[id], r)

		case RawRenameTo, RawCreate:
			id, ok := fsid.Lookup(r.Path())
			if !ok {
				remaining = append(remaining, r)
				continue
			}
			byID[id] = append(byID[id], r)

		case RawRenameAny:
			if n.Prober.Exists(r.Path()) {
				id, ok := fsid.Lookup(r.Path())
				if !ok {
					remaining = append(remaining, r)
					continue
				}
				byID[id] = append(byID[id], r)
			} else {
				id, ok := n.Cache.CachedID(r.Path())
				if !ok {
					remaining = append(remaining, r)
					continue
				}
				byID[id] = append(byID[id], r)
			}

		default:
			remaining = append(remaining, r)
		}
	}

	ids := make([]fsid.ID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var converted []Event
	for _, id := range ids {
		events := byID[id]
		sort.SliceStable(events, func(i, j int) bool { return events[i].Time.Before(events[j].Time) })

		switch len(events) {
		case 1:
			remaining = append(remaining, events[0])

		case 2:
			if ev, ok := n.pairToEvent(events[0], events[1]); ok {
				converted = append(converted, ev)
			} else {
				remaining = append(remaining, events...)
			}

		default:
			remaining = append(remaining, events...)
		}
	}

	return converted, remaining
}

// pairToEvent collapses a compatible (from, to) pair into a single
// Renamed or Moved Event, using the same-parent-dir rule to distinguish them.
func (n *Normalizer) pairToEvent(e1, e2 Raw) (Event, bool) {
	compatible := (e1.Kind == RawRenameFrom && e2.Kind == RawRenameTo) ||
		(e1.Kind == RawRenameAny && e2.Kind == RawRenameAny) ||
		(e1.Kind == RawRemove && e2.Kind == RawCreate)
	if !compatible {
		return Event{}, false
	}

	from := e1.Path()
	to := e2.Path()
	sameParent := filepath.Dir(from) == filepath.Dir(to)

	var subject Subject
	switch {
	case n.Prober.IsFile(to):
		subject = SubjectFile
	case n.Prober.IsDir(to):
		subject = SubjectFolder
	case e1.Hint == SubjectFile || e2.Hint == SubjectFile:
		subject = SubjectFile
	case e1.Hint == SubjectFolder || e2.Hint == SubjectFolder:
		subject = SubjectFolder
	default:
		return Event{}, false
	}

	action := ActionMoved
	if sameParent {
		action = ActionRenamed
	}
	return NewPair(subject, action, from, to, e2.Time, e1, e2), true
}

// convertAll converts every ungrouped event directly, partitioning
// successes from failures the way the batch boundary expects.
func (n *Normalizer) convertAll(batch []Raw) ([]Event, []error) {
	var events []Event
	var errs []error
	for _, r := range batch {
		ev, err := n.convertOne(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return events, errs
}

// convertOne converts a single ungrouped raw event directly.
func (n *Normalizer) convertOne(r Raw) (*Event, error) {
	switch r.Kind {
	case RawCreate:
		subject, err := n.classifyBySubject(r)
		if err != nil {
			return nil, err
		}
		ev := NewSingle(subject, ActionCreated, r.Path(), r.Time, r)
		return &ev, nil

	case RawRemove:
		subject := r.Hint
		if subject != SubjectFile && subject != SubjectFolder {
			subject = SubjectAny
		}
		ev := NewSingle(subject, ActionRemoved, r.Path(), r.Time, r)
		return &ev, nil

	case RawRenameBoth:
		if len(r.Paths) != 2 {
			return nil, fmt.Errorf("rename-both event requires two paths, got %d", len(r.Paths))
		}
		from, to := r.Paths[0], r.Paths[1]
		subject, err := n.classifyBySubject(Raw{Kind: RawCreate, Hint: r.Hint, Paths: []string{to}})
		if err != nil {
			return nil, err
		}
		action := ActionMoved
		if filepath.Dir(from) == filepath.Dir(to) {
			action = ActionRenamed
		}
		ev := NewPair(subject, action, from, to, r.Time, r)
		return &ev, nil

	case RawModifyData:
		if !n.Prober.IsFile(r.Path()) {
			// Data-modify on a non-regular-file target is dropped.
			return nil, nil
		}
		ev := NewSingle(SubjectFile, ActionDataModified, r.Path(), r.Time, r)
		return &ev, nil

	case RawModifyAny:
		if !n.Prober.Exists(r.Path()) {
			ev := NewSingle(SubjectAny, ActionRemoved, r.Path(), r.Time, r)
			return &ev, nil
		}
		subject, err := n.classifyBySubject(r)
		if err != nil {
			return nil, err
		}
		ev := NewSingle(subject, ActionOther, r.Path(), r.Time, r)
		return &ev, nil

	case RawRenameFrom, RawRenameTo, RawRenameAny:
		// Singletons that failed to pair: best-effort, treat as the
		// corresponding create/remove so the batch is never silently
		// dropped.
		if r.Kind == RawRenameFrom {
			ev := NewSingle(SubjectAny, ActionRemoved, r.Path(), r.Time, r)
			return &ev, nil
		}
		subject, err := n.classifyBySubject(r)
		if err != nil {
			return nil, err
		}
		ev := NewSingle(subject, ActionCreated, r.Path(), r.Time, r)
		return &ev, nil

	default:
		return nil, nil
	}
}

// classifyBySubject determines file-vs-folder for a path that should
// exist on disk, falling back to the backend's hint, and finally to
// ErrUnknownFileType.
func (n *Normalizer) classifyBySubject(r Raw) (Subject, error) {
	path := r.Path()
	switch {
	case n.Prober.IsFile(path):
		return SubjectFile, nil
	case n.Prober.IsDir(path):
		return SubjectFolder, nil
	case r.Hint == SubjectFile || r.Hint == SubjectFolder:
		return r.Hint, nil
	default:
		return 0, &ErrUnknownFileType{Path: path}
	}
}

// updateCache mirrors the backend's own identity-cache bookkeeping: this
// must run after grouping, not before, so the grouping step sees the
// cache state as it was before this batch's removals/creations landed.
func (n *Normalizer) updateCache(batch []Raw) {
	for _, r := range batch {
		switch r.Kind {
		case RawCreate, RawRenameTo:
			if id, ok := fsid.Lookup(r.Path()); ok {
				n.Cache.Put(r.Path(), id)
			}
		case RawRenameBoth:
			if len(r.Paths) == 2 {
				n.Cache.Remove(r.Paths[0])
				if id, ok := fsid.Lookup(r.Paths[1]); ok {
					n.Cache.Put(r.Paths[1], id)
				}
			}
		case RawRemove, RawRenameFrom:
			n.Cache.Remove(r.Path())
		case RawRenameAny:
			if n.Prober.Exists(r.Path()) {
				if id, ok := fsid.Lookup(r.Path()); ok {
					n.Cache.Put(r.Path(), id)
				}
			} else {
				n.Cache.Remove(r.Path())
			}
		}
	}
}
