package rawwatch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/colebrumley/fswatch/internal/fsevent"
	"github.com/colebrumley/fswatch/internal/fsid"
	"github.com/colebrumley/fswatch/internal/logging"
)

// DebounceWindow is the quiet period a path must go without new activity
// before its pending raw event is flushed to the batch channel.
const DebounceWindow = 500 * time.Millisecond

// pending is one path's in-flight debounced event: the first observed
// kind is preserved even if later notifications on the same path arrive
// before the window elapses, mirroring the native-backend behavior this
// actor also runs under on darwin.
type pending struct {
	raw   fsevent.Raw
	timer *time.Timer
}

// Actor owns one fsnotify.Watcher and the set of recursively-expanded
// watch roots beneath it. Commands arrive over Commands; batches of
// debounced raw events are emitted on Events.
type Actor struct {
	log     *slog.Logger
	watcher *fsnotify.Watcher
	cache   *fsid.Cache

	commands chan Command
	events   chan []fsevent.Raw

	mu      sync.Mutex
	pending map[string]*pending
	roots   map[string]struct{}
}

// New creates an Actor. cache is shared with the normalizer so the watch
// roots the actor expands are visible to identity-pair grouping.
func New(log *slog.Logger, cache *fsid.Cache) (*Actor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Actor{
		log:      logging.WithComponent(log, "rawwatch"),
		watcher:  watcher,
		cache:    cache,
		commands: make(chan Command, 16),
		events:   make(chan []fsevent.Raw, 16),
		pending:  make(map[string]*pending),
		roots:    make(map[string]struct{}),
	}, nil
}

// Send enqueues cmd for the actor's command loop.
func (a *Actor) Send(cmd Command) { a.commands <- cmd }

// Events returns the channel of debounced raw-event batches.
func (a *Actor) Events() <-chan []fsevent.Raw { return a.events }

// Run drives the actor's command loop until ctx is cancelled or a
// Shutdown command is received. It blocks; callers run it in a goroutine.
func (a *Actor) Run(ctx context.Context) error {
	defer a.watcher.Close()
	defer close(a.events)

	for {
		select {
		case <-ctx.Done():
			a.cancelAllPending()
			return ctx.Err()

		case cmd, ok := <-a.commands:
			if !ok {
				a.cancelAllPending()
				return nil
			}
			if a.handle(cmd) {
				a.cancelAllPending()
				return nil
			}

		case ev, ok := <-a.watcher.Events:
			if !ok {
				a.cancelAllPending()
				return nil
			}
			a.handleFsnotifyEvent(ev)

		case err, ok := <-a.watcher.Errors:
			if !ok {
				a.cancelAllPending()
				return nil
			}
			a.log.Error("watcher error", "error", err)
		}
	}
}

// handle executes one Command and reports whether the actor should stop.
func (a *Actor) handle(cmd Command) (shutdown bool) {
	switch cmd.Kind {
	case CmdWatch:
		err := a.addRecursive(cmd.Path)
		reply(cmd.Reply, Result{Ok: err == nil, Err: err})

	case CmdUnwatch:
		err := a.removeRecursive(cmd.Path)
		reply(cmd.Reply, Result{Ok: err == nil, Err: err})

	case CmdFileID:
		id, ok := fsid.Lookup(cmd.Path)
		reply(cmd.Reply, Result{ID: id, Ok: ok})

	case CmdShutdown:
		reply(cmd.Reply, Result{Ok: true})
		return true
	}
	return false
}

func reply(ch chan Result, r Result) {
	if ch == nil {
		return
	}
	ch <- r
	close(ch)
}

// addRecursive adds root and every directory beneath it to the watcher,
// registering each directory's identity in the shared cache. fsnotify
// watches are not recursive by themselves, so new subdirectories are
// picked up as Create events arrive and are added on the fly in
// handleFsnotifyEvent.
func (a *Actor) addRecursive(root string) error {
	a.mu.Lock()
	a.roots[root] = struct{}{}
	a.mu.Unlock()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.IsDir() {
			if id, ok := fsid.Lookup(path); ok {
				a.cache.Put(path, id)
			}
			return nil
		}
		if err := a.watcher.Add(path); err != nil {
			return err
		}
		if id, ok := fsid.Lookup(path); ok {
			a.cache.Put(path, id)
		}
		return nil
	})
}

// removeRecursive drops root and everything beneath it from the watcher
// and the identity cache.
func (a *Actor) removeRecursive(root string) error {
	a.mu.Lock()
	delete(a.roots, root)
	a.mu.Unlock()

	_ = a.watcher.Remove(root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = a.watcher.Remove(path)
		}
		a.cache.Remove(path)
		return nil
	})
}

// handleFsnotifyEvent translates one fsnotify.Event into a debounced
// fsevent.Raw, adding newly created directories to the watcher so the
// subscription stays recursive.
func (a *Actor) handleFsnotifyEvent(ev fsnotify.Event) {
	var kind fsevent.RawAction
	var hint fsevent.Subject

	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = fsevent.RawCreate
		if info, err := os.Stat(ev.Name); err == nil {
			if info.IsDir() {
				hint = fsevent.SubjectFolder
				_ = a.addRecursive(ev.Name)
			} else {
				hint = fsevent.SubjectFile
			}
		} else {
			hint = fsevent.SubjectAny
		}

	case ev.Op&fsnotify.Remove != 0:
		kind = fsevent.RawRemove
		hint = fsevent.SubjectAny

	case ev.Op&fsnotify.Rename != 0:
		kind = fsevent.RawRenameAny
		hint = fsevent.SubjectAny

	case ev.Op&fsnotify.Write != 0:
		kind = fsevent.RawModifyData
		hint = fsevent.SubjectFile

	case ev.Op&fsnotify.Chmod != 0:
		kind = fsevent.RawModifyAny
		hint = fsevent.SubjectAny

	default:
		return
	}

	a.debounce(ev.Name, kind, hint)
}

// debounce folds repeated notifications on the same path into a single
// pending raw event, preserving the first-seen kind, and flushes it as
// its own single-event batch once the path has been quiet for
// DebounceWindow.
func (a *Actor) debounce(path string, kind fsevent.RawAction, hint fsevent.Subject) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p, exists := a.pending[path]; exists {
		p.timer.Reset(DebounceWindow)
		return
	}

	raw := fsevent.Raw{Kind: kind, Hint: hint, Paths: []string{path}, Time: time.Now()}
	p := &pending{raw: raw}
	p.timer = time.AfterFunc(DebounceWindow, func() { a.flush(path) })
	a.pending[path] = p
}

func (a *Actor) flush(path string) {
	a.mu.Lock()
	p, ok := a.pending[path]
	if ok {
		delete(a.pending, path)
	}
	a.mu.Unlock()
	if !ok {
		return
	}

	select {
	case a.events <- []fsevent.Raw{p.raw}:
	default:
		a.log.Warn("event channel full, dropping batch", "path", path)
	}
}

func (a *Actor) cancelAllPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for path, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, path)
	}
}
