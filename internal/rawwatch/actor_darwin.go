//go:build darwin

package rawwatch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsevents"

	"github.com/colebrumley/fswatch/internal/fsevent"
	"github.com/colebrumley/fswatch/internal/fsid"
	"github.com/colebrumley/fswatch/internal/logging"
)

// DarwinActor watches with the native FSEvents API. FSEvents is
// recursive by construction, so unlike Actor it needs no WalkDir
// expansion or on-the-fly directory registration.
type DarwinActor struct {
	log   *slog.Logger
	cache *fsid.Cache

	commands chan Command
	events   chan []fsevent.Raw

	mu       sync.Mutex
	roots    []string
	prefixes []string
	stream   *fsevents.EventStream
	pending  map[string]*pending
}

// NewDarwin creates a DarwinActor. cache is shared with the normalizer.
func NewDarwin(log *slog.Logger, cache *fsid.Cache) (*DarwinActor, error) {
	return &DarwinActor{
		log:      logging.WithComponent(log, "rawwatch"),
		cache:    cache,
		commands: make(chan Command, 16),
		events:   make(chan []fsevent.Raw, 16),
		pending:  make(map[string]*pending),
	}, nil
}

// Send enqueues cmd for the actor's command loop.
func (a *DarwinActor) Send(cmd Command) { a.commands <- cmd }

// Events returns the channel of debounced raw-event batches.
func (a *DarwinActor) Events() <-chan []fsevent.Raw { return a.events }

// Run drives the FSEvents stream and command loop until ctx is
// cancelled or a Shutdown command is received.
func (a *DarwinActor) Run(ctx context.Context) error {
	defer close(a.events)
	defer a.stopStream()

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

		case batch, ok := <-a.streamEvents():
			if !ok {
				continue
			}
			for _, ev := range batch {
				a.handleFSEvent(ev)
			}
		}
	}
}

// streamEvents returns the active stream's channel, or a nil channel
// (which blocks forever in a select) when no stream is running yet.
func (a *DarwinActor) streamEvents() chan []fsevents.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stream == nil {
		return nil
	}
	return a.stream.Events
}

func (a *DarwinActor) handle(cmd Command) (shutdown bool) {
	switch cmd.Kind {
	case CmdWatch:
		a.addRoot(cmd.Path)
		reply(cmd.Reply, Result{Ok: true})

	case CmdUnwatch:
		a.removeRoot(cmd.Path)
		reply(cmd.Reply, Result{Ok: true})

	case CmdFileID:
		id, ok := fsid.Lookup(cmd.Path)
		reply(cmd.Reply, Result{ID: id, Ok: ok})

	case CmdShutdown:
		reply(cmd.Reply, Result{Ok: true})
		return true
	}
	return false
}

// addRoot adds path to the watch set and restarts the stream so the new
// root takes effect; FSEvents streams are configured once at Start and
// cannot add paths incrementally.
func (a *DarwinActor) addRoot(path string) {
	a.mu.Lock()
	a.roots = append(a.roots, path)
	a.prefixes = append(a.prefixes, path+"/")
	roots := append([]string(nil), a.roots...)
	a.mu.Unlock()

	a.restartStream(roots)
}

func (a *DarwinActor) removeRoot(path string) {
	a.mu.Lock()
	for i, r := range a.roots {
		if r == path {
			a.roots = append(a.roots[:i], a.roots[i+1:]...)
			a.prefixes = append(a.prefixes[:i], a.prefixes[i+1:]...)
			break
		}
	}
	roots := append([]string(nil), a.roots...)
	a.mu.Unlock()

	a.restartStream(roots)
}

func (a *DarwinActor) restartStream(roots []string) {
	a.stopStream()
	if len(roots) == 0 {
		return
	}

	stream := &fsevents.EventStream{
		Paths:   roots,
		Latency: 0,
		Flags:   fsevents.FileEvents | fsevents.WatchRoot | fsevents.NoDefer,
	}
	a.mu.Lock()
	a.stream = stream
	a.mu.Unlock()
	stream.Start()
}

func (a *DarwinActor) stopStream() {
	a.mu.Lock()
	stream := a.stream
	a.stream = nil
	a.mu.Unlock()
	if stream != nil {
		stream.Stop()
	}
}

func (a *DarwinActor) isWatchedPath(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, root := range a.roots {
		if path == root || strings.HasPrefix(path, a.prefixes[i]) {
			return true
		}
	}
	return false
}

// handleFSEvent maps one native FSEvents record to a debounced raw
// event, dropping queue-overflow and mount/unmount notices the way the
// darwin trigger backend this is grounded on does.
func (a *DarwinActor) handleFSEvent(ev fsevents.Event) {
	if ev.Flags&fsevents.MustScanSubDirs != 0 ||
		ev.Flags&fsevents.KernelDropped != 0 ||
		ev.Flags&fsevents.UserDropped != 0 {
		a.log.Warn("fsevents queue overflow, events may have been lost", "path", ev.Path)
		return
	}
	if ev.Flags&fsevents.Mount != 0 || ev.Flags&fsevents.Unmount != 0 || ev.Flags&fsevents.RootChanged != 0 {
		return
	}
	if !a.isWatchedPath(ev.Path) {
		return
	}

	hint := fsevent.SubjectFile
	if ev.Flags&fsevents.ItemIsDir != 0 {
		hint = fsevent.SubjectFolder
	}

	var kind fsevent.RawAction
	switch {
	case ev.Flags&fsevents.ItemRemoved != 0:
		kind = fsevent.RawRemove
	case ev.Flags&fsevents.ItemCreated != 0:
		// Includes rename destinations (typically ItemCreated | ItemRenamed).
		kind = fsevent.RawCreate
	case ev.Flags&fsevents.ItemModified != 0:
		kind = fsevent.RawModifyData
	case ev.Flags&fsevents.ItemRenamed != 0:
		// Bare ItemRenamed without Created/Removed is the source side of a
		// rename the destination event for which will arrive separately;
		// the normalizer pairs these by file identity, so report it as a
		// rename-from and let grouping resolve it.
		kind = fsevent.RawRenameFrom
	default:
		return
	}

	if id, ok := fsid.Lookup(ev.Path); ok {
		a.cache.Put(ev.Path, id)
	}

	a.debounce(ev.Path, kind, hint)
}

func (a *DarwinActor) debounce(path string, kind fsevent.RawAction, hint fsevent.Subject) {
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

func (a *DarwinActor) flush(path string) {
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

func (a *DarwinActor) cancelAllPending() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for path, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, path)
	}
}
