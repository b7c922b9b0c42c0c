// Package rawwatch runs the raw watcher actor: it owns the OS-level
// filesystem subscription, recursively adds and removes watch roots, and
// emits debounced batches of fsevent.Raw for the normalizer to fold into
// typed events.
package rawwatch

import "github.com/colebrumley/fswatch/internal/fsid"

// CommandKind is the tag of a Command sent to the actor's command channel.
type CommandKind int

const (
	CmdWatch CommandKind = iota
	CmdUnwatch
	CmdFileID
	CmdShutdown
)

// Command is a request sent to a running Actor. Reply, when non-nil,
// receives exactly one Result once the command has been handled and is
// then closed; for FileID the Result also carries the looked-up ID.
type Command struct {
	Kind  CommandKind
	Path  string
	Reply chan Result
}

// Result carries the outcome of a Command back to its caller.
type Result struct {
	ID  fsid.ID
	Ok  bool
	Err error
}

// NewWatch builds a Watch command for path.
func NewWatch(path string) Command {
	return Command{Kind: CmdWatch, Path: path, Reply: make(chan Result, 1)}
}

// NewUnwatch builds an Unwatch command for path.
func NewUnwatch(path string) Command {
	return Command{Kind: CmdUnwatch, Path: path, Reply: make(chan Result, 1)}
}

// NewFileID builds a FileID lookup command for path.
func NewFileID(path string) Command {
	return Command{Kind: CmdFileID, Path: path, Reply: make(chan Result, 1)}
}

// NewShutdown builds a Shutdown command.
func NewShutdown() Command {
	return Command{Kind: CmdShutdown, Reply: make(chan Result, 1)}
}
