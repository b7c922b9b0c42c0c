package rawwatch

import (
	"context"
	"log/slog"

	"github.com/colebrumley/fswatch/internal/fsevent"
	"github.com/colebrumley/fswatch/internal/fsid"
)

// Owner is the platform-independent surface the pipeline depends on.
// NewPlatform picks the concrete backend: Actor (fsnotify) everywhere,
// DarwinActor (native FSEvents) on darwin.
type Owner interface {
	Run(ctx context.Context) error
	Send(cmd Command)
	Events() <-chan []fsevent.Raw
}

var (
	_ Owner = (*Actor)(nil)
)

// NewPlatform constructs the Owner appropriate for the current GOOS,
// defined per-platform in owner_darwin.go / owner_other.go.
func NewPlatform(log *slog.Logger, cache *fsid.Cache) (Owner, error) {
	return newPlatform(log, cache)
}
