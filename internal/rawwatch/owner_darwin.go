//go:build darwin

package rawwatch

import (
	"log/slog"

	"github.com/colebrumley/fswatch/internal/fsid"
)

func newPlatform(log *slog.Logger, cache *fsid.Cache) (Owner, error) {
	return NewDarwin(log, cache)
}
