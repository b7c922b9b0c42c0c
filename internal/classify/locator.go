package classify

import (
	"os"
	"path/filepath"

	"github.com/colebrumley/fswatch/internal/appconfig"
)

// StatFS is the minimal filesystem surface the classifier probes. It
// exists so tests can substitute an in-memory fake instead of touching
// the real filesystem.
type StatFS interface {
	IsDir(path string) bool
	Exists(path string) bool
}

// osStatFS probes the real filesystem.
type osStatFS struct{}

func (osStatFS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (osStatFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultStatFS probes the real filesystem via os.Stat.
var DefaultStatFS StatFS = osStatFS{}

// locateProject walks the parents of path looking for a directory whose
// app-directory marker is materialized (the project-properties file
// living inside <dir>/<AppDir>). The first ancestor found, innermost
// first, is the project root.
func locateProject(fs StatFS, cfg *appconfig.Config, path string) (root string, err error) {
	dir := filepath.Dir(path)
	for {
		if isProjectRoot(fs, cfg, dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &ErrNotInProject{Path: path}
		}
		dir = parent
	}
}

func isProjectRoot(fs StatFS, cfg *appconfig.Config, dir string) bool {
	return fs.Exists(filepath.Join(dir, cfg.AppDir, cfg.ProjectPropertiesFile))
}

// appDirOf returns the reserved app-directory path beneath root.
func appDirOf(cfg *appconfig.Config, root string) string {
	return filepath.Join(root, cfg.AppDir)
}

func analysisRootOf(cfg *appconfig.Config, root string) string {
	return filepath.Join(root, cfg.AnalysesDirName)
}

func dataRootOf(cfg *appconfig.Config, root string) string {
	return filepath.Join(root, cfg.DataDirName)
}

// relComponents splits the path relative to base into its components,
// or nil if path is not beneath base.
func relComponents(base, path string) []string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || len(rel) >= 2 && rel[:2] == ".." {
		return nil
	}
	var parts []string
	for _, p := range filepathSplit(rel) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func filepathSplit(rel string) []string {
	var out []string
	cur := rel
	for {
		dir, file := filepath.Split(cur)
		dir = filepath.Clean(dir)
		if file != "" {
			out = append([]string{file}, out...)
		}
		if dir == "." || dir == string(filepath.Separator) || dir == cur {
			break
		}
		cur = dir
	}
	return out
}
