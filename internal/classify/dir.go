package classify

import (
	"path/filepath"

	"github.com/colebrumley/fswatch/internal/appconfig"
)

// DirKindOf classifies a directory path.
func DirKindOf(fs StatFS, cfg *appconfig.Config, path string) (DirKind, error) {
	if isAppConfigDir(cfg, path) {
		return DirAppConfig, nil
	}
	if isProjectRoot(fs, cfg, path) {
		return DirProjectRoot, nil
	}

	root, err := locateProject(fs, cfg, path)
	if err != nil {
		return 0, err
	}

	switch path {
	case appDirOf(cfg, root):
		return DirProjectConfig, nil
	case analysisRootOf(cfg, root):
		return DirProjectAnalysis, nil
	case dataRootOf(cfg, root):
		return DirProjectData, nil
	}

	dataRoot := dataRootOf(cfg, root)
	if isWithin(dataRoot, path) {
		return classifyDataDir(fs, cfg, dataRoot, path)
	}

	return DirNone, nil
}

// isAppConfigDir reports whether path is the directory holding the
// app-level user-manifest, project-manifest, and local-config files.
func isAppConfigDir(cfg *appconfig.Config, path string) bool {
	return path == filepath.Dir(cfg.UserManifest) &&
		filepath.Dir(cfg.ProjectManifest) == path &&
		filepath.Dir(cfg.LocalConfig) == path
}

// classifyDataDir implements the config-location analyzer's folder-side
// rules.
func classifyDataDir(fs StatFS, cfg *appconfig.Config, dataRoot, path string) (DirKind, error) {
	parts := relComponents(dataRoot, path)
	appDirCount := 0
	appDirIdx := -1
	for i, p := range parts {
		if p == cfg.AppDir {
			appDirCount++
			appDirIdx = i
		}
	}

	switch appDirCount {
	case 0:
		if fs.Exists(filepath.Join(path, cfg.AppDir, cfg.ContainerPropertiesFile)) {
			return DirContainer, nil
		}
		return DirContainerLike, nil

	case 1:
		if appDirIdx == len(parts)-1 {
			return DirContainerConfig, nil
		}
		return DirNone, nil

	default:
		return DirNone, nil
	}
}
