package classify

import (
	"path/filepath"

	"github.com/colebrumley/fswatch/internal/appconfig"
)

// ResourceKind classifies a file path. It returns (kind, true, nil) when
// path is a recognized resource, (0, false, nil) when path is legitimately
// unclassifiable (e.g. a file nested below a container's app-directory
// child level, or a non-script file in the analyses root), and an
// *ErrNotInProject when no ancestor of path is a project root.
func ResourceKind(fs StatFS, cfg *appconfig.Config, path string) (FileResourceKind, bool, error) {
	switch path {
	case cfg.ProjectManifest:
		return FileProjectManifest, true, nil
	case cfg.UserManifest:
		return FileUserManifest, true, nil
	case cfg.LocalConfig:
		return FileLocalConfig, true, nil
	}

	root, err := locateProject(fs, cfg, path)
	if err != nil {
		return 0, false, err
	}

	appDir := appDirOf(cfg, root)
	if filepath.Dir(path) == appDir {
		switch filepath.Base(path) {
		case cfg.ProjectPropertiesFile:
			return FileProjectProperties, true, nil
		case cfg.ProjectSettingsFile:
			return FileProjectSettings, true, nil
		case cfg.AnalysesFile:
			return FileAnalysisManifest, true, nil
		}
		return 0, false, nil
	}

	analysisRoot := analysisRootOf(cfg, root)
	if filepath.Dir(path) == analysisRoot || isWithin(analysisRoot, path) {
		if cfg.IsAnalysisExtension(filepath.Ext(path)) {
			return FileAnalysis, true, nil
		}
		return 0, false, nil
	}

	dataRoot := dataRootOf(cfg, root)
	if isWithin(dataRoot, path) || dataRoot == filepath.Dir(path) {
		return classifyDataFile(cfg, dataRoot, path)
	}

	return 0, false, nil
}

// classifyDataFile implements the config-location analyzer's file-side
// rules: the number and position of app-directory path components
// beneath the data root determines asset vs. container config file.
func classifyDataFile(cfg *appconfig.Config, dataRoot, path string) (FileResourceKind, bool, error) {
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
		return FileAsset, true, nil

	case 1:
		// A child of the app-directory: dispatch by filename against the
		// three fixed container config names.
		if appDirIdx == len(parts)-2 {
			switch filepath.Base(path) {
			case cfg.ContainerPropertiesFile:
				return FileContainerProperties, true, nil
			case cfg.ContainerSettingsFile:
				return FileContainerSettings, true, nil
			case cfg.AssetsFile:
				return FileContainerAssetManifest, true, nil
			}
		}
		return 0, false, nil

	default:
		// Deeper nesting inside the app-directory is unclassifiable.
		return 0, false, nil
	}
}

func isWithin(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return false
	}
	if len(rel) >= 2 && rel[:2] == ".." {
		return false
	}
	return true
}
