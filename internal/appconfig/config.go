// Package appconfig holds the globally recognized configuration values the
// rest of the pipeline is parameterized over: the three absolute config file
// paths, the reserved app-directory segment name, and the set of supported
// analysis-script extensions.
package appconfig

import "strings"

// Config is the narrow collaborator interface the classifier and converter
// depend on. Everything outside these fields is project-scoped and is
// discovered by walking the filesystem, not configured up front.
type Config struct {
	// UserManifest is the absolute path to the single user-manifest file.
	UserManifest string `yaml:"user_manifest"`
	// ProjectManifest is the absolute path to the project-manifest file,
	// listing the base paths of every project the user has registered.
	ProjectManifest string `yaml:"project_manifest"`
	// LocalConfig is the absolute path to the local (machine-scoped) config.
	LocalConfig string `yaml:"local_config"`

	// AppDir is the reserved directory name marking project and container
	// config folders (e.g. ".appdir").
	AppDir string `yaml:"app_dir"`

	// ProjectPropertiesFile, ProjectSettingsFile and AnalysesFile are the
	// three fixed filenames that live directly inside a project's app-dir.
	ProjectPropertiesFile string `yaml:"project_properties_file"`
	ProjectSettingsFile   string `yaml:"project_settings_file"`
	AnalysesFile          string `yaml:"analyses_file"`

	// ContainerPropertiesFile, ContainerSettingsFile and AssetsFile are the
	// three fixed filenames that live directly inside a container's app-dir.
	ContainerPropertiesFile string `yaml:"container_properties_file"`
	ContainerSettingsFile   string `yaml:"container_settings_file"`
	AssetsFile              string `yaml:"assets_file"`

	// AnalysisExtensions is the closed, case-insensitive set of supported
	// analysis-script extensions (without the leading dot).
	AnalysisExtensions []string `yaml:"analysis_extensions"`

	// AnalysesDirName and DataDirName are the fixed child-folder names of a
	// project root holding analysis scripts and the data graph respectively.
	AnalysesDirName string `yaml:"analyses_dir_name"`
	DataDirName     string `yaml:"data_dir_name"`

	extSet map[string]struct{}
}

// IsAnalysisExtension reports whether ext (with or without a leading dot)
// is one of the supported analysis-script extensions, case-insensitively.
func (c *Config) IsAnalysisExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c.extSet == nil {
		c.extSet = make(map[string]struct{}, len(c.AnalysisExtensions))
		for _, e := range c.AnalysisExtensions {
			c.extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
		}
	}
	_, ok := c.extSet[ext]
	return ok
}

// applyDefaults fills in the fixed filenames/directory names when the
// loaded config omits them, matching the persisted layout documented in
// the pipeline's external interfaces.
func applyDefaults(c *Config) {
	if c.AppDir == "" {
		c.AppDir = ".appdir"
	}
	if c.ProjectPropertiesFile == "" {
		c.ProjectPropertiesFile = "project.json"
	}
	if c.ProjectSettingsFile == "" {
		c.ProjectSettingsFile = "settings.json"
	}
	if c.AnalysesFile == "" {
		c.AnalysesFile = "analyses.json"
	}
	if c.ContainerPropertiesFile == "" {
		c.ContainerPropertiesFile = "container.json"
	}
	if c.ContainerSettingsFile == "" {
		c.ContainerSettingsFile = "settings.json"
	}
	if c.AssetsFile == "" {
		c.AssetsFile = "assets.json"
	}
	if c.AnalysesDirName == "" {
		c.AnalysesDirName = "analyses"
	}
	if c.DataDirName == "" {
		c.DataDirName = "data"
	}
	if len(c.AnalysisExtensions) == 0 {
		c.AnalysisExtensions = []string{"py", "r", "m", "jl", "sh"}
	}
}
