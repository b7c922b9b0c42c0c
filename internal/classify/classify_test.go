package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colebrumley/fswatch/internal/appconfig"
)

func testConfig(t *testing.T, root string) *appconfig.Config {
	t.Helper()
	return &appconfig.Config{
		UserManifest:            filepath.Join(root, "user-manifest.json"),
		ProjectManifest:         filepath.Join(root, "project-manifest.json"),
		LocalConfig:             filepath.Join(root, "local-config.json"),
		AppDir:                  ".appdir",
		ProjectPropertiesFile:   "project.json",
		ProjectSettingsFile:     "settings.json",
		AnalysesFile:            "analyses.json",
		ContainerPropertiesFile: "container.json",
		ContainerSettingsFile:   "settings.json",
		AssetsFile:              "assets.json",
		AnalysisExtensions:      []string{"py", "r", "m", "jl", "sh"},
		AnalysesDirName:         "analyses",
		DataDirName:             "data",
	}
}

func mkProject(t *testing.T, base string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(base, ".appdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, ".appdir", "project.json"), []byte("{}"), 0o644))
}

func TestResourceKind_GlobalConfigFiles(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)

	kind, ok, err := ResourceKind(DefaultStatFS, cfg, cfg.UserManifest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FileUserManifest, kind)
}

func TestResourceKind_NotInProject(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)

	_, _, err := ResourceKind(DefaultStatFS, cfg, filepath.Join(root, "stray.txt"))
	require.Error(t, err)
	var target *ErrNotInProject
	assert.ErrorAs(t, err, &target)
}

func TestResourceKind_ProjectProperties(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)

	path := filepath.Join(project, ".appdir", cfg.ProjectPropertiesFile)
	kind, ok, err := ResourceKind(DefaultStatFS, cfg, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FileProjectProperties, kind)
}

func TestResourceKind_AnalysisFile(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)
	require.NoError(t, os.MkdirAll(filepath.Join(project, cfg.AnalysesDirName), 0o755))

	path := filepath.Join(project, cfg.AnalysesDirName, "script.py")
	kind, ok, err := ResourceKind(DefaultStatFS, cfg, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FileAnalysis, kind)
}

func TestResourceKind_NonScriptAnalysisExtensionIsUnclassified(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)
	require.NoError(t, os.MkdirAll(filepath.Join(project, cfg.AnalysesDirName), 0o755))

	path := filepath.Join(project, cfg.AnalysesDirName, "notes.txt")
	_, ok, err := ResourceKind(DefaultStatFS, cfg, path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResourceKind_AssetAtDataRoot(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)
	require.NoError(t, os.MkdirAll(filepath.Join(project, cfg.DataDirName), 0o755))

	path := filepath.Join(project, cfg.DataDirName, "raw.csv")
	kind, ok, err := ResourceKind(DefaultStatFS, cfg, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FileAsset, kind)
}

func TestResourceKind_ContainerConfigFile(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)
	containerDir := filepath.Join(project, cfg.DataDirName, "sampleA")
	require.NoError(t, os.MkdirAll(filepath.Join(containerDir, cfg.AppDir), 0o755))

	path := filepath.Join(containerDir, cfg.AppDir, cfg.ContainerPropertiesFile)
	kind, ok, err := ResourceKind(DefaultStatFS, cfg, path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FileContainerProperties, kind)
}

func TestDirKindOf_ProjectRoot(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)

	kind, err := DirKindOf(DefaultStatFS, cfg, project)
	require.NoError(t, err)
	assert.Equal(t, DirProjectRoot, kind)
}

func TestDirKindOf_ContainerVsContainerLike(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)

	plainDir := filepath.Join(project, cfg.DataDirName, "plain")
	require.NoError(t, os.MkdirAll(plainDir, 0o755))
	kind, err := DirKindOf(DefaultStatFS, cfg, plainDir)
	require.NoError(t, err)
	assert.Equal(t, DirContainerLike, kind)

	configuredDir := filepath.Join(project, cfg.DataDirName, "configured")
	require.NoError(t, os.MkdirAll(filepath.Join(configuredDir, cfg.AppDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configuredDir, cfg.AppDir, cfg.ContainerPropertiesFile), []byte("{}"), 0o644))
	kind, err = DirKindOf(DefaultStatFS, cfg, configuredDir)
	require.NoError(t, err)
	assert.Equal(t, DirContainer, kind)
}

func TestDirKindOf_ContainerConfigDir(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t, root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)

	containerDir := filepath.Join(project, cfg.DataDirName, "sampleA")
	require.NoError(t, os.MkdirAll(filepath.Join(containerDir, cfg.AppDir), 0o755))

	kind, err := DirKindOf(DefaultStatFS, cfg, filepath.Join(containerDir, cfg.AppDir))
	require.NoError(t, err)
	assert.Equal(t, DirContainerConfig, kind)
}
