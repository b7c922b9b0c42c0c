package appevent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colebrumley/fswatch/internal/appconfig"
	"github.com/colebrumley/fswatch/internal/classify"
	"github.com/colebrumley/fswatch/internal/fsevent"
)

func testConfig(root string) *appconfig.Config {
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

func TestConvertBatch_ProjectPropertiesCreated(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)

	conv := &Converter{Cfg: cfg, FS: classify.DefaultStatFS}
	path := filepath.Join(project, ".appdir", "project.json")
	events, err := conv.ConvertBatch([]fsevent.Event{
		fsevent.NewSingle(fsevent.SubjectFile, fsevent.ActionCreated, path, time.Now()),
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, SubjectProjectProperties, events[0].Subject)
	assert.Equal(t, ActionCreated, events[0].Action)
}

func TestConvertBatch_GenericFileOutsideProject(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	conv := &Converter{Cfg: cfg, FS: classify.DefaultStatFS}
	path := filepath.Join(root, "stray.txt")
	events, err := conv.ConvertBatch([]fsevent.Event{
		fsevent.NewSingle(fsevent.SubjectFile, fsevent.ActionCreated, path, time.Now()),
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, SubjectFile, events[0].Subject)
}

func TestConvertBatch_AssetRenamedSameProject(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)
	require.NoError(t, os.MkdirAll(filepath.Join(project, "data"), 0o755))

	from := filepath.Join(project, "data", "a.csv")
	to := filepath.Join(project, "data", "b.csv")
	require.NoError(t, os.WriteFile(to, []byte("x"), 0o644))

	conv := &Converter{Cfg: cfg, FS: classify.DefaultStatFS}
	events, err := conv.ConvertBatch([]fsevent.Event{
		fsevent.NewPair(fsevent.SubjectFile, fsevent.ActionRenamed, from, to, time.Now()),
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, SubjectAssetFile, events[0].Subject)
	assert.Equal(t, ActionRenamed, events[0].Action)
}

func TestConvertBatch_FolderCreatedContainer(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	project := filepath.Join(root, "proj1")
	mkProject(t, project)
	containerDir := filepath.Join(project, "data", "sampleA")
	require.NoError(t, os.MkdirAll(filepath.Join(containerDir, ".appdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(containerDir, ".appdir", "container.json"), []byte("{}"), 0o644))

	conv := &Converter{Cfg: cfg, FS: classify.DefaultStatFS}
	events, err := conv.ConvertBatch([]fsevent.Event{
		fsevent.NewSingle(fsevent.SubjectFolder, fsevent.ActionCreated, containerDir, time.Now()),
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, SubjectGraph, events[0].Subject)
	assert.Equal(t, ActionCreated, events[0].Action)
}

func TestConvertBatch_AnyRemovedUnknownFallsBackToGeneric(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	conv := &Converter{Cfg: cfg, FS: classify.DefaultStatFS}
	path := filepath.Join(root, "ghost")
	events, err := conv.ConvertBatch([]fsevent.Event{
		fsevent.NewSingle(fsevent.SubjectAny, fsevent.ActionRemoved, path, time.Now()),
	})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, SubjectAny, events[0].Subject)
}
