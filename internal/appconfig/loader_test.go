package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
user_manifest: /home/user/.config/app/user.json
project_manifest: /home/user/.config/app/projects.json
local_config: /home/user/.config/app/local.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ".appdir", cfg.AppDir)
	assert.Equal(t, "project.json", cfg.ProjectPropertiesFile)
	assert.Equal(t, "analyses", cfg.AnalysesDirName)
	assert.Equal(t, "data", cfg.DataDirName)
	assert.NotEmpty(t, cfg.AnalysisExtensions)
}

func TestLoad_MissingRequiredField(t *testing.T) {
	path := writeConfig(t, `
project_manifest: /tmp/projects.json
local_config: /tmp/local.json
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestIsAnalysisExtension_CaseInsensitive(t *testing.T) {
	cfg := &Config{AnalysisExtensions: []string{"py", "R"}}

	assert.True(t, cfg.IsAnalysisExtension("py"))
	assert.True(t, cfg.IsAnalysisExtension(".PY"))
	assert.True(t, cfg.IsAnalysisExtension("r"))
	assert.False(t, cfg.IsAnalysisExtension("txt"))
}
