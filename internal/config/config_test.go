package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/ports"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FlattensYAML(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "private.yaml", `
common:
  dialog_main: dialog.xml
  outputs:
    directory: out
  verbose: true
conversation:
  workspace_id: 42
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	var lookup ports.ConfigLookup = cfg
	v, ok := lookup.Get("common_dialog_main")
	assert.True(t, ok)
	assert.Equal(t, "dialog.xml", v)

	v, _ = cfg.Get("common_outputs_directory")
	assert.Equal(t, "out", v)
	v, _ = cfg.Get("conversation_workspace_id")
	assert.Equal(t, "42", v)

	_, ok = cfg.Get("missing")
	assert.False(t, ok)
}

func TestLoad_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	first := write(t, dir, "a.yaml", "common:\n  schema: a.xsd\n")
	second := write(t, dir, "b.json", `{"common": {"schema": "b.xsd"}}`)

	cfg, err := config.Load(first, second)
	require.NoError(t, err)
	v, _ := cfg.Get(config.KeySchema)
	assert.Equal(t, "b.xsd", v)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := write(t, dir, "bad.json", "{")
	_, err = config.Load(bad)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	env := write(t, dir, ".env", "CLOUDFUNCTIONS_USERNAME=bot\nCLOUDFUNCTIONS_PASSWORD=secret\n")

	cfg := config.New()
	require.NoError(t, cfg.LoadEnv(env))

	v, ok := cfg.Get("cloudfunctions_username")
	assert.True(t, ok)
	assert.Equal(t, "bot", v)
}

func TestPathToActions(t *testing.T) {
	tests := []struct {
		ns, pkg, want string
	}{
		{"org_space", "pkg", "/org_space/pkg/"},
		{"/org_space/", "/pkg/", "/org_space/pkg/"},
		{"", "pkg", "/pkg/"},
	}
	for _, tt := range tests {
		cfg := config.New()
		cfg.Set(config.KeyCFNamespace, tt.ns)
		cfg.Set(config.KeyCFPackage, tt.pkg)
		if tt.ns == "" {
			_, ok := cfg.Get(config.KeyCFPathToActions)
			assert.False(t, ok, "namespace unset")
			continue
		}
		v, ok := cfg.Get(config.KeyCFPathToActions)
		assert.True(t, ok)
		assert.Equal(t, tt.want, v)
	}
}

func TestSettings_WeakDecode(t *testing.T) {
	cfg := config.New()
	cfg.Set(config.KeyVerbose, "1")
	cfg.Set("sink_redis_db", "3")
	cfg.Set(config.KeyOutputsDir, "out")

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.True(t, s.Verbose)
	assert.Equal(t, 3, s.RedisDB)
	assert.Equal(t, "out", s.OutputsDir)
}

func TestSave(t *testing.T) {
	cfg := config.New()
	cfg.Set(config.KeyCFNamespace, "ns")
	cfg.Set(config.KeyCFPackage, "pkg")

	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var saved map[string]string
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "/ns/pkg/", saved[config.KeyCFPathToActions])
	assert.Equal(t, "ns", saved[config.KeyCFNamespace])
}
