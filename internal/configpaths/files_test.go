package configpaths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/ouka", dir)

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/u")
	dir, err = DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.config/ouka", dir)
}

func TestConfigCandidatePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	jsonPaths, yamlPaths, tomlPaths := ConfigCandidatePaths("/srv/custom.yml")

	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "/srv/custom.yml", yamlPaths[0])
	assert.Contains(t, jsonPaths, "/tmp/xdg/ouka/ouka.json")
	assert.Contains(t, tomlPaths, "/etc/ouka/config.toml")
	assert.NotContains(t, jsonPaths, "/srv/custom.yml")
}

func TestScriptPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = ScriptPath(filepath.Join(xdg, "missing.lua"))
	assert.Error(t, err)

	script := filepath.Join(xdg, "ouka", ScriptName)
	require.NoError(t, EnsureDir(script))
	require.NoError(t, os.WriteFile(script, []byte("-- empty"), 0o644))

	got, err := ScriptPath("")
	require.NoError(t, err)
	assert.Equal(t, script, got)

	got, err = ScriptPath(script)
	require.NoError(t, err)
	assert.Equal(t, script, got)
}

func TestExt(t *testing.T) {
	assert.Equal(t, "yaml", Ext("yml"))
	assert.Equal(t, "toml", Ext("toml"))
	assert.Equal(t, "json", Ext("json"))
	assert.Equal(t, "json", Ext(""))
}
