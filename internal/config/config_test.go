package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Server.URL)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, time.Second, cfg.Poll.Interval)
	assert.Equal(t, 5*time.Second, cfg.Poll.StatusInterval)
	assert.Equal(t, 75.0, cfg.View.FieldOfView)
	assert.Equal(t, 0.25, cfg.View.Damping)
	assert.Equal(t, 60, cfg.View.FrameRate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_WithYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cncview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  url: http://cnc.local:9000
  timeout: 3s
poll:
  interval: 250ms
view:
  fieldOfView: 60
logLevel: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://cnc.local:9000", cfg.Server.URL)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 5*time.Second, cfg.Poll.StatusInterval)
	assert.Equal(t, 60.0, cfg.View.FieldOfView)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_WithJSONFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cncview.json"), []byte(`{"server": {"url": "http://10.0.0.5"}}`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5", cfg.Server.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CNCVIEW_SERVER_URL", "http://env:1234")
	t.Setenv("CNCVIEW_LOGLEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env:1234", cfg.Server.URL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cncview.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"view": {"fieldOfView": 200, "damping": 0}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "view.fieldOfView")
	assert.Contains(t, err.Error(), "view.damping")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
