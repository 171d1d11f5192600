package scheduler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigYAML(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString("time_limit_seconds: 2.5\nworkers: 2\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.TimeLimit())
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, DefaultHorizonBuffer, cfg.HorizonBuffer())
}

func TestDecodeConfigJSON(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString(`{"horizon_buffer_minutes":120}`), "json")
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.HorizonBuffer())
	assert.Equal(t, 10*time.Second, cfg.TimeLimit())
}

func TestDecodeConfigZeroBuffer(t *testing.T) {
	cfg, err := DecodeConfig(bytes.NewBufferString("horizon_buffer_minutes: 0\n"), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.HorizonBuffer())

	var unset Config
	unset.SetDefaults()
	assert.Equal(t, DefaultHorizonBuffer, unset.HorizonBuffer())
	assert.Error(t, Config{HorizonBufferMinutes: BufferMinutes(-5)}.Validate())
}

func TestDecodeConfigErrors(t *testing.T) {
	_, err := DecodeConfig(bytes.NewBufferString("{}"), "toml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString(":"), "yaml")
	assert.Error(t, err)
	_, err = DecodeConfig(bytes.NewBufferString(`{"workers":-2}`), "json")
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_limit_seconds: 1\nhorizon_buffer_minutes: 90\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.TimeLimit())
	assert.Equal(t, 90, cfg.HorizonBuffer())

	jsonPath := filepath.Join(dir, "solver.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"workers":1}`), 0o644))
	cfg, err = LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)

	txt := filepath.Join(dir, "solver.txt")
	require.NoError(t, os.WriteFile(txt, []byte("bad"), 0o644))
	_, err = LoadConfig(txt)
	assert.Error(t, err)
	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
