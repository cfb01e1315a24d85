package pipelinectx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sensor_config.json")
	err := os.WriteFile(path, []byte(`{
		"temperature": {"min": 0, "max": 50, "calibration": {"multiplier": 1.02, "offset": 0.5}}
	}`), 0o640)
	require.NoError(t, err)
	return path
}

func TestDefaultPathsHonorsEnvOverride(t *testing.T) {
	t.Setenv("RAW_DATA_PATH", "/tmp/custom-raw")
	p := DefaultPaths()
	require.Equal(t, "/tmp/custom-raw", p.RawDir)
	require.Equal(t, filepath.Join("data", "quarantine"), p.QuarantineDir)
}

func TestNewLoadsConfigAndOpensCheckpoint(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		SensorConfigPath: writeTestConfig(t, dir),
		CheckpointPath:   filepath.Join(dir, "state", "checkpoints.json"),
	}

	ctx, err := New(paths)
	require.NoError(t, err)
	require.Contains(t, ctx.Config, "temperature")
	require.NotNil(t, ctx.Checkpoint)
}

func TestNewPropagatesConfigError(t *testing.T) {
	paths := Paths{SensorConfigPath: filepath.Join(t.TempDir(), "missing.json")}
	_, err := New(paths)
	require.Error(t, err)
}
