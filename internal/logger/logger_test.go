package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energyops/forecast-guard/internal/config"
)

func TestNew_FileOutputWithUppercaseLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	manager, err := New(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	})
	require.NoError(t, err)

	manager.ForComponent("validator").Info("validation completed", "flag", true)
	require.NoError(t, manager.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "validator", entry["component"])
	assert.Equal(t, "validation completed", entry["msg"])
	assert.Equal(t, true, entry["flag"])
	assert.Contains(t, entry["time"], "T", "timestamps are RFC3339")
}

func TestNew_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	manager, err := New(config.LoggingConfig{
		Level:    "error",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	manager.Logger().Info("dropped")
	manager.Logger().Error("kept")
	require.NoError(t, manager.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNew_FileOutputRequiresPath(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "info", Format: "json", Output: "file"})
	assert.Error(t, err)
}

func TestForRun_CarriesRunIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	manager, err := New(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	manager.ForRun("run-42", "seasonal_naive").Info("run completed")
	require.NoError(t, manager.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "run-42", entry["run_id"])
	assert.Equal(t, "seasonal_naive", entry["model"])
}
