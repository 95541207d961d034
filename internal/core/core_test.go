package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosift/watershed/internal/config"
	"github.com/hydrosift/watershed/internal/model"
)

// fakeEngineBinary writes a stand-in toolkit binary so session acquisition
// succeeds without SAGA installed
func fakeEngineBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saga_cmd")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{EnginePath: fakeEngineBinary(t)}
	cfg.ApplyDefaults()
	return cfg
}

func TestCoreLifecycle(t *testing.T) {
	c := NewCore(testConfig(t), zerolog.Nop())

	assert.True(t, c.Initialize())
	assert.Equal(t, model.StatusInitialized, c.GetStatus())

	assert.True(t, c.Start())
	assert.Equal(t, model.StatusRunning, c.GetStatus())

	assert.True(t, c.Stop())
	assert.Equal(t, model.StatusStopped, c.GetStatus())
}

func TestCoreInitializeFailsWithoutEngineBinary(t *testing.T) {
	cfg := &config.Config{EnginePath: filepath.Join(t.TempDir(), "missing", "saga_cmd")}
	cfg.ApplyDefaults()

	c := NewCore(cfg, zerolog.Nop())

	assert.False(t, c.Initialize())
	assert.Equal(t, model.StatusError, c.GetStatus())
}

func TestCoreStopIsIdempotent(t *testing.T) {
	c := NewCore(testConfig(t), zerolog.Nop())
	assert.True(t, c.Initialize())
	assert.True(t, c.Start())

	assert.True(t, c.Stop())
	assert.True(t, c.Stop())
}

func TestCoreHealthIncludesEngineSession(t *testing.T) {
	c := NewCore(testConfig(t), zerolog.Nop())
	assert.True(t, c.Initialize())
	assert.True(t, c.Start())

	health := c.GetSystemHealth()
	session, ok := health.Components["engine_session"]
	assert.True(t, ok)
	assert.Equal(t, model.StatusRunning, session.Status)

	c.Stop()
}

func TestCoreExecuteFailsFastOnMissingDEM(t *testing.T) {
	cfg := testConfig(t)
	cfg.DEMPath = filepath.Join(t.TempDir(), "missing_dem.tif")
	cfg.PourPointsPath = filepath.Join(t.TempDir(), "missing_points.shp")
	cfg.OutputDir = t.TempDir()

	c := NewCore(cfg, zerolog.Nop())
	assert.True(t, c.Initialize())
	assert.True(t, c.Start())
	defer c.Stop()

	_, err := c.Execute(context.Background())

	var missing *model.MissingInputError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, cfg.DEMPath, missing.Path)
}
