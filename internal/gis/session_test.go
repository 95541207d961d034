package gis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolkitBinary writes an executable stand-in for saga_cmd and returns
// its path
func fakeToolkitBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saga_cmd")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestNewSession(t *testing.T) {
	t.Run("resolves an explicit binary path", func(t *testing.T) {
		bin := fakeToolkitBinary(t)

		session, err := NewSession(bin, zerolog.Nop())

		assert.NoError(t, err)
		assert.Equal(t, bin, session.BinPath())
		assert.True(t, session.Active())
	})

	t.Run("fails on an empty binary", func(t *testing.T) {
		_, err := NewSession("", zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("fails on a missing binary path", func(t *testing.T) {
		_, err := NewSession(filepath.Join(t.TempDir(), "saga_cmd"), zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("fails on a bare name not on PATH", func(t *testing.T) {
		_, err := NewSession("definitely-not-a-real-toolkit", zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestSessionRelease(t *testing.T) {
	session, err := NewSession(fakeToolkitBinary(t), zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, session.Active())

	session.Release()
	assert.False(t, session.Active())

	// second release is a no-op
	session.Release()
	assert.False(t, session.Active())
}
