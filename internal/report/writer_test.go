package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosift/watershed/internal/model"
)

func TestRender(t *testing.T) {
	writer := NewWriter()

	t.Run("empty statistics render only the header", func(t *testing.T) {
		out := writer.Render(map[string]model.WatershedStats{})

		assert.Equal(t, "Watershed Delineation Statistics\n================================\n\n", out)
	})

	t.Run("block format has two decimals", func(t *testing.T) {
		out := writer.Render(map[string]model.WatershedStats{
			"watershed_0": {AreaKM2: 2.5, PerimeterM: 6000},
		})

		assert.Equal(t, "Watershed Delineation Statistics\n"+
			"================================\n"+
			"\n"+
			"watershed_0:\n"+
			"  Area: 2.50 sq km\n"+
			"  Perimeter: 6000.00 meters\n"+
			"\n", out)
	})

	t.Run("elevation block renders when present", func(t *testing.T) {
		out := writer.Render(map[string]model.WatershedStats{
			"watershed_0": {
				AreaKM2:    1,
				PerimeterM: 4000,
				Elevation:  &model.ElevationStats{Min: 812.5, Max: 1450.25, Mean: 1021.756},
			},
		})

		assert.Contains(t, out, "  Elevation min: 812.50 meters\n")
		assert.Contains(t, out, "  Elevation max: 1450.25 meters\n")
		assert.Contains(t, out, "  Elevation mean: 1021.76 meters\n")
	})

	t.Run("watersheds appear in positional order", func(t *testing.T) {
		out := writer.Render(map[string]model.WatershedStats{
			"watershed_10": {},
			"watershed_2":  {},
			"watershed_0":  {},
		})

		first := strings.Index(out, "watershed_0:")
		second := strings.Index(out, "watershed_2:")
		third := strings.Index(out, "watershed_10:")
		require.NotEqual(t, -1, first)
		assert.Less(t, first, second)
		assert.Less(t, second, third)
	})
}

func TestWrite(t *testing.T) {
	writer := NewWriter()

	t.Run("writes the rendered report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "watershed_statistics.txt")
		statistics := map[string]model.WatershedStats{
			"watershed_0": {AreaKM2: 2.5, PerimeterM: 6000},
		}

		require.NoError(t, writer.Write(path, statistics))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, writer.Render(statistics), string(content))
	})

	t.Run("overwrites an existing report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "watershed_statistics.txt")
		require.NoError(t, os.WriteFile(path, []byte("previous run"), 0o644))

		require.NoError(t, writer.Write(path, nil))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "previous run")
	})

	t.Run("fails on an unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "no_such_dir", "report.txt")

		err := writer.Write(path, nil)
		assert.Error(t, err)
	})
}
