package gis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosift/watershed/internal/model"
)

func TestToolBindingArgs(t *testing.T) {
	binding := ToolBinding{
		Algorithm: model.AlgFillSinks,
		Library:   "ta_preprocessor",
		Tool:      "4",
		Flags: map[string]string{
			model.ParamDEM:        "ELEV",
			model.ResultKeyResult: "FILLED",
		},
	}

	t.Run("renders flags in sorted parameter order", func(t *testing.T) {
		args, err := binding.Args(map[string]string{
			model.ResultKeyResult: "/out/filled_dem.tif",
			model.ParamDEM:        "/in/dem.tif",
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{
			"ta_preprocessor", "4",
			"-ELEV=/in/dem.tif",
			"-FILLED=/out/filled_dem.tif",
		}, args)
	})

	t.Run("fails on an unbound parameter", func(t *testing.T) {
		_, err := binding.Args(map[string]string{"SURPRISE": "value"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SURPRISE")
	})
}

func TestAlgorithmRegistry(t *testing.T) {
	t.Run("register and lookup", func(t *testing.T) {
		registry := NewAlgorithmRegistry()
		binding := ToolBinding{Algorithm: model.AlgFillSinks, Library: "ta_preprocessor", Tool: "4"}

		assert.True(t, registry.Register(binding))

		found, exists := registry.Lookup(model.AlgFillSinks)
		assert.True(t, exists)
		assert.Equal(t, "ta_preprocessor", found.Library)
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		registry := NewAlgorithmRegistry()
		binding := ToolBinding{Algorithm: model.AlgFillSinks}

		assert.True(t, registry.Register(binding))
		assert.False(t, registry.Register(binding))
	})

	t.Run("lookup of unknown algorithm fails", func(t *testing.T) {
		registry := NewAlgorithmRegistry()

		_, exists := registry.Lookup(model.AlgWatershedBasins)
		assert.False(t, exists)
	})
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("covers the delineation workflow", func(t *testing.T) {
		for _, id := range []model.AlgorithmID{
			model.AlgFillSinks,
			model.AlgFlowDirection,
			model.AlgFlowAccumulation,
			model.AlgStreamNetwork,
			model.AlgWatershedBasins,
			model.AlgZonalStatistics,
		} {
			_, exists := registry.Lookup(id)
			assert.True(t, exists, "missing binding for %s", id)
		}

		assert.Len(t, registry.Algorithms(), 6)
	})

	t.Run("bindings accept their request parameters", func(t *testing.T) {
		requests := []model.AlgorithmRequest{
			model.FillSinksRequest{DEM: "a", Result: "b"},
			model.FlowDirectionRequest{Elevation: "a", Direction: "b"},
			model.FlowAccumulationRequest{Direction: "a", Accumulation: "b"},
			model.StreamNetworkRequest{Accumulation: "a", Threshold: 1000, Output: "b"},
			model.WatershedBasinsRequest{Direction: "a", Points: "b", Basins: "c"},
			model.ZonalStatisticsRequest{Polygons: "a", Raster: "b", Prefix: "elev_"},
		}

		for _, request := range requests {
			binding, exists := registry.Lookup(request.Algorithm())
			require.True(t, exists)

			args, err := binding.Args(request.Params())
			assert.NoError(t, err)
			assert.Equal(t, binding.Library, args[0])
			assert.Equal(t, binding.Tool, args[1])
			assert.Len(t, args, 2+len(request.Params()))
		}
	})

	t.Run("every binding names at least one output", func(t *testing.T) {
		for _, id := range registry.Algorithms() {
			binding, _ := registry.Lookup(id)
			assert.NotEmpty(t, binding.Outputs, "no outputs for %s", id)
		}
	})
}
