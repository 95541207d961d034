package stats

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosift/watershed/internal/gis"
	"github.com/hydrosift/watershed/internal/model"
)

// zonalEngine is an engine whose only behavior is the optional zonal
// statistics capability
type zonalEngine struct {
	zonal    bool
	err      error
	requests []model.AlgorithmRequest
}

func (e *zonalEngine) Has(capability gis.Capability) bool {
	return e.zonal && capability == gis.CapZonalStatistics
}

func (e *zonalEngine) Run(_ context.Context, req model.AlgorithmRequest) (gis.Results, error) {
	e.requests = append(e.requests, req)
	if e.err != nil {
		return nil, e.err
	}
	return gis.Results{model.ResultKeyStatistics: "augmented"}, nil
}

// memFeature is an in-memory Feature with fixed geometry and attributes
type memFeature struct {
	area      float64
	perimeter float64
	attrs     map[string]string
}

func (f memFeature) Area() float64      { return f.area }
func (f memFeature) Perimeter() float64 { return f.perimeter }
func (f memFeature) Attribute(name string) (string, bool) {
	value, ok := f.attrs[name]
	return value, ok
}

// memLayer is an in-memory VectorLayer
type memLayer struct {
	path     string
	features []gis.Feature
	err      error
}

func (l *memLayer) Path() string { return l.path }
func (l *memLayer) Features() ([]gis.Feature, error) {
	return l.features, l.err
}

func newTestAggregator(engine gis.Engine, layer *memLayer) *Aggregator {
	aggregator := NewAggregator(engine, zerolog.Nop())
	aggregator.open = func(path string) (gis.VectorLayer, error) {
		layer.path = path
		return layer, nil
	}
	return aggregator
}

func TestAggregate(t *testing.T) {
	t.Run("keys watersheds in feature order", func(t *testing.T) {
		layer := &memLayer{features: []gis.Feature{
			memFeature{area: 2_500_000, perimeter: 6_000},
			memFeature{area: 1_000_000, perimeter: 4_000},
			memFeature{area: 750_000, perimeter: 3_500},
		}}
		aggregator := newTestAggregator(&zonalEngine{}, layer)

		statistics, err := aggregator.Aggregate(context.Background(), "/out/watersheds.shp", "/in/dem.tif")
		require.NoError(t, err)
		require.Len(t, statistics, 3)

		for i, want := range []float64{2_500_000, 1_000_000, 750_000} {
			entry, ok := statistics[fmt.Sprintf("watershed_%d", i)]
			require.True(t, ok)
			assert.Equal(t, want, entry.AreaM2)
		}
		assert.Equal(t, "/out/watersheds.shp", layer.path)
	})

	t.Run("area in km2 is derived exactly", func(t *testing.T) {
		layer := &memLayer{features: []gis.Feature{
			memFeature{area: 1_234_567.89, perimeter: 100},
		}}
		aggregator := newTestAggregator(&zonalEngine{}, layer)

		statistics, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")
		require.NoError(t, err)

		entry := statistics["watershed_0"]
		assert.Equal(t, entry.AreaM2/1_000_000, entry.AreaKM2)
	})

	t.Run("zonal capability augments before reading", func(t *testing.T) {
		engine := &zonalEngine{zonal: true}
		layer := &memLayer{features: []gis.Feature{
			memFeature{area: 1, perimeter: 1, attrs: map[string]string{
				"elev_min":  "812.5",
				"elev_max":  "1450.25",
				"elev_mean": "1021.75",
			}},
		}}
		aggregator := newTestAggregator(engine, layer)

		statistics, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")
		require.NoError(t, err)

		require.Len(t, engine.requests, 1)
		zonal, ok := engine.requests[0].(model.ZonalStatisticsRequest)
		require.True(t, ok)
		assert.Equal(t, "w.shp", zonal.Polygons)
		assert.Equal(t, "d.tif", zonal.Raster)
		assert.Equal(t, ZonalFieldPrefix, zonal.Prefix)

		elevation := statistics["watershed_0"].Elevation
		require.NotNil(t, elevation)
		assert.Equal(t, 812.5, elevation.Min)
		assert.Equal(t, 1450.25, elevation.Max)
		assert.Equal(t, 1021.75, elevation.Mean)
	})

	t.Run("without the capability the engine is never invoked", func(t *testing.T) {
		engine := &zonalEngine{zonal: false}
		layer := &memLayer{features: []gis.Feature{memFeature{area: 1, perimeter: 1}}}
		aggregator := newTestAggregator(engine, layer)

		statistics, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")
		require.NoError(t, err)

		assert.Empty(t, engine.requests)
		assert.Nil(t, statistics["watershed_0"].Elevation)
	})

	t.Run("incomplete elevation fields omit the block", func(t *testing.T) {
		layer := &memLayer{features: []gis.Feature{
			memFeature{area: 1, perimeter: 1, attrs: map[string]string{
				"elev_min": "812.5",
				"elev_max": "not a number",
			}},
		}}
		aggregator := newTestAggregator(&zonalEngine{}, layer)

		statistics, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")
		require.NoError(t, err)

		assert.Nil(t, statistics["watershed_0"].Elevation)
	})

	t.Run("zonal failure aborts aggregation", func(t *testing.T) {
		engine := &zonalEngine{zonal: true, err: errors.New("grid system mismatch")}
		aggregator := newTestAggregator(engine, &memLayer{})

		_, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "zonal statistics")
	})

	t.Run("layer read failure propagates", func(t *testing.T) {
		layer := &memLayer{err: errors.New("truncated record")}
		aggregator := newTestAggregator(&zonalEngine{}, layer)

		_, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")
		assert.Error(t, err)
	})

	t.Run("empty layer yields empty statistics", func(t *testing.T) {
		aggregator := newTestAggregator(&zonalEngine{}, &memLayer{})

		statistics, err := aggregator.Aggregate(context.Background(), "w.shp", "d.tif")

		assert.NoError(t, err)
		assert.Empty(t, statistics)
	})
}
