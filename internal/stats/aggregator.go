package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hydrosift/watershed/internal/gis"
	"github.com/hydrosift/watershed/internal/model"
)

// ZonalFieldPrefix is the attribute prefix the engine uses when augmenting
// the watershed layer with elevation statistics
const ZonalFieldPrefix = "elev_"

// Aggregator derives per-watershed statistics from the delineated basin
// layer: area and perimeter from geometry, and zonal elevation statistics
// merged back from the attribute table the engine augments.
type Aggregator struct {
	engine gis.Engine
	open   gis.LayerOpener
	log    zerolog.Logger
}

// NewAggregator creates a statistics aggregator backed by the given engine
func NewAggregator(engine gis.Engine, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		engine: engine,
		open:   gis.OpenShapefile,
		log:    log.With().Str("component", "stats_aggregator").Logger(),
	}
}

// Aggregate computes statistics for every feature of the watershed layer, in
// iterator order, keyed watershed_<index>. When the engine supports zonal
// statistics, the layer's attribute table is augmented with elevation fields
// first and their values are merged into the returned records; otherwise the
// elevation block is omitted.
func (a *Aggregator) Aggregate(ctx context.Context, watershedsPath, demPath string) (map[string]model.WatershedStats, error) {
	if a.engine.Has(gis.CapZonalStatistics) {
		_, err := a.engine.Run(ctx, model.ZonalStatisticsRequest{
			Polygons: watershedsPath,
			Raster:   demPath,
			Prefix:   ZonalFieldPrefix,
		})
		if err != nil {
			return nil, errors.Wrap(err, "zonal statistics")
		}
	} else {
		a.log.Debug().Msg("engine lacks zonal statistics; elevation fields omitted")
	}

	layer, err := a.open(watershedsPath)
	if err != nil {
		return nil, err
	}

	features, err := layer.Features()
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.WatershedStats, len(features))
	for i, feature := range features {
		area := feature.Area()
		entry := model.WatershedStats{
			AreaM2:     area,
			AreaKM2:    area / 1_000_000,
			PerimeterM: feature.Perimeter(),
			Elevation:  elevationStats(feature),
		}
		out[fmt.Sprintf("watershed_%d", i)] = entry
	}

	a.log.Info().Int("watersheds", len(out)).Msg("statistics aggregated")
	return out, nil
}

// elevationStats reads the zonal elevation fields from a feature's attribute
// table. All three fields must be present and numeric; otherwise no
// elevation block is reported for the feature.
func elevationStats(feature gis.Feature) *model.ElevationStats {
	min, okMin := attributeFloat(feature, ZonalFieldPrefix+"min")
	max, okMax := attributeFloat(feature, ZonalFieldPrefix+"max")
	mean, okMean := attributeFloat(feature, ZonalFieldPrefix+"mean")
	if !okMin || !okMax || !okMean {
		return nil
	}

	return &model.ElevationStats{Min: min, Max: max, Mean: mean}
}

func attributeFloat(feature gis.Feature, name string) (float64, bool) {
	raw, ok := feature.Attribute(name)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
