package gis

import (
	"context"

	"github.com/hydrosift/watershed/internal/model"
)

// Results is the mapping returned by a geoprocessing operation. Keys are
// algorithm specific (RESULT, DIRECTION, ACCUMULATION, OUTPUT, BASINS, ...);
// values are paths to the produced datasets.
type Results map[string]string

// Capability names an optional engine feature
type Capability string

const (
	// CapZonalStatistics indicates the engine can aggregate raster values
	// within polygon zones
	CapZonalStatistics Capability = "ZONAL_STATISTICS"
)

// Engine is the geoprocessing boundary. Every hydrological computation is a
// single delegated call; the pipeline never touches raster cells or flow
// routing directly.
type Engine interface {
	// Run executes a single geoprocessing operation and returns its
	// result mapping
	Run(ctx context.Context, req model.AlgorithmRequest) (Results, error)

	// Has reports whether the engine supports an optional capability
	Has(capability Capability) bool
}
