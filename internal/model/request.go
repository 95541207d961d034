package model

import "strconv"

// Parameter and result keys used at the engine boundary. The engine returns
// a result mapping whose keys are algorithm specific.
const (
	ParamDEM       = "DEM"
	ParamElevation = "ELEVATION"
	ParamDirection = "DIRECTION"
	ParamInput     = "INPUT"
	ParamThreshold = "THRESHOLD"
	ParamPoints    = "POINTS"
	ParamPolygons  = "POLYGONS"
	ParamRaster    = "RASTER"
	ParamPrefix    = "PREFIX"

	ResultKeyResult       = "RESULT"
	ResultKeyDirection    = "DIRECTION"
	ResultKeyAccumulation = "ACCUMULATION"
	ResultKeyOutput       = "OUTPUT"
	ResultKeyBasins       = "BASINS"
	ResultKeyStatistics   = "STATISTICS"
)

// AlgorithmRequest is a typed request for a single geoprocessing operation.
// Each algorithm gets its own request struct so parameter key mismatches are
// caught at compile time; the stringly parameter map only exists at the
// engine boundary.
type AlgorithmRequest interface {
	// Algorithm returns the identifier of the requested operation
	Algorithm() AlgorithmID

	// Params marshals the request into the engine's parameter mapping
	Params() map[string]string
}

// FillSinksRequest fills depressions in an elevation raster
type FillSinksRequest struct {
	DEM    string
	Result string
}

// Algorithm returns the identifier of the requested operation
func (r FillSinksRequest) Algorithm() AlgorithmID { return AlgFillSinks }

// Params marshals the request into the engine's parameter mapping
func (r FillSinksRequest) Params() map[string]string {
	return map[string]string{
		ParamDEM:        r.DEM,
		ResultKeyResult: r.Result,
	}
}

// FlowDirectionRequest computes a flow direction raster from a filled DEM
type FlowDirectionRequest struct {
	Elevation string
	Direction string
}

// Algorithm returns the identifier of the requested operation
func (r FlowDirectionRequest) Algorithm() AlgorithmID { return AlgFlowDirection }

// Params marshals the request into the engine's parameter mapping
func (r FlowDirectionRequest) Params() map[string]string {
	return map[string]string{
		ParamElevation:     r.Elevation,
		ResultKeyDirection: r.Direction,
	}
}

// FlowAccumulationRequest computes a flow accumulation raster
type FlowAccumulationRequest struct {
	Direction    string
	Accumulation string
}

// Algorithm returns the identifier of the requested operation
func (r FlowAccumulationRequest) Algorithm() AlgorithmID { return AlgFlowAccumulation }

// Params marshals the request into the engine's parameter mapping
func (r FlowAccumulationRequest) Params() map[string]string {
	return map[string]string{
		ParamDirection:        r.Direction,
		ResultKeyAccumulation: r.Accumulation,
	}
}

// StreamNetworkRequest thresholds a flow accumulation raster into a binary
// stream raster. The threshold is a free numeric parameter with no validated
// bounds; larger values prune more low-order streams.
type StreamNetworkRequest struct {
	Accumulation string
	Threshold    float64
	Output       string
}

// Algorithm returns the identifier of the requested operation
func (r StreamNetworkRequest) Algorithm() AlgorithmID { return AlgStreamNetwork }

// Params marshals the request into the engine's parameter mapping
func (r StreamNetworkRequest) Params() map[string]string {
	return map[string]string{
		ParamInput:      r.Accumulation,
		ParamThreshold:  strconv.FormatFloat(r.Threshold, 'f', -1, 64),
		ResultKeyOutput: r.Output,
	}
}

// WatershedBasinsRequest delineates one basin polygon per pour point. The
// join between a point and its containing basin is engine defined.
type WatershedBasinsRequest struct {
	Direction string
	Points    string
	Basins    string
}

// Algorithm returns the identifier of the requested operation
func (r WatershedBasinsRequest) Algorithm() AlgorithmID { return AlgWatershedBasins }

// Params marshals the request into the engine's parameter mapping
func (r WatershedBasinsRequest) Params() map[string]string {
	return map[string]string{
		ParamDirection:  r.Direction,
		ParamPoints:     r.Points,
		ResultKeyBasins: r.Basins,
	}
}

// ZonalStatisticsRequest aggregates raster values within each polygon zone,
// augmenting the polygon layer's attribute table with prefixed fields.
type ZonalStatisticsRequest struct {
	Polygons string
	Raster   string
	Prefix   string
}

// Algorithm returns the identifier of the requested operation
func (r ZonalStatisticsRequest) Algorithm() AlgorithmID { return AlgZonalStatistics }

// Params marshals the request into the engine's parameter mapping
func (r ZonalStatisticsRequest) Params() map[string]string {
	return map[string]string{
		ParamPolygons: r.Polygons,
		ParamRaster:   r.Raster,
		ParamPrefix:   r.Prefix,
	}
}
