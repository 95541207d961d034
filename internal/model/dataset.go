package model

// DatasetKind distinguishes raster grids from vector feature collections
type DatasetKind string

const (
	// RasterDataset is a file-backed grid (elevation, flow direction, ...)
	RasterDataset DatasetKind = "RASTER"
	// VectorDataset is a file-backed feature collection (pour points, basins)
	VectorDataset DatasetKind = "VECTOR"
)

// DatasetRef is a reference to a file-backed geospatial dataset.
//
// Datasets are created by a load or by a geoprocessing call and are never
// mutated in place; all subsequent stages reference them by path.
type DatasetRef struct {
	Path   string      `json:"path"`
	Kind   DatasetKind `json:"kind"`
	Driver string      `json:"driver,omitempty"`
	Valid  bool        `json:"valid"`
}
