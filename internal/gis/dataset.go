package gis

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/hydrosift/watershed/internal/model"
)

// TIFF byte-order marks; a GeoTIFF starts with one of these.
var (
	tiffLittleEndian = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffBigEndian    = []byte{0x4D, 0x4D, 0x00, 0x2A}
)

// OpenRaster validates a file-backed raster grid and returns a reference to
// it. The content stays on disk; subsequent stages consume it by path.
func OpenRaster(path string) (model.DatasetRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.DatasetRef{}, &model.MissingInputError{Path: path}
	}
	if info.Size() == 0 {
		return model.DatasetRef{}, &model.InvalidDatasetError{Path: path, Reason: "empty file"}
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".tif" || ext == ".tiff" {
		header := make([]byte, 4)
		f, err := os.Open(path)
		if err != nil {
			return model.DatasetRef{}, &model.InvalidDatasetError{Path: path, Reason: err.Error()}
		}
		defer f.Close()

		if _, err := f.Read(header); err != nil {
			return model.DatasetRef{}, &model.InvalidDatasetError{Path: path, Reason: "unreadable header"}
		}
		if !bytes.Equal(header, tiffLittleEndian) && !bytes.Equal(header, tiffBigEndian) {
			return model.DatasetRef{}, &model.InvalidDatasetError{Path: path, Reason: "not a TIFF raster"}
		}
	}

	return model.DatasetRef{
		Path:   path,
		Kind:   model.RasterDataset,
		Driver: "GTiff",
		Valid:  true,
	}, nil
}

// Feature exposes a single vector feature: its geometry measurements in
// native projected units and its attribute table row.
type Feature interface {
	// Area returns the polygon area in square projected units
	Area() float64

	// Perimeter returns the boundary length in projected units
	Perimeter() float64

	// Attribute returns a named attribute value, matched case-insensitively
	Attribute(name string) (string, bool)
}

// VectorLayer is a file-backed feature collection
type VectorLayer interface {
	// Path returns the layer's backing file path
	Path() string

	// Features reads the layer's features in iterator order. The order is
	// whatever the underlying reader yields and is not guaranteed stable
	// across re-reads.
	Features() ([]Feature, error)
}

// LayerOpener opens a vector layer by path
type LayerOpener func(path string) (VectorLayer, error)

// ShapefileLayer is a VectorLayer backed by an ESRI shapefile, read with
// go-shp. Each Features call re-opens the file so attribute augmentations
// made by the engine between calls are visible.
type ShapefileLayer struct {
	path string
}

// OpenShapefile validates a shapefile and returns a layer over it
func OpenShapefile(path string) (VectorLayer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &model.MissingInputError{Path: path}
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, &model.InvalidDatasetError{Path: path, Reason: err.Error()}
	}
	reader.Close()

	return &ShapefileLayer{path: path}, nil
}

// Path returns the layer's backing file path
func (l *ShapefileLayer) Path() string {
	return l.path
}

// Features reads the layer's features in shapefile record order
func (l *ShapefileLayer) Features() ([]Feature, error) {
	reader, err := shp.Open(l.path)
	if err != nil {
		return nil, &model.InvalidDatasetError{Path: l.path, Reason: err.Error()}
	}
	defer reader.Close()

	fields := reader.Fields()

	var features []Feature
	for reader.Next() {
		row, shape := reader.Shape()

		attrs := make(map[string]string, len(fields))
		for i, field := range fields {
			attrs[strings.ToLower(field.String())] = reader.ReadAttribute(row, i)
		}

		features = append(features, &shapeFeature{shape: shape, attrs: attrs})
	}

	return features, nil
}

// shapeFeature adapts a go-shp shape to the Feature interface
type shapeFeature struct {
	shape shp.Shape
	attrs map[string]string
}

func (f *shapeFeature) Area() float64 {
	switch s := f.shape.(type) {
	case *shp.Polygon:
		return polygonArea(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygonArea(s.Parts, s.Points)
	default:
		return 0
	}
}

func (f *shapeFeature) Perimeter() float64 {
	switch s := f.shape.(type) {
	case *shp.Polygon:
		return polygonPerimeter(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygonPerimeter(s.Parts, s.Points)
	default:
		return 0
	}
}

func (f *shapeFeature) Attribute(name string) (string, bool) {
	value, ok := f.attrs[strings.ToLower(name)]
	return value, ok
}
