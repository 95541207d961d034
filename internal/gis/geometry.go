package gis

import (
	"math"

	shp "github.com/jonas-p/go-shp"
)

// polygonArea computes the area of a multi-ring polygon in squared projected
// units. Ring winding in shapefiles encodes holes with the opposite
// orientation of their outer ring, so summing the signed ring areas before
// taking the absolute value subtracts holes from the total.
func polygonArea(parts []int32, points []shp.Point) float64 {
	var total float64
	for _, ring := range rings(parts, points) {
		total += signedRingArea(ring)
	}
	return math.Abs(total)
}

// polygonPerimeter computes the total boundary length of a polygon,
// including hole rings.
func polygonPerimeter(parts []int32, points []shp.Point) float64 {
	var total float64
	for _, ring := range rings(parts, points) {
		total += ringLength(ring)
	}
	return total
}

// rings splits a shapefile point array into its component rings
func rings(parts []int32, points []shp.Point) [][]shp.Point {
	if len(points) == 0 {
		return nil
	}
	if len(parts) == 0 {
		return [][]shp.Point{points}
	}

	out := make([][]shp.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || int(start) >= len(points) || end > int32(len(points)) || start >= end {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}

// signedRingArea is the shoelace formula over one ring. The ring may or may
// not repeat its first point as the last; both forms are handled.
func signedRingArea(ring []shp.Point) float64 {
	if len(ring) < 3 {
		return 0
	}

	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

// ringLength is the summed segment length around one ring, closing it if
// the first point is not repeated.
func ringLength(ring []shp.Point) float64 {
	if len(ring) < 2 {
		return 0
	}

	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += math.Hypot(ring[j].X-ring[i].X, ring[j].Y-ring[i].Y)
	}

	// A ring that explicitly closes itself contributes a zero-length
	// closing segment, so no correction is needed either way.
	return sum
}
