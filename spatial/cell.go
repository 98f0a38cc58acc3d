// Package spatial implements the hex spatial model (spec §4.3): cell
// identifiers at a fixed hex resolution, grid-distance and grid-disk
// operations, and great-circle distance between cell centers, backed by
// Uber's H3 library — the library every ride-hailing repo in the
// reference pack that does geo-indexing reaches for (see DESIGN.md).
package spatial

import (
	"fmt"
	"math"

	h3 "github.com/uber/h3-go/v4"
)

// DefaultResolution is H3 resolution 9 (~0.24 km cell width), the
// resolution spec §3 names as the default.
const DefaultResolution = 9

// earthRadiusKm is used for the great-circle (haversine) calculation;
// H3 itself only reasons in cell-grid units, not physical distance.
const earthRadiusKm = 6371.0088

// Cell is an opaque handle naming a hexagonal cell at a fixed resolution.
type Cell struct {
	idx h3.Cell
}

// FromLatLng builds a Cell from a latitude/longitude pair at res (spec
// default: DefaultResolution).
func FromLatLng(lat, lng float64, res int) (Cell, error) {
	c, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), res)
	if err != nil {
		return Cell{}, fmt.Errorf("spatial: LatLngToCell(%f,%f,%d): %w", lat, lng, res, err)
	}
	return Cell{idx: c}, nil
}

// MustFromLatLng panics on error; intended for fixed scenario bounds at
// startup, never for per-event data.
func MustFromLatLng(lat, lng float64, res int) Cell {
	c, err := FromLatLng(lat, lng, res)
	if err != nil {
		panic(err)
	}
	return c
}

// LatLng returns the cell's center coordinate.
func (c Cell) LatLng() (lat, lng float64) {
	ll, err := c.idx.LatLng()
	if err != nil {
		return 0, 0
	}
	return ll.Lat, ll.Lng
}

// Resolution returns the cell's H3 resolution.
func (c Cell) Resolution() int {
	return c.idx.Resolution()
}

// IsValid reports whether the cell holds a real H3 index (zero value is
// never valid, which lets callers use Cell as an optional without a
// pointer in hot paths where that matters).
func (c Cell) IsValid() bool {
	return c.idx != 0 && c.idx.IsValid()
}

// String implements fmt.Stringer for logging.
func (c Cell) String() string {
	return c.idx.String()
}

// Equal reports whether two cells name the same hex.
func (c Cell) Equal(o Cell) bool {
	return c.idx == o.idx
}

// GridDistance returns the hex-grid distance between two cells of the
// same resolution (spec §4.3). Non-negative; an error means the cells
// are not comparable (different resolution, or not connected on a
// shared parent within H3's internal limits).
func GridDistance(a, b Cell) (int, error) {
	d, err := a.idx.GridDistance(b.idx)
	if err != nil {
		return 0, fmt.Errorf("spatial: GridDistance(%s,%s): %w", a, b, err)
	}
	if d < 0 {
		d = -d
	}
	return d, nil
}

// GridDisk returns every cell within hex-distance k (inclusive) of
// origin, including origin itself.
func GridDisk(origin Cell, k int) ([]Cell, error) {
	if k < 0 {
		k = 0
	}
	cells, err := h3.GridDisk(origin.idx, k)
	if err != nil {
		return nil, fmt.Errorf("spatial: GridDisk(%s,%d): %w", origin, k, err)
	}
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		out = append(out, Cell{idx: c})
	}
	return out, nil
}

// GreatCircleKm returns the center-to-center great-circle distance
// between two cells, in kilometers (haversine formula — grounded on the
// same calculation used across the pack's geospatial services; H3 does
// not expose a physical-distance primitive since it is a grid library).
func GreatCircleKm(a, b Cell) float64 {
	lat1, lng1 := a.LatLng()
	lat2, lng2 := b.LatLng()
	return HaversineKm(lat1, lng1, lat2, lng2)
}

// HaversineKm computes the great-circle distance between two raw
// lat/lng points in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
