package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84), in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is finite and within the WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// BoundaryPolygon is an ordered, implicitly closed ring of survey boundary vertices.
// The last vertex connects back to the first. Self-intersection is not checked.
type BoundaryPolygon []GeoPoint

// Validate checks the polygon has at least three valid vertices.
func (b BoundaryPolygon) Validate() error {
	if len(b) < 3 {
		return ErrInvalidPolygon
	}
	for _, p := range b {
		if !p.Valid() {
			return ErrInvalidPolygon
		}
	}
	return nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// SouthWest returns the (MinLat, MinLng) corner.
func (b Bounds) SouthWest() GeoPoint { return GeoPoint{Lat: b.MinLat, Lng: b.MinLng} }
