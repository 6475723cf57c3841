package geospatial

import (
	"math"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// PolygonBounds returns the bounding box of the polygon's vertices.
// An empty polygon yields the zero Bounds.
func PolygonBounds(polygon domain.BoundaryPolygon) domain.Bounds {
	if len(polygon) == 0 {
		return domain.Bounds{}
	}
	b := domain.Bounds{
		MinLat: math.Inf(1), MinLng: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLng: math.Inf(-1),
	}
	for _, p := range polygon {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b
}

// PointInPolygon reports whether p lies inside the implicitly closed polygon,
// using even-odd ray casting with longitude as x and latitude as y.
//
// Points exactly on an edge or vertex count as inside.
func PointInPolygon(p domain.GeoPoint, polygon domain.BoundaryPolygon) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if onSegment(p, a, b) {
			return true
		}
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

// onSegment reports whether p lies on segment ab. Collinearity is exact;
// no tolerance is applied.
func onSegment(p, a, b domain.GeoPoint) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if cross != 0 {
		return false
	}
	return p.Lng >= math.Min(a.Lng, b.Lng) && p.Lng <= math.Max(a.Lng, b.Lng) &&
		p.Lat >= math.Min(a.Lat, b.Lat) && p.Lat <= math.Max(a.Lat, b.Lat)
}
