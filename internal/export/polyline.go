package export

import (
	"fmt"

	polyline "github.com/twpayne/go-polyline"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// Polyline encodes the route in Google's encoded polyline format (1e-5
// precision), as consumed by map SDKs.
func Polyline(route []domain.RoutePoint) string {
	coords := make([][]float64, len(route))
	for i, rp := range route {
		coords[i] = []float64{rp.Lat, rp.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline turns an encoded polyline back into points.
func DecodePolyline(encoded string) ([]domain.GeoPoint, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("polyline: %w", err)
	}
	points := make([]domain.GeoPoint, len(coords))
	for i, c := range coords {
		points[i] = domain.GeoPoint{Lat: c[0], Lng: c[1]}
	}
	return points, nil
}

// ParseBoundaryPolyline decodes an encoded polyline ring into a boundary. A
// repeated closing vertex is dropped.
func ParseBoundaryPolyline(encoded string) (domain.BoundaryPolygon, error) {
	points, err := DecodePolyline(encoded)
	if err != nil {
		return nil, err
	}
	if n := len(points); n > 3 && points[0] == points[n-1] {
		points = points[:n-1]
	}
	boundary := domain.BoundaryPolygon(points)
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	return boundary, nil
}
