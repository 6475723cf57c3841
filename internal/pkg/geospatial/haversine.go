package geospatial

import (
	"math"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// EarthRadiusMeters is the mean Earth radius used for all great-circle distances.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Distance is Haversine over domain points.
func Distance(a, b domain.GeoPoint) float64 {
	if a == b {
		return 0
	}
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return domain.Bounds{
		MinLat: lat - latDelta,
		MinLng: lon - lonDelta,
		MaxLat: lat + latDelta,
		MaxLng: lon + lonDelta,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
