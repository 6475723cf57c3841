package planner

import (
	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/pkg/geospatial"
)

// Measure sums the leg lengths of route and converts them to a flight time at
// cruiseSpeed (m/s). When start is non-nil the leg from start to the first
// waypoint is reported separately as TransitDistance.
func Measure(route []domain.RoutePoint, cruiseSpeed float64, start *domain.GeoPoint) domain.PathMetrics {
	m := domain.PathMetrics{WaypointCount: len(route)}

	for i := 0; i+1 < len(route); i++ {
		m.TotalDistance += geospatial.Distance(route[i].GeoPoint, route[i+1].GeoPoint)
	}
	if cruiseSpeed > 0 {
		m.EstimatedFlightTime = m.TotalDistance / cruiseSpeed
	}
	if start != nil && len(route) > 0 {
		m.TransitDistance = geospatial.Distance(*start, route[0].GeoPoint)
	}
	return m
}
