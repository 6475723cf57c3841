// Package export renders survey plans in interchange formats understood by
// GIS tools and ground-control software, and parses survey boundaries back
// out of GeoJSON.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// GeoJSON renders the boundary, the flight line and each waypoint as a
// FeatureCollection. Waypoints carry their visitation order.
func GeoJSON(boundary domain.BoundaryPolygon, plan *domain.SurveyPlan) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	if len(boundary) > 0 {
		f := geojson.NewFeature(boundaryPolygon(boundary))
		f.Properties["kind"] = "boundary"
		fc.Append(f)
	}

	if plan != nil && len(plan.Route) > 0 {
		line := make(orb.LineString, 0, len(plan.Route))
		for _, rp := range plan.Route {
			line = append(line, toOrb(rp.GeoPoint))
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["total_distance"] = plan.Metrics.TotalDistance
		f.Properties["estimated_flight_time"] = plan.Metrics.EstimatedFlightTime
		f.Properties["waypoint_count"] = plan.Metrics.WaypointCount
		fc.Append(f)

		for _, rp := range plan.Route {
			wp := geojson.NewFeature(toOrb(rp.GeoPoint))
			wp.Properties["kind"] = "waypoint"
			wp.Properties["order"] = rp.Order
			fc.Append(wp)
		}
	}

	if plan != nil && plan.StartPoint != nil {
		f := geojson.NewFeature(toOrb(*plan.StartPoint))
		f.Properties["kind"] = "start"
		fc.Append(f)
	}

	return fc.MarshalJSON()
}

// ErrUnsupportedGeometry is returned when a GeoJSON document holds no polygon.
var ErrUnsupportedGeometry = errors.New("geojson: expected a Polygon or MultiPolygon")

// ParseBoundary reads a survey boundary from a GeoJSON Geometry, Feature or
// FeatureCollection. The outer ring of the first polygon found is used; holes
// are ignored. A closing vertex equal to the first is dropped.
func ParseBoundary(data []byte) (domain.BoundaryPolygon, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}

	var geom orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		for _, f := range fc.Features {
			if isPolygonal(f.Geometry) {
				geom = f.Geometry
				break
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		geom = f.Geometry
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		geom = g.Geometry()
	}

	var ring orb.Ring
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) > 0 {
			ring = g[0]
		}
	case orb.MultiPolygon:
		if len(g) > 0 && len(g[0]) > 0 {
			ring = g[0][0]
		}
	default:
		return nil, ErrUnsupportedGeometry
	}

	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}

	boundary := make(domain.BoundaryPolygon, 0, len(ring))
	for _, p := range ring {
		boundary = append(boundary, domain.GeoPoint{Lat: p.Lat(), Lng: p.Lon()})
	}
	if err := boundary.Validate(); err != nil {
		return nil, fmt.Errorf("geojson: %d ring vertices: %w", len(boundary), err)
	}
	return boundary, nil
}

func isPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	}
	return false
}

func boundaryPolygon(b domain.BoundaryPolygon) orb.Polygon {
	ring := make(orb.Ring, 0, len(b)+1)
	for _, p := range b {
		ring = append(ring, toOrb(p))
	}
	ring = append(ring, toOrb(b[0]))
	return orb.Polygon{ring}
}

func toOrb(p domain.GeoPoint) orb.Point { return orb.Point{p.Lng, p.Lat} }
