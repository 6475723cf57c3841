package export

import (
	"bytes"
	"fmt"
	"strconv"

	kml "github.com/twpayne/go-kml"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// KML renders a mission as a KML document with the boundary polygon, the
// flight line at survey altitude and one placemark per waypoint.
func KML(name string, boundary domain.BoundaryPolygon, settings domain.SurveySettings, plan *domain.SurveyPlan) ([]byte, error) {
	children := []kml.Element{kml.Name(name)}

	if len(boundary) > 0 {
		ring := make([]kml.Coordinate, 0, len(boundary)+1)
		for _, p := range boundary {
			ring = append(ring, kml.Coordinate{Lon: p.Lng, Lat: p.Lat})
		}
		ring = append(ring, kml.Coordinate{Lon: boundary[0].Lng, Lat: boundary[0].Lat})

		children = append(children, kml.Placemark(
			kml.Name("Boundary"),
			kml.Polygon(
				kml.OuterBoundaryIs(
					kml.LinearRing(kml.Coordinates(ring...)),
				),
			),
		))
	}

	if plan != nil && len(plan.Route) > 0 {
		line := make([]kml.Coordinate, 0, len(plan.Route))
		for _, rp := range plan.Route {
			line = append(line, kml.Coordinate{Lon: rp.Lng, Lat: rp.Lat, Alt: settings.Altitude})
		}
		children = append(children, kml.Placemark(
			kml.Name("Flight path"),
			kml.Description(fmt.Sprintf("%d waypoints, %.0f m, %.0f s",
				plan.Metrics.WaypointCount, plan.Metrics.TotalDistance, plan.Metrics.EstimatedFlightTime)),
			kml.LineString(
				kml.AltitudeMode("relativeToGround"),
				kml.Coordinates(line...),
			),
		))

		for _, rp := range plan.Route {
			children = append(children, kml.Placemark(
				kml.Name(strconv.Itoa(rp.Order)),
				kml.Point(
					kml.AltitudeMode("relativeToGround"),
					kml.Coordinates(kml.Coordinate{Lon: rp.Lng, Lat: rp.Lat, Alt: settings.Altitude}),
				),
			))
		}
	}

	var buf bytes.Buffer
	if err := kml.KML(kml.Document(children...)).WriteIndent(&buf, "", "  "); err != nil {
		return nil, fmt.Errorf("kml: %w", err)
	}
	return buf.Bytes(), nil
}
