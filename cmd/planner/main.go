// Command planner computes a coverage route offline, without the API's
// database, broker or cache.
//
//	planner --boundary field.geojson --altitude 60 --fov 84 --overlap 20 --format kml > route.kml
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/planner"
	"github.com/samirrijal/skyscan/internal/export"
	"github.com/samirrijal/skyscan/internal/pkg/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "planner:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	boundary  string
	name      string
	altitude  float64
	fov       float64
	overlap   float64
	footprint string
	speed     float64
	start     string
	format    string
	workers   int
	logLevel  string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var o options
	fs := pflag.NewFlagSet("planner", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.boundary, "boundary", "b", "-", "boundary file (GeoJSON or JSON [{lat,lng}]), - for stdin")
	fs.StringVarP(&o.name, "name", "n", "survey", "mission name used in KML output")
	fs.Float64VarP(&o.altitude, "altitude", "a", 0, "flight altitude in meters")
	fs.Float64Var(&o.fov, "fov", 0, "field of view (degrees for angular, meters for linear)")
	fs.Float64Var(&o.overlap, "overlap", 0, "overlap percentage between passes")
	fs.StringVar(&o.footprint, "footprint", planner.ModelAngular, "footprint model: angular or linear")
	fs.Float64Var(&o.speed, "speed", planner.DefaultCruiseSpeed, "cruise speed in m/s")
	fs.StringVar(&o.start, "start", "", "launch point as lat,lng")
	fs.StringVarP(&o.format, "format", "f", "json", "output format: json, geojson, kml or polyline")
	fs.IntVar(&o.workers, "workers", 1, "rows swept in parallel")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.New(stderr, o.logLevel, "text")

	data, err := readBoundary(o.boundary, stdin)
	if err != nil {
		return err
	}
	boundary, err := parseBoundary(data)
	if err != nil {
		return err
	}

	model, err := planner.FootprintByName(o.footprint)
	if err != nil {
		return err
	}
	var start *domain.GeoPoint
	if o.start != "" {
		start, err = parseLatLng(o.start)
		if err != nil {
			return err
		}
	}

	settings := domain.SurveySettings{Altitude: o.altitude, FieldOfView: o.fov, OverlapPercentage: o.overlap}
	p := planner.New(
		planner.WithFootprint(model),
		planner.WithCruiseSpeed(o.speed),
		planner.WithWorkers(o.workers),
	)
	plan, err := p.Plan(boundary, settings, start)
	if err != nil {
		return err
	}
	logger.Info("route planned",
		"waypoints", plan.Metrics.WaypointCount,
		"distance_m", plan.Metrics.TotalDistance,
		"flight_time_s", plan.Metrics.EstimatedFlightTime,
	)

	var out []byte
	switch o.format {
	case "json":
		out, err = json.MarshalIndent(plan, "", "  ")
	case "geojson":
		out, err = export.GeoJSON(boundary, plan)
	case "kml":
		out, err = export.KML(o.name, boundary, settings, plan)
	case "polyline":
		out = []byte(export.Polyline(plan.Route))
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
	if err != nil {
		return err
	}
	if _, err := stdout.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(stdout, "\n")
	return err
}

func readBoundary(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// parseBoundary accepts a JSON array of {lat,lng} vertices or any GeoJSON
// object holding a polygon.
func parseBoundary(data []byte) (domain.BoundaryPolygon, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var b domain.BoundaryPolygon
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, fmt.Errorf("decode boundary: %w", err)
		}
		return b, b.Validate()
	}
	return export.ParseBoundary(trimmed)
}

func parseLatLng(s string) (*domain.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("start point %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("start latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("start longitude: %w", err)
	}
	p := &domain.GeoPoint{Lat: lat, Lng: lng}
	if !p.Valid() {
		return nil, fmt.Errorf("start point %q out of range", s)
	}
	return p, nil
}
