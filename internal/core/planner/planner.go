// Package planner computes area-coverage flight paths: a boustrophedon scan of
// a survey boundary sampled on a grid sized by the sensor footprint.
//
// Planning is pure and deterministic. A Planner holds only configuration and
// may be shared between goroutines.
package planner

import (
	"fmt"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/pkg/geospatial"
)

// DefaultCruiseSpeed is the assumed survey ground speed in m/s.
const DefaultCruiseSpeed = 10.0

// Planner turns a boundary and survey settings into an ordered route.
type Planner struct {
	footprint   FootprintModel
	limits      Limits
	cruiseSpeed float64
	workers     int
}

// Option configures a Planner.
type Option func(*Planner)

// WithFootprint sets the coverage model. Defaults to AngularFootprint.
func WithFootprint(m FootprintModel) Option {
	return func(p *Planner) { p.footprint = m }
}

// WithLimits replaces DefaultLimits.
func WithLimits(l Limits) Option {
	return func(p *Planner) { p.limits = l }
}

// WithCruiseSpeed sets the speed (m/s) used to estimate flight time.
func WithCruiseSpeed(mps float64) Option {
	return func(p *Planner) { p.cruiseSpeed = mps }
}

// WithWorkers sets how many goroutines filter grid rows. Values below 2 keep
// filtering on the calling goroutine.
func WithWorkers(n int) Option {
	return func(p *Planner) { p.workers = n }
}

// New creates a Planner.
func New(opts ...Option) *Planner {
	p := &Planner{
		footprint:   AngularFootprint{},
		limits:      DefaultLimits(),
		cruiseSpeed: DefaultCruiseSpeed,
		workers:     1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Footprint returns the configured coverage model.
func (p *Planner) Footprint() FootprintModel { return p.footprint }

// CruiseSpeed returns the speed used for flight time estimates, in m/s.
func (p *Planner) CruiseSpeed() float64 { return p.cruiseSpeed }

// Plan computes the coverage route over polygon.
//
// A boundary that contains no grid sample is not an error: the returned plan
// has an empty route and zero metrics. start, when non-nil, is only used to
// report the transit leg to the first waypoint.
func (p *Planner) Plan(polygon domain.BoundaryPolygon, settings domain.SurveySettings, start *domain.GeoPoint) (*domain.SurveyPlan, error) {
	if err := polygon.Validate(); err != nil {
		return nil, fmt.Errorf("plan: %d boundary points: %w", len(polygon), err)
	}
	if !finite(p.cruiseSpeed) || p.cruiseSpeed <= 0 {
		return nil, fmt.Errorf("plan: %w: %v m/s", domain.ErrInvalidCruiseSpeed, p.cruiseSpeed)
	}
	if start != nil && !start.Valid() {
		return nil, fmt.Errorf("plan: %w: %v out of range", domain.ErrInvalidStartPoint, *start)
	}

	viewDistance, err := p.footprint.ViewDistance(settings)
	if err != nil {
		return nil, fmt.Errorf("plan: %s footprint: %w", p.footprint.Name(), err)
	}

	grid, err := BuildGrid(geospatial.PolygonBounds(polygon), viewDistance, p.limits)
	if err != nil {
		return nil, fmt.Errorf("plan: build grid: %w", err)
	}

	route := Sweep(polygon, grid, p.workers)

	plan := &domain.SurveyPlan{
		Route:   route,
		Metrics: Measure(route, p.cruiseSpeed, start),
		Grid:    grid,
		Footprint: domain.Footprint{
			Model:     p.footprint.Name(),
			ImageArea: ImageFootprintArea(settings),
		},
	}
	if start != nil {
		s := *start
		plan.StartPoint = &s
	}
	return plan, nil
}
