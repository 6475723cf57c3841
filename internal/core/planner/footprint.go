package planner

import (
	"fmt"
	"math"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// FootprintModel converts survey settings into the spacing, in meters,
// between adjacent scan lines after overlap is applied.
type FootprintModel interface {
	Name() string
	ViewDistance(s domain.SurveySettings) (float64, error)
}

// Footprint model names accepted by FootprintByName.
const (
	ModelLinear  = "linear"
	ModelAngular = "angular"
)

// FootprintByName returns the model registered under name.
func FootprintByName(name string) (FootprintModel, error) {
	switch name {
	case ModelLinear:
		return LinearFootprint{}, nil
	case ModelAngular, "":
		return AngularFootprint{}, nil
	default:
		return nil, fmt.Errorf("unknown footprint model %q", name)
	}
}

// LinearFootprint treats FieldOfView as a ground half-swath in meters:
//
//	spacing = FieldOfView * 2 * (1 - overlap/100)
//
// Altitude does not influence the spacing.
type LinearFootprint struct{}

func (LinearFootprint) Name() string { return ModelLinear }

func (LinearFootprint) ViewDistance(s domain.SurveySettings) (float64, error) {
	if err := validateSettings(s); err != nil {
		return 0, err
	}
	return s.FieldOfView * 2 * (1 - s.OverlapPercentage/100), nil
}

// AngularFootprint treats FieldOfView as the sensor's full angular field of
// view in degrees and projects it from Altitude onto flat ground:
//
//	swath   = 2 * Altitude * tan(FieldOfView/2)
//	spacing = swath * (1 - overlap/100)
type AngularFootprint struct{}

func (AngularFootprint) Name() string { return ModelAngular }

func (AngularFootprint) ViewDistance(s domain.SurveySettings) (float64, error) {
	if err := validateSettings(s); err != nil {
		return 0, err
	}
	if s.FieldOfView >= 180 {
		return 0, fmt.Errorf("%w: field of view %.2f° must be below 180°", domain.ErrInvalidFootprint, s.FieldOfView)
	}
	swath := 2 * s.Altitude * math.Tan(toRad(s.FieldOfView)/2)
	return swath * (1 - s.OverlapPercentage/100), nil
}

// ImageFootprintArea estimates the ground area of a single image as a disc of
// radius Altitude*tan(FieldOfView). It is reported alongside a plan and never
// used to size the grid.
func ImageFootprintArea(s domain.SurveySettings) float64 {
	if s.Altitude <= 0 || s.FieldOfView <= 0 || s.FieldOfView >= 90 {
		return 0
	}
	r := s.Altitude * math.Tan(toRad(s.FieldOfView))
	return math.Pi * r * r
}

func validateSettings(s domain.SurveySettings) error {
	switch {
	case !finite(s.Altitude) || s.Altitude <= 0:
		return fmt.Errorf("%w: altitude must be positive, got %v", domain.ErrInvalidFootprint, s.Altitude)
	case !finite(s.FieldOfView) || s.FieldOfView <= 0:
		return fmt.Errorf("%w: field of view must be positive, got %v", domain.ErrInvalidFootprint, s.FieldOfView)
	case !finite(s.OverlapPercentage) || s.OverlapPercentage < 0 || s.OverlapPercentage >= 100:
		return fmt.Errorf("%w: overlap must be in [0,100), got %v", domain.ErrInvalidFootprint, s.OverlapPercentage)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
