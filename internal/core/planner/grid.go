package planner

import (
	"fmt"
	"math"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/pkg/geospatial"
)

// Limits bounds the grids the planner is willing to build. A zero field
// disables that check.
type Limits struct {
	// MaxGridCells caps rows*cols.
	MaxGridCells int
	// MaxAbsLatitude rejects boundaries reaching closer to a pole than this.
	MaxAbsLatitude float64
	// MaxSpanMeters rejects boundaries whose bounding-box edges are longer
	// than this, where degree-linear sampling drifts from equal spacing.
	MaxSpanMeters float64
}

// DefaultLimits keeps interpolation error small for typical drone surveys.
func DefaultLimits() Limits {
	return Limits{
		MaxGridCells:   1_000_000,
		MaxAbsLatitude: 80,
		MaxSpanMeters:  50_000,
	}
}

// BuildGrid sizes a sampling grid over bounds so adjacent rows and columns are
// roughly viewDistance meters apart.
func BuildGrid(bounds domain.Bounds, viewDistance float64, limits Limits) (domain.Grid, error) {
	if !finite(viewDistance) || viewDistance <= 0 {
		return domain.Grid{}, fmt.Errorf("%w: effective view distance must be positive, got %v",
			domain.ErrInvalidFootprint, viewDistance)
	}

	if limits.MaxAbsLatitude > 0 &&
		(math.Abs(bounds.MinLat) > limits.MaxAbsLatitude || math.Abs(bounds.MaxLat) > limits.MaxAbsLatitude) {
		return domain.Grid{}, fmt.Errorf("%w: latitude beyond ±%.1f°", domain.ErrOutsideApproximation, limits.MaxAbsLatitude)
	}

	sw := bounds.SouthWest()
	latDistance := geospatial.Distance(sw, domain.GeoPoint{Lat: bounds.MaxLat, Lng: bounds.MinLng})
	lngDistance := geospatial.Distance(sw, domain.GeoPoint{Lat: bounds.MinLat, Lng: bounds.MaxLng})

	if limits.MaxSpanMeters > 0 && (latDistance > limits.MaxSpanMeters || lngDistance > limits.MaxSpanMeters) {
		return domain.Grid{}, fmt.Errorf("%w: boundary spans %.0fm x %.0fm, limit %.0fm",
			domain.ErrOutsideApproximation, latDistance, lngDistance, limits.MaxSpanMeters)
	}

	rows := cellCount(latDistance, viewDistance)
	cols := cellCount(lngDistance, viewDistance)

	if limits.MaxGridCells > 0 && float64(rows)*float64(cols) > float64(limits.MaxGridCells) {
		return domain.Grid{}, fmt.Errorf("%w: %d x %d cells exceeds %d",
			domain.ErrGridTooLarge, rows, cols, limits.MaxGridCells)
	}

	return domain.Grid{
		Rows:                  rows,
		Cols:                  cols,
		EffectiveViewDistance: viewDistance,
		Bounds:                bounds,
	}, nil
}

func cellCount(span, step float64) int {
	n := math.Ceil(span / step)
	if n < 1 {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}
