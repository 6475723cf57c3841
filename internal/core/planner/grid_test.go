package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

func TestBuildGrid_RejectsNonPositiveSpacing(t *testing.T) {
	b := domain.Bounds{MaxLat: 0.001, MaxLng: 0.001}

	for _, d := range []float64{0, -10} {
		_, err := BuildGrid(b, d, DefaultLimits())
		assert.ErrorIs(t, err, domain.ErrInvalidFootprint)
	}
}

func TestBuildGrid_AtLeastOneCell(t *testing.T) {
	// Zero-area box: a single sample at the corner.
	g, err := BuildGrid(domain.Bounds{MinLat: 10, MaxLat: 10, MinLng: 20, MaxLng: 20}, 30, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, 1, g.Rows)
	assert.Equal(t, 1, g.Cols)
	assert.Equal(t, domain.GeoPoint{Lat: 10, Lng: 20}, g.Sample(0, 0))
}

func TestBuildGrid_Limits(t *testing.T) {
	b := domain.Bounds{MinLat: 0, MaxLat: 0.1, MinLng: 0, MaxLng: 0.1}

	_, err := BuildGrid(b, 0.5, Limits{MaxGridCells: 10_000})
	assert.ErrorIs(t, err, domain.ErrGridTooLarge)

	_, err = BuildGrid(b, 50, Limits{MaxSpanMeters: 5_000})
	assert.ErrorIs(t, err, domain.ErrOutsideApproximation)

	polar := domain.Bounds{MinLat: 84, MaxLat: 84.01, MinLng: 0, MaxLng: 0.01}
	_, err = BuildGrid(polar, 50, DefaultLimits())
	assert.ErrorIs(t, err, domain.ErrOutsideApproximation)

	// Zero limits disable every check.
	g, err := BuildGrid(polar, 50, Limits{})
	require.NoError(t, err)
	assert.Positive(t, g.Cells())
}

func TestGridSample_DegreeLinear(t *testing.T) {
	g := domain.Grid{Rows: 4, Cols: 2, Bounds: domain.Bounds{MinLat: 1, MaxLat: 2, MinLng: 10, MaxLng: 12}}

	assert.Equal(t, domain.GeoPoint{Lat: 1, Lng: 10}, g.Sample(0, 0))
	assert.Equal(t, domain.GeoPoint{Lat: 1.5, Lng: 11}, g.Sample(2, 1))
	assert.Equal(t, domain.GeoPoint{Lat: 1.75, Lng: 10}, g.Sample(3, 0))
}
