package planner

import (
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/pkg/geospatial"
)

// Sweep orders the grid samples that fall inside polygon into a boustrophedon
// route: even rows run west to east, odd rows east to west.
//
// Row filtering may run on up to workers goroutines. Order indices are always
// assigned afterwards by a sequential merge in ascending row order, so the
// result does not depend on workers.
func Sweep(polygon domain.BoundaryPolygon, grid domain.Grid, workers int) []domain.RoutePoint {
	rows := make([][]domain.GeoPoint, grid.Rows)

	if workers <= 1 {
		for r := range rows {
			rows[r] = sweepRow(polygon, grid, r)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for r := range rows {
			g.Go(func() error {
				rows[r] = sweepRow(polygon, grid, r)
				return nil
			})
		}
		_ = g.Wait()
	}

	return mergeRows(rows)
}

// sweepRow returns the interior samples of one row in travel direction.
func sweepRow(polygon domain.BoundaryPolygon, grid domain.Grid, row int) []domain.GeoPoint {
	var kept []domain.GeoPoint
	for col := 0; col < grid.Cols; col++ {
		p := grid.Sample(row, col)
		if geospatial.PointInPolygon(p, polygon) {
			kept = append(kept, p)
		}
	}
	if row%2 == 1 {
		slices.Reverse(kept)
	}
	return kept
}

// mergeRows flattens rows in index order, numbering waypoints as it goes.
func mergeRows(rows [][]domain.GeoPoint) []domain.RoutePoint {
	n := 0
	for _, r := range rows {
		n += len(r)
	}

	route := make([]domain.RoutePoint, 0, n)
	order := 0
	for _, r := range rows {
		for _, p := range r {
			route = append(route, domain.RoutePoint{GeoPoint: p, Order: order})
			order++
		}
	}
	return route
}
