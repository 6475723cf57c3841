package postgres

import (
	"testing"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

func TestPolygonWKT(t *testing.T) {
	b := domain.BoundaryPolygon{
		{Lat: 43.26, Lng: -2.94},
		{Lat: 43.26, Lng: -2.93},
		{Lat: 43.27, Lng: -2.93},
	}

	got := polygonWKT(b)
	want := "POLYGON((-2.94 43.26, -2.93 43.26, -2.93 43.27, -2.94 43.26))"
	if got != want {
		t.Errorf("polygonWKT = %q, want %q", got, want)
	}
	if len(b) != 3 {
		t.Errorf("input polygon was modified: %v", b)
	}
}

func TestPolygonWKT_Empty(t *testing.T) {
	if got := polygonWKT(nil); got != "POLYGON EMPTY" {
		t.Errorf("polygonWKT(nil) = %q", got)
	}
}

func TestNilIfEmpty(t *testing.T) {
	if nilIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	if nilIfEmpty("drone-1") != "drone-1" {
		t.Error("expected value to pass through")
	}
}
