package domain

// SurveySettings describes the sensor and altitude configuration of a survey.
// How FieldOfView is interpreted depends on the footprint model in use.
type SurveySettings struct {
	Altitude          float64 `json:"altitude"`           // meters above ground
	FieldOfView       float64 `json:"field_of_view"`      // degrees (angular) or meters (linear)
	OverlapPercentage float64 `json:"overlap_percentage"` // [0, 100)
}

// RoutePoint is a waypoint with its 0-based visitation index.
type RoutePoint struct {
	GeoPoint
	Order int `json:"order"`
}

// Grid is the row/column sampling lattice laid over a boundary's bounding box.
type Grid struct {
	Rows                  int     `json:"rows"`
	Cols                  int     `json:"cols"`
	EffectiveViewDistance float64 `json:"effective_view_distance"` // meters
	Bounds                Bounds  `json:"bounds"`
}

// Sample maps a (row, col) cell to a coordinate by linear fractional
// interpolation in degrees. Spacing is therefore only approximately
// equal in meters, and degrades with latitude and boundary size.
func (g Grid) Sample(row, col int) GeoPoint {
	return GeoPoint{
		Lat: g.Bounds.MinLat + (float64(row)/float64(g.Rows))*(g.Bounds.MaxLat-g.Bounds.MinLat),
		Lng: g.Bounds.MinLng + (float64(col)/float64(g.Cols))*(g.Bounds.MaxLng-g.Bounds.MinLng),
	}
}

// Cells returns the number of candidate samples in the grid.
func (g Grid) Cells() int { return g.Rows * g.Cols }

// PathMetrics summarizes an ordered route.
type PathMetrics struct {
	TotalDistance       float64 `json:"total_distance"`        // meters
	EstimatedFlightTime float64 `json:"estimated_flight_time"` // seconds
	WaypointCount       int     `json:"waypoint_count"`
	// TransitDistance is the leg from the start point to the first waypoint.
	// It is not part of TotalDistance.
	TransitDistance float64 `json:"transit_distance,omitempty"`
}

// Footprint records the coverage model used to size the grid.
type Footprint struct {
	Model string `json:"model"`
	// ImageArea is the per-image ground area estimate in m². Informational only.
	ImageArea float64 `json:"image_area"`
}

// SurveyPlan is the output of one planning invocation.
type SurveyPlan struct {
	Route      []RoutePoint `json:"route"`
	Metrics    PathMetrics  `json:"metrics"`
	Grid       Grid         `json:"grid"`
	Footprint  Footprint    `json:"footprint"`
	StartPoint *GeoPoint    `json:"start_point,omitempty"`
}

// Empty reports whether no grid sample fell inside the boundary.
func (p *SurveyPlan) Empty() bool { return p == nil || len(p.Route) == 0 }
