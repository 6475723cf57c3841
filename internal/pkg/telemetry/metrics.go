package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP95  = "api.latency.p95"
	MetricPlanLatencyP95 = "planner.latency.p95"

	// Throughput
	MetricPlansPerSec = "planner.plans_per_second"

	// Data freshness
	MetricPositionAge = "telemetry.position_age_seconds"

	// Business
	MetricMissionsDispatched = "business.missions_dispatched"
	MetricMissionsAborted    = "business.missions_aborted"
)

// Span attribute keys shared by the service layer and adapters.
const (
	AttrMissionID      = "skyscan.mission_id"
	AttrDroneID        = "skyscan.drone_id"
	AttrBoundaryPoints = "skyscan.boundary_points"
	AttrFootprintModel = "skyscan.footprint_model"
	AttrWaypoints      = "skyscan.waypoints"
	AttrCacheHit       = "skyscan.cache_hit"
)
