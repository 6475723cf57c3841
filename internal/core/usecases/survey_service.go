package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/planner"
	"github.com/samirrijal/skyscan/internal/core/ports"
	"github.com/samirrijal/skyscan/internal/pkg/logging"
	"github.com/samirrijal/skyscan/internal/pkg/metrics"
	"github.com/samirrijal/skyscan/internal/pkg/telemetry"
)

var tracer = otel.Tracer("github.com/samirrijal/skyscan/internal/core/usecases")

// PlanRequest is the input of a planning call.
type PlanRequest struct {
	Boundary   domain.BoundaryPolygon `json:"boundary"`
	Settings   domain.SurveySettings  `json:"settings"`
	StartPoint *domain.GeoPoint       `json:"start_point,omitempty"`
	// DroneID, when set and StartPoint is nil, resolves the start point from
	// the drone's latest telemetry.
	DroneID string `json:"drone_id,omitempty"`
}

// SurveyService plans coverage routes and manages missions built from them.
type SurveyService struct {
	planner   *planner.Planner
	missions  ports.MissionRepository
	publisher ports.MissionPublisher
	positions ports.PositionSource
	cache     ports.CacheService
	cacheTTL  int
}

// NewSurveyService creates a new SurveyService. missions, publisher,
// positions, and cache may be nil; operations that need them then fail.
func NewSurveyService(
	p *planner.Planner,
	missions ports.MissionRepository,
	publisher ports.MissionPublisher,
	positions ports.PositionSource,
	cache ports.CacheService,
	cacheTTLSeconds int,
) *SurveyService {
	if p == nil {
		p = planner.New()
	}
	return &SurveyService{
		planner:   p,
		missions:  missions,
		publisher: publisher,
		positions: positions,
		cache:     cache,
		cacheTTL:  cacheTTLSeconds,
	}
}

// Plan computes a coverage route. Results are cached by input.
func (s *SurveyService) Plan(ctx context.Context, req PlanRequest) (*domain.SurveyPlan, error) {
	ctx, span := tracer.Start(ctx, "SurveyService.Plan")
	defer span.End()

	start := s.resolveStart(req)
	span.SetAttributes(
		attribute.Int(telemetry.AttrBoundaryPoints, len(req.Boundary)),
		attribute.String(telemetry.AttrFootprintModel, s.planner.Footprint().Name()),
	)

	cacheKey := s.planCacheKey(req, start)
	if s.cache != nil && cacheKey != "" {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var plan domain.SurveyPlan
			if err := json.Unmarshal(data, &plan); err == nil {
				metrics.CacheHits.WithLabelValues("plan").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return &plan, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("plan").Inc()
	}

	began := time.Now()
	plan, err := s.planner.Plan(req.Boundary, req.Settings, start)
	metrics.PlanDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		metrics.PlansTotal.WithLabelValues(planOutcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if plan.Empty() {
		metrics.PlansTotal.WithLabelValues("empty").Inc()
		slog.InfoContext(ctx, "boundary contains no grid samples",
			"rows", plan.Grid.Rows, "cols", plan.Grid.Cols)
	} else {
		metrics.PlansTotal.WithLabelValues("ok").Inc()
	}
	metrics.PlanWaypoints.Observe(float64(len(plan.Route)))
	span.SetAttributes(
		attribute.Int("grid.rows", plan.Grid.Rows),
		attribute.Int("grid.cols", plan.Grid.Cols),
		attribute.Int(telemetry.AttrWaypoints, len(plan.Route)),
	)

	if s.cache != nil && cacheKey != "" {
		if data, err := json.Marshal(plan); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return plan, nil
}

// CreateMission plans a route and stores it as a new mission.
func (s *SurveyService) CreateMission(ctx context.Context, name string, req PlanRequest) (*domain.Mission, error) {
	if s.missions == nil {
		return nil, errors.New("mission storage not configured")
	}

	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	m := &domain.Mission{
		ID:        uuid.NewString(),
		Name:      name,
		Boundary:  req.Boundary,
		Settings:  req.Settings,
		Plan:      *plan,
		Status:    domain.MissionPlanned,
		DroneID:   req.DroneID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.missions.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create mission: %w", err)
	}

	logging.Mission(slog.Default(), m.ID).InfoContext(ctx, "mission planned", "waypoints", len(plan.Route),
		"distance_m", plan.Metrics.TotalDistance)
	return m, nil
}

// GetMission returns a stored mission.
func (s *SurveyService) GetMission(ctx context.Context, id string) (*domain.Mission, error) {
	if s.missions == nil {
		return nil, errors.New("mission storage not configured")
	}
	return s.missions.GetByID(ctx, id)
}

// ListMissions returns a page of missions, newest first, and the total count.
func (s *SurveyService) ListMissions(ctx context.Context, offset, limit int) ([]domain.Mission, int, error) {
	if s.missions == nil {
		return nil, 0, errors.New("mission storage not configured")
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.missions.List(ctx, offset, limit)
}

// DeleteMission removes a mission that is not currently dispatched.
func (s *SurveyService) DeleteMission(ctx context.Context, id string) error {
	m, err := s.GetMission(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == domain.MissionDispatched {
		return fmt.Errorf("%w: mission %s is in flight", domain.ErrMissionState, m.ID)
	}
	return s.missions.Delete(ctx, id)
}

// Dispatch publishes a planned mission to the flight-execution layer and
// marks it dispatched. If the status update fails after publishing, the
// dispatch is compensated so the drone does not fly an untracked mission.
func (s *SurveyService) Dispatch(ctx context.Context, missionID, droneID string) error {
	ctx, span := tracer.Start(ctx, "SurveyService.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrMissionID, missionID),
		attribute.String(telemetry.AttrDroneID, droneID),
	)

	if err := s.PublishMission(ctx, missionID, droneID); err != nil {
		metrics.MissionsDispatched.WithLabelValues("rejected").Inc()
		span.RecordError(err)
		return err
	}
	if err := s.MarkDispatched(ctx, missionID, droneID); err != nil {
		metrics.MissionsDispatched.WithLabelValues("aborted").Inc()
		if compErr := s.CompensateDispatch(ctx, missionID, droneID); compErr != nil {
			logging.Mission(slog.Default(), missionID).ErrorContext(ctx, "abort after failed dispatch", "drone_id", droneID, "error", compErr)
		}
		span.RecordError(err)
		return err
	}
	metrics.MissionsDispatched.WithLabelValues("ok").Inc()
	return nil
}

// CompensateDispatch undoes a publish whose status update failed. When the
// stored mission already records a dispatch to droneID, a concurrent
// dispatch of the same mission won and the drone is flying a tracked
// mission, so no abort is sent.
func (s *SurveyService) CompensateDispatch(ctx context.Context, missionID, droneID string) error {
	logger := logging.Mission(slog.Default(), missionID)
	if m, err := s.GetMission(ctx, missionID); err == nil &&
		m.Status == domain.MissionDispatched && m.DroneID == droneID {
		logger.InfoContext(ctx, "mission already dispatched to drone, skipping abort", "drone_id", droneID)
		return nil
	}
	logger.WarnContext(ctx, "aborting untracked dispatch", "drone_id", droneID)
	return s.PublishAbort(ctx, missionID, droneID)
}

// PublishMission sends a planned mission to droneID without changing its status.
func (s *SurveyService) PublishMission(ctx context.Context, missionID, droneID string) error {
	if s.publisher == nil {
		return errors.New("flight execution not configured")
	}
	if err := domain.ValidateDroneID(droneID); err != nil {
		return err
	}

	m, err := s.GetMission(ctx, missionID)
	if err != nil {
		return err
	}
	if m.Status != domain.MissionPlanned {
		return fmt.Errorf("%w: mission %s is %s", domain.ErrMissionState, m.ID, m.Status)
	}
	if m.Plan.Empty() {
		return fmt.Errorf("%w: mission %s has no waypoints", domain.ErrMissionState, m.ID)
	}

	m.DroneID = droneID
	if err := s.publisher.PublishMission(ctx, m); err != nil {
		return fmt.Errorf("publish mission %s: %w", m.ID, err)
	}
	return nil
}

// MarkDispatched records that missionID was sent to droneID.
func (s *SurveyService) MarkDispatched(ctx context.Context, missionID, droneID string) error {
	if s.missions == nil {
		return errors.New("mission storage not configured")
	}
	if err := s.missions.UpdateStatus(ctx, missionID, domain.MissionPlanned, domain.MissionDispatched, droneID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark mission %s dispatched: %w", missionID, err)
	}
	logging.Mission(slog.Default(), missionID).InfoContext(ctx, "mission dispatched", "drone_id", droneID)
	return nil
}

// Abort tells the drone flying a dispatched mission to stop and marks it aborted.
func (s *SurveyService) Abort(ctx context.Context, missionID string) error {
	m, err := s.GetMission(ctx, missionID)
	if err != nil {
		return err
	}
	if m.Status != domain.MissionDispatched {
		return fmt.Errorf("%w: mission %s is %s", domain.ErrMissionState, m.ID, m.Status)
	}
	if err := s.PublishAbort(ctx, m.ID, m.DroneID); err != nil {
		return err
	}
	return s.missions.UpdateStatus(ctx, m.ID, domain.MissionDispatched, domain.MissionAborted, m.DroneID, time.Now().UTC())
}

// PublishAbort tells droneID to stop flying missionID. The stored status is
// left unchanged.
func (s *SurveyService) PublishAbort(ctx context.Context, missionID, droneID string) error {
	if s.publisher == nil {
		return errors.New("flight execution not configured")
	}
	return s.publisher.PublishAbort(ctx, missionID, droneID)
}

func (s *SurveyService) resolveStart(req PlanRequest) *domain.GeoPoint {
	if req.StartPoint != nil {
		return req.StartPoint
	}
	if req.DroneID == "" || s.positions == nil {
		return nil
	}
	if pos, ok := s.positions.Latest(req.DroneID); ok {
		loc := pos.Location
		return &loc
	}
	return nil
}

// planCacheKey hashes every input that influences the plan.
func (s *SurveyService) planCacheKey(req PlanRequest, start *domain.GeoPoint) string {
	data, err := json.Marshal(struct {
		Model    string                 `json:"m"`
		Speed    float64                `json:"v"`
		Boundary domain.BoundaryPolygon `json:"b"`
		Settings domain.SurveySettings  `json:"s"`
		Start    *domain.GeoPoint       `json:"p,omitempty"`
	}{s.planner.Footprint().Name(), s.planner.CruiseSpeed(), req.Boundary, req.Settings, start})
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return "plans:" + hex.EncodeToString(h[:16])
}

func planOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPolygon):
		return "invalid_polygon"
	case errors.Is(err, domain.ErrInvalidFootprint):
		return "invalid_footprint"
	case errors.Is(err, domain.ErrGridTooLarge), errors.Is(err, domain.ErrOutsideApproximation):
		return "rejected"
	default:
		return "error"
	}
}
