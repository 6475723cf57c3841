package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// Application error types carried across the Temporal boundary.
const (
	ErrTypeNotFound     = "MissionNotFound"
	ErrTypeMissionState = "MissionState"
)

// MissionService is the part of the survey service the activities drive.
type MissionService interface {
	PublishMission(ctx context.Context, missionID, droneID string) error
	MarkDispatched(ctx context.Context, missionID, droneID string) error
	CompensateDispatch(ctx context.Context, missionID, droneID string) error
}

// DispatchActivities holds the activity implementations for the dispatch workflow.
type DispatchActivities struct {
	Missions MissionService
}

// PublishMission sends the mission to the drone.
func (a *DispatchActivities) PublishMission(ctx context.Context, missionID, droneID string) error {
	activity.GetLogger(ctx).Info("publishing mission", "missionID", missionID, "droneID", droneID)
	return classify(a.Missions.PublishMission(ctx, missionID, droneID))
}

// MarkDispatched records the dispatch in mission storage.
func (a *DispatchActivities) MarkDispatched(ctx context.Context, missionID, droneID string) error {
	return classify(a.Missions.MarkDispatched(ctx, missionID, droneID))
}

// CompensateDispatch recalls the drone unless the mission is already
// recorded as dispatched to it (saga compensation).
func (a *DispatchActivities) CompensateDispatch(ctx context.Context, missionID, droneID string) error {
	activity.GetLogger(ctx).Warn("compensating dispatch", "missionID", missionID, "droneID", droneID)
	return a.Missions.CompensateDispatch(ctx, missionID, droneID)
}

// classify turns caller errors into non-retryable application errors so a
// mission in the wrong state is not retried.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case errors.Is(err, domain.ErrMissionState):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMissionState, err)
	}
	return err
}
