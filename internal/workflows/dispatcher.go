package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// TemporalDispatcher implements ports.Dispatcher by running
// MissionDispatchWorkflow and waiting for its result.
type TemporalDispatcher struct {
	client    client.Client
	taskQueue string
}

func NewTemporalDispatcher(c client.Client, taskQueue string) *TemporalDispatcher {
	return &TemporalDispatcher{client: c, taskQueue: taskQueue}
}

// Dispatch starts one workflow per mission. A second dispatch of the same
// mission while the first runs joins the running workflow.
func (d *TemporalDispatcher) Dispatch(ctx context.Context, missionID, droneID string) error {
	run, err := d.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "mission-dispatch-" + missionID,
		TaskQueue: d.taskQueue,
	}, MissionDispatchWorkflow, MissionDispatchInput{MissionID: missionID, DroneID: droneID})
	if err != nil {
		return fmt.Errorf("start dispatch workflow: %w", err)
	}
	return domainError(run.Get(ctx, nil))
}

// domainError restores the domain sentinel lost when an activity error
// crosses the Temporal boundary.
func domainError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case ErrTypeNotFound:
			return fmt.Errorf("%s: %w", appErr.Error(), domain.ErrNotFound)
		case ErrTypeMissionState:
			return fmt.Errorf("%s: %w", appErr.Error(), domain.ErrMissionState)
		}
	}
	return err
}
