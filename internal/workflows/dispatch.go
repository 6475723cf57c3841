package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// MissionDispatchInput is the input for the dispatch workflow.
type MissionDispatchInput struct {
	MissionID string
	DroneID   string
}

// MissionDispatchWorkflow publishes a planned mission to a drone and marks it
// dispatched. If the status update fails after publishing, the dispatch is
// compensated (saga compensation).
func MissionDispatchWorkflow(ctx workflow.Context, input MissionDispatchInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting mission dispatch", "missionID", input.MissionID, "droneID", input.DroneID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Publish to flight execution
	err := workflow.ExecuteActivity(ctx, "PublishMission", input.MissionID, input.DroneID).Get(ctx, nil)
	if err != nil {
		return err
	}

	// Step 2: Record the dispatch
	err = workflow.ExecuteActivity(ctx, "MarkDispatched", input.MissionID, input.DroneID).Get(ctx, nil)
	if err != nil {
		logger.Warn("mark dispatched failed, compensating", "error", err)
		// Compensate: recall the drone
		if abortErr := workflow.ExecuteActivity(ctx, "CompensateDispatch", input.MissionID, input.DroneID).Get(ctx, nil); abortErr != nil {
			logger.Error("abort failed", "error", abortErr)
		}
		return err
	}

	logger.Info("Mission dispatched", "missionID", input.MissionID)
	return nil
}
