package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/skyscan/internal/adapters/nats"
	"github.com/samirrijal/skyscan/internal/adapters/postgres"
	"github.com/samirrijal/skyscan/internal/core/usecases"
	"github.com/samirrijal/skyscan/internal/pkg/config"
	"github.com/samirrijal/skyscan/internal/pkg/logging"
	"github.com/samirrijal/skyscan/internal/workflows"
)

func main() {
	cfg, err := config.Load("skyscan-dispatcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	// Planning is not used by the worker, so no planner or cache is wired.
	survey := usecases.NewSurveyService(nil, postgres.NewMissionRepo(db), pub, nil, nil, 0)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.MissionDispatchWorkflow)
	w.RegisterActivity(&workflows.DispatchActivities{Missions: survey})

	slog.Info("dispatch worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
