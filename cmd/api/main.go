package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/skyscan/internal/adapters/http"
	natsadapter "github.com/samirrijal/skyscan/internal/adapters/nats"
	"github.com/samirrijal/skyscan/internal/adapters/postgres"
	"github.com/samirrijal/skyscan/internal/adapters/valkey"
	"github.com/samirrijal/skyscan/internal/core/planner"
	"github.com/samirrijal/skyscan/internal/core/ports"
	"github.com/samirrijal/skyscan/internal/core/usecases"
	"github.com/samirrijal/skyscan/internal/pkg/config"
	"github.com/samirrijal/skyscan/internal/pkg/logging"
	"github.com/samirrijal/skyscan/internal/pkg/metrics"
	"github.com/samirrijal/skyscan/internal/pkg/telemetry"
	"github.com/samirrijal/skyscan/internal/workflows"
)

func main() {
	cfg, err := config.Load("skyscan-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Planner
	footprint, err := planner.FootprintByName(cfg.Planner.Footprint)
	if err != nil {
		log.Fatalf("planner: %v", err)
	}
	p := planner.New(
		planner.WithFootprint(footprint),
		planner.WithCruiseSpeed(cfg.Planner.CruiseSpeed),
		planner.WithWorkers(cfg.Planner.Workers),
		planner.WithLimits(planner.Limits{
			MaxGridCells:   cfg.Planner.MaxGridCells,
			MaxAbsLatitude: cfg.Planner.MaxAbsLatitude,
			MaxSpanMeters:  cfg.Planner.MaxSpanMeters,
		}),
	)

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, "skyscan:")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var publisher ports.MissionPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Telemetry tracking
	positionRepo := postgres.NewPositionRepo(db)
	tracker := usecases.NewTelemetryService(time.Duration(cfg.Telemetry.PositionMaxAge) * time.Second).
		WithStore(positionRepo)
	// Each instance keeps its own latest-position view, so consumers are per host.
	host, _ := os.Hostname()
	if sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "position-tracker-"+strings.ReplaceAll(host, ".", "-")); err != nil {
		slog.Warn("telemetry subscription unavailable", "error", err)
	} else {
		defer sub.Close()
		if err := tracker.Start(ctx, sub); err != nil {
			slog.Warn("telemetry subscribe failed", "error", err)
		}
	}

	missionRepo := postgres.NewMissionRepo(db)
	surveySvc := usecases.NewSurveyService(p, missionRepo, publisher, tracker, cacheSvc, cfg.Planner.CacheTTL)

	deps := &http.Dependencies{
		Survey:    surveySvc,
		Telemetry: tracker,
		DB:        db,
		Cache:     cache,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Temporal dispatch
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			slog.Warn("temporal unavailable, dispatching inline", "error", err)
		} else {
			defer tc.Close()
			deps.Dispatcher = workflows.NewTemporalDispatcher(tc, cfg.Temporal.TaskQueue)
		}
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // boundaries can be large GeoJSON
		AppName:      "SkyScan API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
