package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/skyscan/internal/adapters/postgres"
	"github.com/samirrijal/skyscan/internal/pkg/config"
	"github.com/samirrijal/skyscan/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("skyscan-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		err = db.Migrate(ctx)
	case "down":
		err = db.DropAll(ctx)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
	slog.Info("migration complete", "direction", os.Args[1])
}
