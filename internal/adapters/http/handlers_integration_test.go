//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	handler "github.com/samirrijal/skyscan/internal/adapters/http"
	"github.com/samirrijal/skyscan/internal/adapters/postgres"
	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/planner"
	"github.com/samirrijal/skyscan/internal/core/usecases"
	"github.com/samirrijal/skyscan/internal/pkg/config"
)

// setupTestDB connects to the test database and applies migrations.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("skyscan-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// setupTestDeps creates dependencies with the real mission repo, no cache and
// no flight execution.
func setupTestDeps(t *testing.T, db *postgres.DB) (*handler.Dependencies, *mockPublisher) {
	pub := &mockPublisher{}
	p := planner.New(planner.WithFootprint(planner.LinearFootprint{}))
	return &handler.Dependencies{
		Survey: usecases.NewSurveyService(p, postgres.NewMissionRepo(db), pub, nil, nil, 0),
		DB:     db,
	}, pub
}

func TestMissionLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	deps, pub := setupTestDeps(t, db)
	app := setupApp(deps)

	m := createMission(t, app)
	defer func() { _ = postgres.NewMissionRepo(db).Delete(context.Background(), m.ID) }()

	status, body := jsonRequest("GET", "/v1/missions/"+m.ID, nil).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var got domain.Mission
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Plan.Route) != 9 || len(got.Boundary) != 4 {
		t.Errorf("stored mission lost data: %+v", got)
	}

	status, _ = jsonRequest("POST", "/v1/missions/"+m.ID+"/dispatch", map[string]string{"drone_id": "drone-7"}).do(t, app)
	if status != 202 {
		t.Fatalf("expected 202, got %d", status)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected one publication, got %v", pub.published)
	}

	status, body = jsonRequest("GET", "/v1/missions/"+m.ID, nil).do(t, app)
	json.Unmarshal(body, &got)
	if got.Status != domain.MissionDispatched || got.DroneID != "drone-7" || got.DispatchedAt == nil {
		t.Errorf("expected dispatched mission, got %+v", got)
	}

	status, _ = jsonRequest("POST", "/v1/missions/"+m.ID+"/dispatch", map[string]string{"drone_id": "drone-8"}).do(t, app)
	if status != 409 {
		t.Errorf("expected 409 on second dispatch, got %d", status)
	}
}

func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	deps, _ := setupTestDeps(t, db)
	app := setupApp(deps)

	status, body := jsonRequest("GET", "/v1/ready", nil).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
}
