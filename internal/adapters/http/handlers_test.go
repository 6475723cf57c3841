package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/skyscan/internal/adapters/http"
	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/planner"
	"github.com/samirrijal/skyscan/internal/core/usecases"
	"github.com/samirrijal/skyscan/internal/export"
)

// ---- Mocks ----

type mockMissionRepo struct {
	missions map[string]*domain.Mission
	order    []string
	createFn func(ctx context.Context, m *domain.Mission) error
	updateFn func(ctx context.Context, id string, from, to domain.MissionStatus, droneID string, at time.Time) error
}

func newMissionRepo() *mockMissionRepo {
	return &mockMissionRepo{missions: make(map[string]*domain.Mission)}
}

func (r *mockMissionRepo) Create(ctx context.Context, m *domain.Mission) error {
	if r.createFn != nil {
		if err := r.createFn(ctx, m); err != nil {
			return err
		}
	}
	cp := *m
	r.missions[m.ID] = &cp
	r.order = append(r.order, m.ID)
	return nil
}

func (r *mockMissionRepo) GetByID(ctx context.Context, id string) (*domain.Mission, error) {
	m, ok := r.missions[id]
	if !ok {
		return nil, fmt.Errorf("mission %s: %w", id, domain.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (r *mockMissionRepo) List(ctx context.Context, offset, limit int) ([]domain.Mission, int, error) {
	var out []domain.Mission
	for i := len(r.order) - 1; i >= 0; i-- {
		if m, ok := r.missions[r.order[i]]; ok {
			out = append(out, *m)
		}
	}
	total := len(out)
	if offset >= total {
		return []domain.Mission{}, total, nil
	}
	end := min(offset+limit, total)
	return out[offset:end], total, nil
}

func (r *mockMissionRepo) UpdateStatus(ctx context.Context, id string, from, to domain.MissionStatus, droneID string, at time.Time) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, id, from, to, droneID, at)
	}
	m, ok := r.missions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if m.Status != from {
		return domain.ErrMissionState
	}
	m.Status = to
	m.DroneID = droneID
	return nil
}

func (r *mockMissionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.missions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.missions, id)
	return nil
}

type mockPublisher struct {
	published []string
	aborted   []string
	err       error
}

func (p *mockPublisher) PublishMission(ctx context.Context, m *domain.Mission) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, m.ID+"@"+m.DroneID)
	return nil
}

func (p *mockPublisher) PublishAbort(ctx context.Context, missionID, droneID string) error {
	p.aborted = append(p.aborted, missionID)
	return nil
}

type mockDispatcher struct {
	calls []string
	err   error
}

func (d *mockDispatcher) Dispatch(ctx context.Context, missionID, droneID string) error {
	d.calls = append(d.calls, missionID+"@"+droneID)
	return d.err
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type testEnv struct {
	repo      *mockMissionRepo
	publisher *mockPublisher
	telemetry *usecases.TelemetryService
}

func makeDeps(opts ...func(*handler.Dependencies)) (*handler.Dependencies, *testEnv) {
	env := &testEnv{
		repo:      newMissionRepo(),
		publisher: &mockPublisher{},
		telemetry: usecases.NewTelemetryService(time.Minute),
	}
	p := planner.New(planner.WithFootprint(planner.LinearFootprint{}))
	d := &handler.Dependencies{
		Survey:    usecases.NewSurveyService(p, env.repo, env.publisher, env.telemetry, nil, 0),
		Telemetry: env.telemetry,
	}
	for _, o := range opts {
		o(d)
	}
	return d, env
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func jsonRequest(method, path string, body interface{}) *httptestRequest {
	return &httptestRequest{method: method, path: path, body: body}
}

type httptestRequest struct {
	method string
	path   string
	body   interface{}
}

func (r *httptestRequest) do(t *testing.T, app *fiber.App) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	switch b := r.body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(r.method, r.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

// 0.001° square near the equator; 45 m linear footprint gives a 3x3 grid.
var squareBody = map[string]interface{}{
	"boundary": []map[string]float64{
		{"lat": 0, "lng": 0},
		{"lat": 0.001, "lng": 0},
		{"lat": 0.001, "lng": 0.001},
		{"lat": 0, "lng": 0.001},
	},
	"settings": map[string]float64{"altitude": 50, "field_of_view": 25, "overlap_percentage": 10},
}

func apiErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var apiErr struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, body)
	}
	return apiErr.Code
}

func createMission(t *testing.T, app *fiber.App) domain.Mission {
	t.Helper()
	status, body := jsonRequest("POST", "/v1/missions", squareBody).do(t, app)
	if status != 201 {
		t.Fatalf("create mission: expected 201, got %d: %s", status, body)
	}
	var m domain.Mission
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

// ---- Plan handler tests ----

func TestPlan_Success(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	status, body := jsonRequest("POST", "/v1/plans", squareBody).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var resp struct {
		Route   []domain.RoutePoint `json:"route"`
		Metrics domain.PathMetrics  `json:"metrics"`
		Grid    domain.Grid         `json:"grid"`
		Encoded string              `json:"encoded_route"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Grid.Rows != 3 || resp.Grid.Cols != 3 {
		t.Errorf("expected 3x3 grid, got %dx%d", resp.Grid.Rows, resp.Grid.Cols)
	}
	if len(resp.Route) != 9 || resp.Metrics.WaypointCount != 9 {
		t.Errorf("expected 9 waypoints, got %d", len(resp.Route))
	}
	if resp.Encoded == "" {
		t.Error("expected encoded route")
	}
}

func TestPlan_GeoJSONBoundary(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	body := `{"boundary_geojson":{"type":"Polygon","coordinates":[[[0,0],[0.001,0],[0.001,0.001],[0,0.001],[0,0]]]},
		"settings":{"altitude":50,"field_of_view":25,"overlap_percentage":10}}`
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
}

func TestPlan_InvalidPolygon(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	body := map[string]interface{}{
		"boundary": []map[string]float64{{"lat": 0, "lng": 0}, {"lat": 1, "lng": 1}},
		"settings": squareBody["settings"],
	}
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := apiErrorCode(t, resp); code != "invalid_polygon" {
		t.Errorf("expected invalid_polygon, got %s", code)
	}
}

func TestPlan_InvalidFootprint(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	body := map[string]interface{}{
		"boundary": squareBody["boundary"],
		"settings": map[string]float64{"altitude": 50, "field_of_view": 25, "overlap_percentage": 100},
	}
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := apiErrorCode(t, resp); code != "invalid_footprint" {
		t.Errorf("expected invalid_footprint, got %s", code)
	}
}

func TestPlan_StartPointOutOfRange(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	body := map[string]interface{}{
		"boundary":    squareBody["boundary"],
		"settings":    squareBody["settings"],
		"start_point": map[string]float64{"lat": 120, "lng": 0},
	}
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 400 {
		t.Fatalf("expected 400, got %d: %s", status, resp)
	}
	if code := apiErrorCode(t, resp); code != "invalid_start_point" {
		t.Errorf("expected invalid_start_point, got %s", code)
	}
}

func TestPlan_BadJSON(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	status, resp := jsonRequest("POST", "/v1/plans", "{not json").do(t, app)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if code := apiErrorCode(t, resp); code != "bad_request" {
		t.Errorf("expected bad_request, got %s", code)
	}
}

func TestPlan_EmptyCoverage(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	body := map[string]interface{}{
		"boundary": []map[string]float64{
			{"lat": 0, "lng": 0.0005}, {"lat": 0.001, "lng": 0}, {"lat": 0.001, "lng": 0.001},
		},
		"settings": map[string]float64{"altitude": 50, "field_of_view": 1000, "overlap_percentage": 0},
	}
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var plan struct {
		Route   []domain.RoutePoint `json:"route"`
		Metrics domain.PathMetrics  `json:"metrics"`
	}
	if err := json.Unmarshal(resp, &plan); err != nil {
		t.Fatal(err)
	}
	if plan.Route == nil || len(plan.Route) != 0 {
		t.Errorf("expected empty route array, got %v", plan.Route)
	}
	if plan.Metrics.TotalDistance != 0 {
		t.Errorf("expected zero distance, got %f", plan.Metrics.TotalDistance)
	}
}

// ---- Mission handler tests ----

func TestCreateAndGetMission(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	m := createMission(t, app)
	if m.ID == "" || m.Status != domain.MissionPlanned {
		t.Fatalf("unexpected mission: %+v", m)
	}

	status, body := jsonRequest("GET", "/v1/missions/"+m.ID, nil).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var got domain.Mission
	json.Unmarshal(body, &got)
	if got.ID != m.ID || len(got.Plan.Route) != 9 {
		t.Errorf("unexpected mission: %+v", got)
	}
}

func TestGetMission_NotFound(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	status, body := jsonRequest("GET", "/v1/missions/nope", nil).do(t, app)
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if code := apiErrorCode(t, body); code != "not_found" {
		t.Errorf("expected not_found, got %s", code)
	}
}

func TestListMissions_Pagination(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)
	for i := 0; i < 5; i++ {
		createMission(t, app)
	}

	req := httptest.NewRequest("GET", "/v1/missions?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if link := resp.Header.Get("Link"); !strings.Contains(link, `rel="next"`) {
		t.Errorf("expected next link, got %q", link)
	}

	var result struct {
		Data       []domain.Mission `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 missions in page, got %d", len(result.Data))
	}
}

func TestDeleteMission(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)
	m := createMission(t, app)

	status, _ := jsonRequest("DELETE", "/v1/missions/"+m.ID, nil).do(t, app)
	if status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	status, _ = jsonRequest("GET", "/v1/missions/"+m.ID, nil).do(t, app)
	if status != 404 {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

// ---- Export tests ----

func TestMissionGeoJSON(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)
	m := createMission(t, app)

	req := httptest.NewRequest("GET", "/v1/missions/"+m.ID+"/route.geojson", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	json.NewDecoder(resp.Body).Decode(&fc)
	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection, got %q", fc.Type)
	}
	// boundary + route + 9 waypoints
	if len(fc.Features) != 11 {
		t.Errorf("expected 11 features, got %d", len(fc.Features))
	}
}

func TestMissionKML(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)
	m := createMission(t, app)

	req := httptest.NewRequest("GET", "/v1/missions/"+m.ID+"/route.kml", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := string(readBody(t, resp.Body))
	if !strings.Contains(body, "<LineString>") {
		t.Errorf("expected LineString in KML, got %s", body)
	}
}

func TestMissionExport_ETag(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)
	m := createMission(t, app)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/missions/"+m.ID+"/route.geojson", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/missions/"+m.ID+"/route.geojson", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Dispatch tests ----

func TestDispatch_Inline(t *testing.T) {
	deps, env := makeDeps()
	app := setupApp(deps)
	m := createMission(t, app)

	status, body := jsonRequest("POST", "/v1/missions/"+m.ID+"/dispatch", map[string]string{"drone_id": "drone-7"}).do(t, app)
	if status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, body)
	}
	if len(env.publisher.published) != 1 || env.publisher.published[0] != m.ID+"@drone-7" {
		t.Errorf("unexpected publications: %v", env.publisher.published)
	}

	// A second dispatch conflicts.
	status, body = jsonRequest("POST", "/v1/missions/"+m.ID+"/dispatch", map[string]string{"drone_id": "drone-7"}).do(t, app)
	if status != 409 {
		t.Fatalf("expected 409, got %d", status)
	}
	if code := apiErrorCode(t, body); code != "mission_state" {
		t.Errorf("expected mission_state, got %s", code)
	}
}

func TestDispatch_UsesDispatcher(t *testing.T) {
	d := &mockDispatcher{}
	deps, env := makeDeps(func(deps *handler.Dependencies) { deps.Dispatcher = d })
	app := setupApp(deps)

	status, _ := jsonRequest("POST", "/v1/missions/m1/dispatch", map[string]string{"drone_id": "drone-7"}).do(t, app)
	if status != 202 {
		t.Fatalf("expected 202, got %d", status)
	}
	if len(d.calls) != 1 || d.calls[0] != "m1@drone-7" {
		t.Errorf("unexpected dispatcher calls: %v", d.calls)
	}
	if len(env.publisher.published) != 0 {
		t.Error("survey service must not publish when a dispatcher is set")
	}
}

func TestDispatch_MissingDrone(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	status, _ := jsonRequest("POST", "/v1/missions/m1/dispatch", map[string]string{}).do(t, app)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestDispatch_InvalidDroneID(t *testing.T) {
	d := &mockDispatcher{}
	deps, _ := makeDeps(func(deps *handler.Dependencies) { deps.Dispatcher = d })
	app := setupApp(deps)

	for _, id := range []string{"drone.7", "drone*", "a>b", "drone 7"} {
		status, body := jsonRequest("POST", "/v1/missions/m1/dispatch", map[string]string{"drone_id": id}).do(t, app)
		if status != 400 {
			t.Fatalf("drone id %q: expected 400, got %d", id, status)
		}
		if code := apiErrorCode(t, body); code != "invalid_drone_id" {
			t.Errorf("drone id %q: expected invalid_drone_id, got %s", id, code)
		}
	}
	if len(d.calls) != 0 {
		t.Errorf("dispatcher must not run for invalid ids, got %v", d.calls)
	}
}

func TestDispatch_PublishFailure(t *testing.T) {
	deps, env := makeDeps()
	env.publisher.err = errors.New("nats down")
	app := setupApp(deps)
	m := createMission(t, app)

	status, body := jsonRequest("POST", "/v1/missions/"+m.ID+"/dispatch", map[string]string{"drone_id": "drone-7"}).do(t, app)
	if status != 500 {
		t.Fatalf("expected 500, got %d", status)
	}
	if strings.Contains(string(body), "nats down") {
		t.Error("internal error detail leaked to client")
	}
}

func TestAbort(t *testing.T) {
	deps, env := makeDeps()
	app := setupApp(deps)
	m := createMission(t, app)

	status, _ := jsonRequest("POST", "/v1/missions/"+m.ID+"/abort", nil).do(t, app)
	if status != 409 {
		t.Fatalf("expected 409 for planned mission, got %d", status)
	}

	jsonRequest("POST", "/v1/missions/"+m.ID+"/dispatch", map[string]string{"drone_id": "drone-7"}).do(t, app)
	status, _ = jsonRequest("POST", "/v1/missions/"+m.ID+"/abort", nil).do(t, app)
	if status != 202 {
		t.Fatalf("expected 202, got %d", status)
	}
	if len(env.publisher.aborted) != 1 {
		t.Errorf("expected one abort, got %v", env.publisher.aborted)
	}
}

// ---- Telemetry tests ----

func TestDronePosition(t *testing.T) {
	deps, env := makeDeps()
	app := setupApp(deps)

	status, _ := jsonRequest("GET", "/v1/drones/drone-7/position", nil).do(t, app)
	if status != 404 {
		t.Fatalf("expected 404 before any fix, got %d", status)
	}

	_ = env.telemetry.Update(context.Background(), &domain.DronePosition{
		DroneID: "drone-7", Location: domain.GeoPoint{Lat: 43.26, Lng: -2.93}, Time: time.Now(),
	})
	status, body := jsonRequest("GET", "/v1/drones/drone-7/position", nil).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var pos domain.DronePosition
	json.Unmarshal(body, &pos)
	if pos.Location.Lat != 43.26 {
		t.Errorf("unexpected position %+v", pos)
	}
}

func TestNearbyDrones(t *testing.T) {
	deps, env := makeDeps()
	app := setupApp(deps)

	now := time.Now()
	_ = env.telemetry.Update(context.Background(), &domain.DronePosition{
		DroneID: "drone-7", Location: domain.GeoPoint{Lat: 0.001, Lng: 0}, Time: now,
	})
	_ = env.telemetry.Update(context.Background(), &domain.DronePosition{
		DroneID: "drone-9", Location: domain.GeoPoint{Lat: 1, Lng: 1}, Time: now,
	})

	status, body := jsonRequest("GET", "/v1/drones/nearby?lat=0&lng=0&radius=1000", nil).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var resp struct {
		Data []usecases.NearbyDrone `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].DroneID != "drone-7" {
		t.Fatalf("expected only drone-7, got %+v", resp.Data)
	}
	if resp.Data[0].Distance <= 0 {
		t.Errorf("expected a distance, got %f", resp.Data[0].Distance)
	}

	for _, q := range []string{"lng=0", "lat=95&lng=0", "lat=0&lng=0&radius=0", "lat=0&lng=0&radius=60000"} {
		if status, _ := jsonRequest("GET", "/v1/drones/nearby?"+q, nil).do(t, app); status != 400 {
			t.Errorf("%s: expected 400, got %d", q, status)
		}
	}
}

func TestPlan_PolylineBoundary(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	// The square ring (0,0) (0.001,0) (0.001,0.001) (0,0.001) (0,0) as an encoded polyline.
	ring := []domain.RoutePoint{
		{GeoPoint: domain.GeoPoint{Lat: 0, Lng: 0}},
		{GeoPoint: domain.GeoPoint{Lat: 0.001, Lng: 0}},
		{GeoPoint: domain.GeoPoint{Lat: 0.001, Lng: 0.001}},
		{GeoPoint: domain.GeoPoint{Lat: 0, Lng: 0.001}},
		{GeoPoint: domain.GeoPoint{Lat: 0, Lng: 0}},
	}
	body := map[string]interface{}{
		"boundary_polyline": export.Polyline(ring),
		"settings":          squareBody["settings"],
	}
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var plan struct {
		Route []domain.RoutePoint `json:"route"`
	}
	json.Unmarshal(resp, &plan)
	if len(plan.Route) != 9 {
		t.Errorf("expected the 3x3 square route, got %d waypoints", len(plan.Route))
	}

	body["boundary_polyline"] = "??"
	status, resp = jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 400 {
		t.Fatalf("expected 400 for a degenerate ring, got %d", status)
	}
	if code := apiErrorCode(t, resp); code != "invalid_polygon" {
		t.Errorf("expected invalid_polygon, got %s", code)
	}
}

func TestPlan_StartFromDroneTelemetry(t *testing.T) {
	deps, env := makeDeps()
	app := setupApp(deps)
	_ = env.telemetry.Update(context.Background(), &domain.DronePosition{
		DroneID: "drone-7", Location: domain.GeoPoint{Lat: -0.001, Lng: 0}, Time: time.Now(),
	})

	body := map[string]interface{}{
		"boundary": squareBody["boundary"],
		"settings": squareBody["settings"],
		"drone_id": "drone-7",
	}
	status, resp := jsonRequest("POST", "/v1/plans", body).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var plan struct {
		Metrics domain.PathMetrics `json:"metrics"`
	}
	json.Unmarshal(resp, &plan)
	if plan.Metrics.TransitDistance <= 0 {
		t.Errorf("expected transit distance from drone position, got %f", plan.Metrics.TransitDistance)
	}
}

// ---- Health & GraphQL ----

func TestHealth(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if rid := resp.Header.Get("X-Request-Id"); rid == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestReady_NoDatabase(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without database, got %d", resp.StatusCode)
	}
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &ready); err != nil {
		t.Fatal(err)
	}
	if ready.Checks["database"] != "not configured" {
		t.Errorf("unexpected database check %q", ready.Checks["database"])
	}
	if ready.Checks["telemetry"] != "not subscribed" {
		t.Errorf("unexpected telemetry check %q", ready.Checks["telemetry"])
	}
}

type stubSubscriber struct{}

func (stubSubscriber) SubscribePositions(ctx context.Context, handler func(ctx context.Context, pos *domain.DronePosition) error) error {
	return nil
}

func TestReady_ReportsTelemetryFeed(t *testing.T) {
	deps, env := makeDeps()
	if err := env.telemetry.Start(context.Background(), stubSubscriber{}); err != nil {
		t.Fatal(err)
	}
	_ = env.telemetry.Update(context.Background(), &domain.DronePosition{
		DroneID: "drone-7", Location: domain.GeoPoint{Lat: 1, Lng: 1}, Time: time.Now(),
	})
	app := setupApp(deps)

	status, body := jsonRequest("GET", "/v1/ready", nil).do(t, app)
	if status != 503 {
		t.Fatalf("expected 503 without database, got %d", status)
	}
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &ready); err != nil {
		t.Fatal(err)
	}
	if ready.Checks["telemetry"] != "ok, 1 drones tracked" {
		t.Errorf("unexpected telemetry check %q", ready.Checks["telemetry"])
	}
}

func TestGraphQL_Plan(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	query := `{ plan(
		boundary: [{lat: 0, lng: 0}, {lat: 0.001, lng: 0}, {lat: 0.001, lng: 0.001}, {lat: 0, lng: 0.001}],
		settings: {altitude: 50, field_of_view: 25, overlap_percentage: 10}
	) { empty metrics { waypoint_count } route { order lat lng } } }`

	status, body := jsonRequest("POST", "/graphql", map[string]string{"query": query}).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data struct {
			Plan struct {
				Empty   bool `json:"empty"`
				Metrics struct {
					WaypointCount int `json:"waypoint_count"`
				} `json:"metrics"`
				Route []struct {
					Order int     `json:"order"`
					Lat   float64 `json:"lat"`
				} `json:"route"`
			} `json:"plan"`
		} `json:"data"`
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %s", body)
	}
	if result.Data.Plan.Empty || result.Data.Plan.Metrics.WaypointCount != 9 {
		t.Errorf("unexpected plan: %s", body)
	}
	for i, rp := range result.Data.Plan.Route {
		if rp.Order != i {
			t.Errorf("route[%d].order = %d", i, rp.Order)
		}
	}
}

func TestGraphQL_MissionNotFound(t *testing.T) {
	deps, _ := makeDeps()
	app := setupApp(deps)

	status, body := jsonRequest("POST", "/graphql", map[string]string{"query": `{ mission(id: "nope") { id } }`}).do(t, app)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), `"mission":null`) {
		t.Errorf("expected null mission, got %s", body)
	}
}
