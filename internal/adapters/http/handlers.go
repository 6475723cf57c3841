package http

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/usecases"
	"github.com/samirrijal/skyscan/internal/export"
)

// planBody is the JSON body of plan and mission requests. The boundary may be
// given as a list of points, as GeoJSON or as an encoded polyline ring.
type planBody struct {
	Name             string                 `json:"name"`
	Boundary         domain.BoundaryPolygon `json:"boundary"`
	BoundaryGeoJSON  json.RawMessage        `json:"boundary_geojson"`
	BoundaryPolyline string                 `json:"boundary_polyline"`
	Settings         domain.SurveySettings  `json:"settings"`
	StartPoint       *domain.GeoPoint       `json:"start_point"`
	DroneID          string                 `json:"drone_id"`
}

func (b planBody) request() (usecases.PlanRequest, error) {
	boundary := b.Boundary
	if len(boundary) == 0 && len(b.BoundaryGeoJSON) > 0 {
		parsed, err := export.ParseBoundary(b.BoundaryGeoJSON)
		if err != nil {
			return usecases.PlanRequest{}, err
		}
		boundary = parsed
	}
	if len(boundary) == 0 && b.BoundaryPolyline != "" {
		parsed, err := export.ParseBoundaryPolyline(b.BoundaryPolyline)
		if err != nil {
			return usecases.PlanRequest{}, err
		}
		boundary = parsed
	}
	return usecases.PlanRequest{
		Boundary:   boundary,
		Settings:   b.Settings,
		StartPoint: b.StartPoint,
		DroneID:    b.DroneID,
	}, nil
}

// PlanResponse is a plan plus its route as an encoded polyline.
type PlanResponse struct {
	*domain.SurveyPlan
	EncodedRoute string `json:"encoded_route"`
}

func newPlanResponse(p *domain.SurveyPlan) PlanResponse {
	return PlanResponse{SurveyPlan: p, EncodedRoute: export.Polyline(p.Route)}
}

func parsePlanBody(c *fiber.Ctx) (planBody, usecases.PlanRequest, error) {
	var body planBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return body, usecases.PlanRequest{}, errBadRequest(c, "invalid JSON body")
	}
	req, err := body.request()
	if err != nil {
		// Every GeoJSON or polyline parse failure is a client error.
		return body, req, newError(c, 400, "invalid_polygon", err.Error())
	}
	return body, req, nil
}

// PlanHandler computes a coverage route without storing it.
func PlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, req, err := parsePlanBody(c)
		if err != nil {
			return err
		}

		plan, err := deps.Survey.Plan(c.UserContext(), req)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(newPlanResponse(plan))
	}
}

// CreateMissionHandler plans a route and stores it as a mission.
func CreateMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, req, err := parsePlanBody(c)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(body.Name)
		if len(name) > 200 {
			return errBadRequest(c, "name too long (max 200 characters)")
		}

		m, err := deps.Survey.CreateMission(c.UserContext(), name, req)
		if err != nil {
			return errFromService(c, err)
		}
		c.Set("Location", "/v1/missions/"+m.ID)
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// ListMissionsHandler returns a page of missions, newest first.
func ListMissionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 50
		}

		missions, total, err := deps.Survey.ListMissions(c.UserContext(), offset, limit)
		if err != nil {
			return errFromService(c, err)
		}
		if missions == nil {
			missions = []domain.Mission{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: missions, Pagination: pg})
	}
}

// GetMissionHandler returns a single mission by ID.
func GetMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Survey.GetMission(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(m)
	}
}

// DeleteMissionHandler removes a mission that is not in flight.
func DeleteMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Survey.DeleteMission(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MissionGeoJSONHandler exports a mission's boundary and route as GeoJSON.
func MissionGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Survey.GetMission(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		data, err := export.GeoJSON(m.Boundary, &m.Plan)
		if err != nil {
			return errFromService(c, err)
		}
		c.Set("Content-Type", "application/geo+json")
		return c.Send(data)
	}
}

// MissionKMLHandler exports a mission as KML.
func MissionKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := deps.Survey.GetMission(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		name := m.Name
		if name == "" {
			name = "Mission " + m.ID
		}
		data, err := export.KML(name, m.Boundary, m.Settings, &m.Plan)
		if err != nil {
			return errFromService(c, err)
		}
		c.Set("Content-Type", "application/vnd.google-earth.kml+xml")
		c.Set("Content-Disposition", `attachment; filename="mission-`+m.ID+`.kml"`)
		return c.Send(data)
	}
}

// DispatchMissionHandler sends a planned mission to a drone.
func DispatchMissionHandler(deps *Dependencies) fiber.Handler {
	type dispatchBody struct {
		DroneID string `json:"drone_id"`
	}

	return func(c *fiber.Ctx) error {
		var body dispatchBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if body.DroneID == "" {
			return errBadRequest(c, "drone_id is required")
		}
		if err := domain.ValidateDroneID(body.DroneID); err != nil {
			return errFromService(c, err)
		}

		id := c.Params("id")
		if err := deps.dispatcher().Dispatch(c.UserContext(), id, body.DroneID); err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"mission_id": id,
			"drone_id":   body.DroneID,
			"status":     "dispatch accepted",
		})
	}
}

// AbortMissionHandler stops a dispatched mission.
func AbortMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Survey.Abort(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"mission_id": c.Params("id"),
			"status":     string(domain.MissionAborted),
		})
	}
}

// NearbyDronesHandler returns drones with a fresh fix within a radius of a point.
func NearbyDronesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Telemetry == nil {
			return errServiceUnavailable(c, "telemetry not available")
		}
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return errBadRequest(c, "lat and lng are required")
		}
		center := domain.GeoPoint{Lat: c.QueryFloat("lat", 0), Lng: c.QueryFloat("lng", 0)}
		radius := c.QueryFloat("radius", 5000)
		limit := c.QueryInt("limit", 50)

		if !center.Valid() {
			return errBadRequest(c, "lat/lng out of range")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		drones := deps.Telemetry.Nearby(center, radius)
		if len(drones) > limit {
			drones = drones[:limit]
		}
		if drones == nil {
			drones = []usecases.NearbyDrone{}
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"data": drones})
	}
}

// DronePositionHandler returns the latest fresh telemetry fix of a drone.
func DronePositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Telemetry == nil {
			return errServiceUnavailable(c, "telemetry not available")
		}
		pos, ok := deps.Telemetry.Latest(c.Params("id"))
		if !ok {
			return errNotFound(c, "no recent position for drone "+c.Params("id"))
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(pos)
	}
}
