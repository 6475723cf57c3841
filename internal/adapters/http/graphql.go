package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	routePointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RoutePoint",
		Fields: graphql.Fields{
			"order": &graphql.Field{Type: graphql.Int},
			"lat": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.RoutePoint).Lat, nil
			}},
			"lng": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.RoutePoint).Lng, nil
			}},
		},
	})

	metricsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathMetrics",
		Fields: graphql.Fields{
			"total_distance":        &graphql.Field{Type: graphql.Float},
			"estimated_flight_time": &graphql.Field{Type: graphql.Float},
			"waypoint_count":        &graphql.Field{Type: graphql.Int},
			"transit_distance":      &graphql.Field{Type: graphql.Float},
		},
	})

	gridType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Grid",
		Fields: graphql.Fields{
			"rows":                    &graphql.Field{Type: graphql.Int},
			"cols":                    &graphql.Field{Type: graphql.Int},
			"effective_view_distance": &graphql.Field{Type: graphql.Float},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SurveyPlan",
		Fields: graphql.Fields{
			"route":   &graphql.Field{Type: graphql.NewList(routePointType)},
			"metrics": &graphql.Field{Type: metricsType},
			"grid":    &graphql.Field{Type: gridType},
			"footprint_model": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return planFrom(p.Source).Footprint.Model, nil
			}},
			"empty": &graphql.Field{Type: graphql.Boolean, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return planFrom(p.Source).Empty(), nil
			}},
		},
	})

	missionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mission",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"status":   &graphql.Field{Type: graphql.String},
			"drone_id": &graphql.Field{Type: graphql.String},
			"boundary": &graphql.Field{Type: graphql.NewList(geoPointType)},
			"plan":     &graphql.Field{Type: planType},
			"created_at": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.Mission).CreatedAt.Format("2006-01-02T15:04:05Z07:00"), nil
			}},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DronePosition",
		Fields: graphql.Fields{
			"drone_id": &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"altitude": &graphql.Field{Type: graphql.Float},
			"heading":  &graphql.Field{Type: graphql.Float},
			"speed":    &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	settingsInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SurveySettingsInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"altitude":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"field_of_view":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"overlap_percentage": &graphql.InputObjectFieldConfig{Type: graphql.Float, DefaultValue: 0.0},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plan": &graphql.Field{
				Type:        planType,
				Description: "Compute a coverage route without storing it",
				Args: graphql.FieldConfigArgument{
					"boundary":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(geoPointInput)))},
					"settings":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(settingsInput)},
					"start_point": &graphql.ArgumentConfig{Type: geoPointInput},
					"drone_id":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req, err := planRequestFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					return deps.Survey.Plan(p.Context, req)
				},
			},
			"mission": &graphql.Field{
				Type:        missionType,
				Description: "Get a mission by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, err := deps.Survey.GetMission(p.Context, p.Args["id"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return *m, nil
				},
			},
			"missions": &graphql.Field{
				Type:        graphql.NewList(missionType),
				Description: "List missions, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					missions, _, err := deps.Survey.ListMissions(p.Context, p.Args["offset"].(int), p.Args["limit"].(int))
					return missions, err
				},
			},
			"dronePosition": &graphql.Field{
				Type:        positionType,
				Description: "Latest fresh telemetry fix of a drone",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Telemetry == nil {
						return nil, nil
					}
					pos, ok := deps.Telemetry.Latest(p.Args["id"].(string))
					if !ok {
						return nil, nil
					}
					return pos, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func planFrom(src interface{}) *domain.SurveyPlan {
	switch v := src.(type) {
	case *domain.SurveyPlan:
		return v
	case domain.SurveyPlan:
		return &v
	}
	return &domain.SurveyPlan{}
}

func planRequestFromArgs(args map[string]interface{}) (usecases.PlanRequest, error) {
	var req usecases.PlanRequest

	raw, _ := args["boundary"].([]interface{})
	for _, item := range raw {
		pt, err := geoPointFromArg(item)
		if err != nil {
			return req, err
		}
		req.Boundary = append(req.Boundary, pt)
	}

	s, _ := args["settings"].(map[string]interface{})
	req.Settings = domain.SurveySettings{
		Altitude:          floatArg(s["altitude"]),
		FieldOfView:       floatArg(s["field_of_view"]),
		OverlapPercentage: floatArg(s["overlap_percentage"]),
	}

	if sp, ok := args["start_point"]; ok && sp != nil {
		pt, err := geoPointFromArg(sp)
		if err != nil {
			return req, err
		}
		req.StartPoint = &pt
	}
	if id, ok := args["drone_id"].(string); ok {
		req.DroneID = id
	}
	return req, nil
}

func geoPointFromArg(v interface{}) (domain.GeoPoint, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("expected GeoPointInput, got %T", v)
	}
	return domain.GeoPoint{Lat: floatArg(m["lat"]), Lng: floatArg(m["lng"])}, nil
}

// floatArg accepts the int coercion graphql-go applies to whole-number literals.
func floatArg(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
