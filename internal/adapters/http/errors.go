package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, invalid_polygon, not_found, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errServiceUnavailable returns a 503 error.
func errServiceUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// errFromService maps domain errors to HTTP responses.
func errFromService(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPolygon):
		return newError(c, 400, "invalid_polygon", err.Error())
	case errors.Is(err, domain.ErrInvalidFootprint):
		return newError(c, 400, "invalid_footprint", err.Error())
	case errors.Is(err, domain.ErrInvalidCruiseSpeed):
		return newError(c, 400, "invalid_cruise_speed", err.Error())
	case errors.Is(err, domain.ErrGridTooLarge):
		return newError(c, 400, "grid_too_large", err.Error())
	case errors.Is(err, domain.ErrOutsideApproximation):
		return newError(c, 400, "outside_approximation", err.Error())
	case errors.Is(err, domain.ErrInvalidStartPoint):
		return newError(c, 400, "invalid_start_point", err.Error())
	case errors.Is(err, domain.ErrInvalidDroneID):
		return newError(c, 400, "invalid_drone_id", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrMissionState):
		return newError(c, 409, "mission_state", err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
