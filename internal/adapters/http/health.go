package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// readiness collects named dependency checks. A failed required check makes
// the service not ready.
type readiness struct {
	checks map[string]string
	ok     bool
}

func (r *readiness) pass(name, detail string) { r.checks[name] = detail }

func (r *readiness) fail(name, detail string) {
	r.checks[name] = detail
	r.ok = false
}

// ReadyHandler checks the mission store, the flight command bus, the plan
// cache and the telemetry feed. Missions cannot be stored or dispatched
// without the database; the bus, cache and feed are optional unless
// configured.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		r := &readiness{checks: make(map[string]string), ok: true}

		switch {
		case deps.DB == nil:
			r.fail("database", "not configured")
		default:
			if err := deps.DB.Ping(ctx); err != nil {
				r.fail("database", "error: "+err.Error())
			} else {
				r.pass("database", "ok")
			}
		}

		switch {
		case deps.NATS == nil:
			r.pass("nats", "not configured")
		case deps.NATS.IsConnected():
			r.pass("nats", "ok")
		default:
			r.fail("nats", "disconnected")
		}

		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				r.fail("cache", "error: "+err.Error())
			} else {
				r.pass("cache", "ok")
			}
		} else {
			r.pass("cache", "not configured")
		}

		// Start points and nearby lookups come from the telemetry feed. With a
		// bus configured, a missing subscription means positions go stale.
		switch {
		case deps.Telemetry == nil:
			r.pass("telemetry", "not configured")
		case deps.Telemetry.Subscribed():
			r.pass("telemetry", "ok, "+strconv.Itoa(deps.Telemetry.Tracked())+" drones tracked")
		case deps.NATS != nil:
			r.fail("telemetry", "not subscribed")
		default:
			r.pass("telemetry", "not subscribed")
		}

		status := "ready"
		code := fiber.StatusOK
		if !r.ok {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": r.checks,
		})
	}
}
