package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set by the handler
		if existing := string(c.Response().Header.Peek("Cache-Control")); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case strings.HasPrefix(path, "/v1/drones/"):
			ttl = "no-store" // Live telemetry

		case strings.HasSuffix(path, "/route.geojson") || strings.HasSuffix(path, "/route.kml"):
			ttl = "public, max-age=3600" // A stored plan never changes

		case strings.HasPrefix(path, "/v1/missions"):
			ttl = "private, max-age=0, must-revalidate" // Status changes on dispatch

		case path == "/docs" || path == "/docs/openapi.yaml":
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
