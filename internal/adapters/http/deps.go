package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyscan/internal/adapters/postgres"
	"github.com/samirrijal/skyscan/internal/adapters/valkey"
	"github.com/samirrijal/skyscan/internal/core/ports"
	"github.com/samirrijal/skyscan/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Survey    *usecases.SurveyService
	Telemetry *usecases.TelemetryService
	// Dispatcher runs mission dispatch. When nil, Survey dispatches inline.
	Dispatcher ports.Dispatcher
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}

func (d *Dependencies) dispatcher() ports.Dispatcher {
	if d.Dispatcher != nil {
		return d.Dispatcher
	}
	return d.Survey
}
