package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// Publisher implements ports.MissionPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	now  func() time.Time
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js, now: time.Now}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      "FLIGHT_COMMANDS",
			Subjects:  []string{SubjectMissionPrefix + ">", SubjectAbortPrefix + ">"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "DRONE_TELEMETRY",
			Subjects:  []string{SubjectPositionAll},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

func (p *Publisher) PublishMission(ctx context.Context, m *domain.Mission) error {
	token, err := subjectToken(m.DroneID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(newMissionCommand(m, p.now()))
	if err != nil {
		return err
	}
	// Msg id lets JetStream drop duplicates when a dispatch is retried.
	_, err = p.js.Publish(SubjectMissionPrefix+token, data,
		nats.Context(ctx), nats.MsgId("mission-"+m.ID))
	return err
}

func (p *Publisher) PublishAbort(ctx context.Context, missionID, droneID string) error {
	token, err := subjectToken(droneID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(AbortCommand{MissionID: missionID, DroneID: droneID, IssuedAt: p.now().UTC()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectAbortPrefix+token, data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("skyscan"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
