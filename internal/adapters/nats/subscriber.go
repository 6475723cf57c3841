package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// Subscriber implements ports.TelemetrySubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection. durable
// names the consumer; instances sharing it split the stream.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if durable == "" {
		durable = "position-tracker"
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

func (s *Subscriber) SubscribePositions(ctx context.Context, handler func(ctx context.Context, pos *domain.DronePosition) error) error {
	sub, err := s.js.Subscribe(SubjectPositionAll, func(msg *nats.Msg) {
		pos, err := decodePosition(msg.Subject, msg.Data)
		if err != nil {
			// Malformed payloads will never decode; drop them.
			slog.Warn("drop telemetry message", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		settle(msg, handler(ctx, pos))
	},
		nats.Durable(s.durable),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// acker is the acknowledgement side of a JetStream message.
type acker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
	Term(opts ...nats.AckOpt) error
}

// settle acknowledges a handled message. Fixes rejected as invalid are
// terminated since redelivery cannot fix them; other failures are retried.
func settle(msg acker, err error) {
	switch {
	case err == nil:
		_ = msg.Ack()
	case errors.Is(err, domain.ErrInvalidPosition):
		slog.Warn("drop invalid telemetry fix", "error", err)
		_ = msg.Term()
	default:
		_ = msg.Nak()
	}
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
