package ports

import (
	"context"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// MissionPublisher hands missions to the flight-execution layer.
type MissionPublisher interface {
	PublishMission(ctx context.Context, mission *domain.Mission) error
	PublishAbort(ctx context.Context, missionID, droneID string) error
}

// TelemetrySubscriber delivers live drone positions.
type TelemetrySubscriber interface {
	SubscribePositions(ctx context.Context, handler func(ctx context.Context, pos *domain.DronePosition) error) error
}

// PositionSource resolves the latest known position of a drone.
type PositionSource interface {
	Latest(droneID string) (*domain.DronePosition, bool)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// Dispatcher sends a stored mission to a drone.
type Dispatcher interface {
	Dispatch(ctx context.Context, missionID, droneID string) error
}
