package ports

import (
	"context"
	"time"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// MissionRepository persists planned missions.
type MissionRepository interface {
	Create(ctx context.Context, mission *domain.Mission) error
	GetByID(ctx context.Context, id string) (*domain.Mission, error)
	List(ctx context.Context, offset, limit int) ([]domain.Mission, int, error)
	// UpdateStatus moves a mission from one status to another. It returns
	// domain.ErrMissionState if the mission is not currently in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.MissionStatus, droneID string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// PositionRepository keeps the history of drone telemetry fixes.
type PositionRepository interface {
	Insert(ctx context.Context, pos *domain.DronePosition) error
	Latest(ctx context.Context, droneID string) (*domain.DronePosition, error)
}
