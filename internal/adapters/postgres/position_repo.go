package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// PositionRepo implements ports.PositionRepository.
type PositionRepo struct {
	db *DB
}

func NewPositionRepo(db *DB) *PositionRepo {
	return &PositionRepo{db: db}
}

func (r *PositionRepo) Insert(ctx context.Context, p *domain.DronePosition) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO drone_positions (time, drone_id, location, altitude, heading, speed)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7)
	`, p.Time, p.DroneID, p.Location.Lng, p.Location.Lat, p.Altitude, p.Heading, p.Speed)
	return err
}

func (r *PositionRepo) Latest(ctx context.Context, droneID string) (*domain.DronePosition, error) {
	var p domain.DronePosition
	err := r.db.Pool.QueryRow(ctx, `
		SELECT time, drone_id,
			ST_Y(location::geometry) AS lat,
			ST_X(location::geometry) AS lng,
			altitude, heading, speed
		FROM drone_positions
		WHERE drone_id = $1
		ORDER BY time DESC
		LIMIT 1
	`, droneID).Scan(&p.Time, &p.DroneID, &p.Location.Lat, &p.Location.Lng, &p.Altitude, &p.Heading, &p.Speed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("drone %s: %w", droneID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
