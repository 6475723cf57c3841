package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// MissionRepo implements ports.MissionRepository.
type MissionRepo struct {
	db *DB
}

func NewMissionRepo(db *DB) *MissionRepo {
	return &MissionRepo{db: db}
}

const missionColumns = `id, name, boundary, settings, plan, status, COALESCE(drone_id, ''), created_at, dispatched_at`

func (r *MissionRepo) Create(ctx context.Context, m *domain.Mission) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO missions (id, name, boundary, area, settings, plan, waypoint_count, status, drone_id, created_at)
		VALUES ($1, $2, $3, ST_GeogFromText($4), $5, $6, $7, $8, $9, $10)
	`, m.ID, m.Name, m.Boundary, polygonWKT(m.Boundary), m.Settings, m.Plan,
		len(m.Plan.Route), string(m.Status), nilIfEmpty(m.DroneID), m.CreatedAt)
	return err
}

func (r *MissionRepo) GetByID(ctx context.Context, id string) (*domain.Mission, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = $1`, id)
	m, err := scanMission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mission %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MissionRepo) List(ctx context.Context, offset, limit int) ([]domain.Mission, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM missions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+missionColumns+`
		FROM missions
		ORDER BY created_at DESC, id
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	missions := []domain.Mission{}
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, 0, err
		}
		missions = append(missions, *m)
	}
	return missions, total, rows.Err()
}

func (r *MissionRepo) UpdateStatus(ctx context.Context, id string, from, to domain.MissionStatus, droneID string, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE missions
		SET status = $3,
		    drone_id = COALESCE($4, drone_id),
		    dispatched_at = CASE WHEN $3 = 'dispatched' THEN $5 ELSE dispatched_at END
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), nilIfEmpty(droneID), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = r.db.Pool.QueryRow(ctx, `SELECT status FROM missions WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("mission %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: mission %s is %s, expected %s", domain.ErrMissionState, id, current, from)
}

func (r *MissionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM missions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mission %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanMission(row pgx.Row) (*domain.Mission, error) {
	var m domain.Mission
	var status string
	if err := row.Scan(
		&m.ID, &m.Name, &m.Boundary, &m.Settings, &m.Plan,
		&status, &m.DroneID, &m.CreatedAt, &m.DispatchedAt,
	); err != nil {
		return nil, err
	}
	m.Status = domain.MissionStatus(status)
	if m.Plan.Route == nil {
		m.Plan.Route = []domain.RoutePoint{}
	}
	return &m, nil
}

// polygonWKT closes the ring and renders it as WKT (lng lat order).
func polygonWKT(b domain.BoundaryPolygon) string {
	if len(b) == 0 {
		return "POLYGON EMPTY"
	}
	var sb strings.Builder
	sb.WriteString("POLYGON((")
	for _, p := range append(b[:len(b):len(b)], b[0]) {
		if sb.Len() > len("POLYGON((") {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(p.Lng, 'f', -1, 64))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}
	sb.WriteString("))")
	return sb.String()
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
