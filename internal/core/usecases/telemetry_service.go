package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samirrijal/skyscan/internal/core/domain"
	"github.com/samirrijal/skyscan/internal/core/ports"
	"github.com/samirrijal/skyscan/internal/pkg/geospatial"
	"github.com/samirrijal/skyscan/internal/pkg/metrics"
)

// TelemetryService keeps the latest reported position of each drone.
type TelemetryService struct {
	mu     sync.RWMutex
	latest map[string]domain.DronePosition
	maxAge time.Duration
	now    func() time.Time
	store  ports.PositionRepository

	subscribed atomic.Bool
}

// NewTelemetryService creates a TelemetryService. Positions older than maxAge
// are treated as unknown; zero keeps them forever.
func NewTelemetryService(maxAge time.Duration) *TelemetryService {
	return &TelemetryService{
		latest: make(map[string]domain.DronePosition),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// WithStore records every accepted fix in store.
func (s *TelemetryService) WithStore(store ports.PositionRepository) *TelemetryService {
	s.store = store
	return s
}

// Start subscribes to live positions.
func (s *TelemetryService) Start(ctx context.Context, sub ports.TelemetrySubscriber) error {
	if err := sub.SubscribePositions(ctx, s.Update); err != nil {
		return err
	}
	s.subscribed.Store(true)
	return nil
}

// Subscribed reports whether Start attached to a live position feed.
func (s *TelemetryService) Subscribed() bool { return s.subscribed.Load() }

// Tracked returns the number of drones with a known position.
func (s *TelemetryService) Tracked() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.latest)
}

// Update records a position fix. Fixes older than the one already held for
// the drone are ignored. Fixes that can never be accepted return an error
// wrapping domain.ErrInvalidPosition.
func (s *TelemetryService) Update(ctx context.Context, pos *domain.DronePosition) error {
	if pos == nil || pos.DroneID == "" {
		return fmt.Errorf("telemetry: %w: missing drone id", domain.ErrInvalidPosition)
	}
	if !pos.Location.Valid() {
		return fmt.Errorf("telemetry: %w: drone %s reported location %v", domain.ErrInvalidPosition, pos.DroneID, pos.Location)
	}
	if pos.Time.IsZero() {
		pos.Time = s.now()
	}

	s.mu.Lock()
	if prev, ok := s.latest[pos.DroneID]; ok && pos.Time.Before(prev.Time) {
		s.mu.Unlock()
		return nil
	}
	s.latest[pos.DroneID] = *pos
	s.mu.Unlock()
	metrics.TelemetryUpdates.Inc()

	if s.store != nil {
		if err := s.store.Insert(ctx, pos); err != nil {
			slog.WarnContext(ctx, "persist drone position", "drone_id", pos.DroneID, "error", err)
		}
	}
	return nil
}

// Latest returns the most recent fresh position for droneID.
func (s *TelemetryService) Latest(droneID string) (*domain.DronePosition, bool) {
	s.mu.RLock()
	pos, ok := s.latest[droneID]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.maxAge > 0 && s.now().Sub(pos.Time) > s.maxAge {
		return nil, false
	}
	return &pos, true
}

// NearbyDrone is a fresh fix within a search radius and its distance in meters.
type NearbyDrone struct {
	domain.DronePosition
	Distance float64 `json:"distance"`
}

// Nearby returns drones with a fresh fix within radiusMeters of center,
// closest first.
func (s *TelemetryService) Nearby(center domain.GeoPoint, radiusMeters float64) []NearbyDrone {
	box := geospatial.BoundingBox(center.Lat, center.Lng, radiusMeters)
	now := s.now()

	s.mu.RLock()
	var out []NearbyDrone
	for _, pos := range s.latest {
		if s.maxAge > 0 && now.Sub(pos.Time) > s.maxAge {
			continue
		}
		loc := pos.Location
		if loc.Lat < box.MinLat || loc.Lat > box.MaxLat || loc.Lng < box.MinLng || loc.Lng > box.MaxLng {
			continue
		}
		if d := geospatial.Distance(center, loc); d <= radiusMeters {
			out = append(out, NearbyDrone{DronePosition: pos, Distance: d})
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].DroneID < out[j].DroneID
	})
	return out
}
