package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// MissionStatus is the lifecycle state of a persisted mission.
type MissionStatus string

const (
	MissionPlanned    MissionStatus = "planned"
	MissionDispatched MissionStatus = "dispatched"
	MissionAborted    MissionStatus = "aborted"
)

// Mission is a planned survey stored for later dispatch to a drone.
type Mission struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Boundary     BoundaryPolygon `json:"boundary"`
	Settings     SurveySettings  `json:"settings"`
	Plan         SurveyPlan      `json:"plan"`
	Status       MissionStatus   `json:"status"`
	DroneID      string          `json:"drone_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
}

// DronePosition is a live telemetry fix reported by a drone.
type DronePosition struct {
	DroneID  string    `json:"drone_id"`
	Location GeoPoint  `json:"location"`
	Altitude float64   `json:"altitude"` // meters
	Heading  float64   `json:"heading"`  // degrees
	Speed    float64   `json:"speed"`    // m/s
	Time     time.Time `json:"time"`
}

// MaxDroneIDLength bounds drone ids so they stay usable as message subject tokens.
const MaxDroneIDLength = 64

// ValidateDroneID checks that id can address a drone on the command bus:
// non-empty, at most MaxDroneIDLength bytes, with no whitespace, control
// characters or the subject metacharacters '.', '*' and '>'.
func ValidateDroneID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDroneID)
	}
	if len(id) > MaxDroneIDLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidDroneID, MaxDroneIDLength)
	}
	if strings.IndexFunc(id, func(r rune) bool {
		return r == '.' || r == '*' || r == '>' || unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidDroneID, id)
	}
	return nil
}
