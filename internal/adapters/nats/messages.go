package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/skyscan/internal/core/domain"
)

// Subjects. The trailing token is the drone id.
const (
	SubjectMissionPrefix  = "flight.mission."
	SubjectAbortPrefix    = "flight.abort."
	SubjectPositionPrefix = "telemetry.position."
	SubjectPositionAll    = "telemetry.position.>"
)

// MissionCommand is the payload a drone receives to start a survey.
type MissionCommand struct {
	MissionID string              `json:"mission_id"`
	DroneID   string              `json:"drone_id"`
	Altitude  float64             `json:"altitude"`
	Waypoints []domain.RoutePoint `json:"waypoints"`
	Metrics   domain.PathMetrics  `json:"metrics"`
	IssuedAt  time.Time           `json:"issued_at"`
}

// AbortCommand tells a drone to stop flying a mission.
type AbortCommand struct {
	MissionID string    `json:"mission_id"`
	DroneID   string    `json:"drone_id"`
	IssuedAt  time.Time `json:"issued_at"`
}

func newMissionCommand(m *domain.Mission, at time.Time) MissionCommand {
	return MissionCommand{
		MissionID: m.ID,
		DroneID:   m.DroneID,
		Altitude:  m.Settings.Altitude,
		Waypoints: m.Plan.Route,
		Metrics:   m.Plan.Metrics,
		IssuedAt:  at.UTC(),
	}
}

// subjectToken makes an id safe to use as a single subject token.
func subjectToken(id string) (string, error) {
	if err := domain.ValidateDroneID(id); err != nil {
		return "", err
	}
	return id, nil
}

// decodePosition parses a telemetry message. The drone id falls back to the
// subject's last token when the payload omits it.
func decodePosition(subject string, data []byte) (*domain.DronePosition, error) {
	var pos domain.DronePosition
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil, fmt.Errorf("decode position: %w", err)
	}
	if pos.DroneID == "" {
		pos.DroneID = strings.TrimPrefix(subject, SubjectPositionPrefix)
	}
	return &pos, nil
}
