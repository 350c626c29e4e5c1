package observe

import (
	"tempest/internal/domain/sim"
	"tempest/internal/domain/world"
)

type Request struct {
	SessionID string
}

type Response struct {
	Snapshot     world.Snapshot  `json:"snapshot"`
	Entities     []sim.Entity    `json:"entities"`
	Player       sim.PlayerStats `json:"player"`
	Mode         sim.Mode        `json:"mode"`
	Phase        sim.Phase       `json:"phase"`
	Day          int             `json:"day"`
	VisualEvents []string        `json:"visual_events"`
	DamageFlash  bool            `json:"damage_flash"`
}
