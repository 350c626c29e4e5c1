package session

import "tempest/internal/domain/sim"

type MoveRequest struct {
	SessionID string
	X         *int
	Y         *int
	Direction string
}

type CommandRequest struct {
	SessionID string
	Text      string
}

type MissionRequest struct {
	SessionID   string
	MemberID    string
	MissionType string
}

type Response struct {
	Accepted     bool              `json:"accepted"`
	Reason       sim.RejectReason  `json:"reason,omitempty"`
	Narrative    string            `json:"narrative,omitempty"`
	VisualEvents []string          `json:"visual_events"`
	State        *sim.SessionState `json:"state"`
}
