package replay

import "tempest/internal/domain/sim"

type Request struct {
	SessionID    string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type Summary struct {
	LatestDay         int `json:"latest_day"`
	Raids             int `json:"raids"`
	Kills             int `json:"kills"`
	BuildingsLost     int `json:"buildings_lost"`
	ResourcesGathered int `json:"resources_gathered"`
	OracleFailures    int `json:"oracle_failures"`
	GameOvers         int `json:"game_overs"`
}

type Response struct {
	Events  []sim.DomainEvent `json:"events"`
	Summary Summary           `json:"summary"`
}
