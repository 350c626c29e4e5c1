package status

import "tempest/internal/domain/sim"

type Request struct {
	SessionID string
}

type Response struct {
	State           *sim.SessionState `json:"state"`
	Difficulty      float64           `json:"difficulty"`
	TribePower      int               `json:"tribe_power"`
	EffectiveEP     int               `json:"effective_ep"`
	ActionsLeft     int               `json:"actions_left_today"`
	NextRaid        sim.RaidProfile   `json:"next_raid"`
	RaidAlertActive bool              `json:"raid_alert_active"`
	LivingEnemies   int               `json:"living_enemies"`
}

type BestiaryEntry struct {
	Name      string              `json:"name"`
	Weight    float64             `json:"weight"`
	BasePower int                 `json:"base_power"`
	Rank      string              `json:"rank"`
	Special   *sim.SpecialAbility `json:"special,omitempty"`
}
