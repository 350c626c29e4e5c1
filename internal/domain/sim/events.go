package sim

import "time"

type DomainEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

const (
	EventSessionStarted    = "session_started"
	EventSessionRestarted  = "session_restarted"
	EventDayStarted        = "day_started"
	EventRaidTriggered     = "raid_triggered"
	EventEnemySlain        = "enemy_slain"
	EventTownDamaged       = "town_damaged"
	EventBuildingDestroyed = "building_destroyed"
	EventResourceGathered  = "resource_gathered"
	EventEncounterStarted  = "encounter_started"
	EventCombatWon         = "combat_won"
	EventNarrativeApplied  = "narrative_applied"
	EventOracleFailed      = "oracle_failed"
	EventModeChanged       = "mode_changed"
	EventGameOver          = "game_over"
)

func newEvent(kind string, payload map[string]any) DomainEvent {
	return DomainEvent{Type: kind, Payload: payload}
}

// Stamp sets OccurredAt on events that do not carry a time yet.
func Stamp(events []DomainEvent, at time.Time) []DomainEvent {
	for i := range events {
		if events[i].OccurredAt.IsZero() {
			events[i].OccurredAt = at
		}
	}
	return events
}
