package sim

import (
	"fmt"

	"tempest/internal/domain/world"
)

type RejectReason string

const (
	RejectGameOver    RejectReason = "game_over"
	RejectTownMode    RejectReason = "town_mode"
	RejectOutOfBounds RejectReason = "out_of_bounds"
	RejectBlocked     RejectReason = "blocked_tile"
	RejectNotInTown   RejectReason = "not_in_town"
	RejectNotOnTown   RejectReason = "not_on_town_tile"
	RejectUnknownAlly RejectReason = "unknown_member"
	RejectEmptyAction RejectReason = "empty_action"
)

// MoveOutcome describes what a move did. Rejected moves leave the session
// untouched.
type MoveOutcome struct {
	Accepted  bool
	Reason    RejectReason
	Time      TimeReport
	Encounter *Entity
	Gathered  *Entity
	GameOver  bool
	Events    []DomainEvent
}

// ResolveMove validates a move to target and applies it: the player steps,
// one unit of time passes, then whatever stands on the destination is
// engaged.
func ResolveMove(s *SessionState, target world.Point, rng Rand, sp Spawner, t Tuning) MoveOutcome {
	switch {
	case !s.Playing():
		return MoveOutcome{Reason: RejectGameOver}
	case s.Mode == ModeTown:
		return MoveOutcome{Reason: RejectTownMode}
	case !s.Grid.InBounds(target):
		return MoveOutcome{Reason: RejectOutOfBounds}
	case !s.Grid.At(target).Walkable():
		return MoveOutcome{Reason: RejectBlocked}
	}

	out := MoveOutcome{Accepted: true}
	s.PlayerPos = target
	out.Time = AdvanceTime(s, rng, sp, t)
	out.Events = append(out.Events, out.Time.Events...)

	if evt, over := s.CheckGameOver(); over {
		out.GameOver = true
		out.Events = append(out.Events, evt)
		return out
	}

	if s.Grid.At(target) == world.TileTown && s.Mode != ModeTown {
		s.VisualEvents = append(s.VisualEvents, "Press F to enter the village")
	}

	occupant, ok := s.Entities.Occupant(target)
	if !ok {
		return out
	}
	switch occupant.Kind {
	case KindEnemy:
		s.Mode = ModeBattle
		s.AddMessage(SenderSystem, fmt.Sprintf("Combat: %s (Rank %s)", occupant.SubType, occupant.Rank))
		enemy := *occupant
		out.Encounter = &enemy
		out.Events = append(out.Events, newEvent(EventEncounterStarted, map[string]any{
			"entity_id": enemy.ID,
			"species":   enemy.SubType,
			"rank":      enemy.Rank.String(),
			"power":     enemy.Power,
		}))
	case KindResource:
		occupant.Defeated = true
		s.Kingdom.Materials += ResourceMaterials
		s.AddMessage(SenderSystem, fmt.Sprintf("Gathered: %s", resourceName(occupant.SubType)))
		s.VisualEvents = append(s.VisualEvents, fmt.Sprintf("+%d %s", ResourceMaterials, occupant.SubType))
		res := *occupant
		out.Gathered = &res
		out.Events = append(out.Events, newEvent(EventResourceGathered, map[string]any{
			"entity_id": res.ID,
			"kind":      res.SubType,
			"materials": s.Kingdom.Materials,
		}))
	}
	return out
}

// EncounterAction is the action text sent to the narrator when the player
// walks into a monster.
func EncounterAction(e Entity) string {
	return fmt.Sprintf("I attacked %s (Power: %d, Rank: %s, HP: %d).", e.SubType, e.Power, e.Rank, e.HP)
}

func resourceName(kind string) string {
	if kind == string(world.ResourceHerb) {
		return "Herbs"
	}
	return "Ore"
}
