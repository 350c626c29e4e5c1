package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"tempest/internal/domain/world"
)

type NarrativeContext string

const (
	ContextCombatAction NarrativeContext = "Combat Action"
	ContextCombatRound  NarrativeContext = "Combat Round"
	ContextTown         NarrativeContext = "Town Management"
	ContextGeneral      NarrativeContext = "General"
	ContextMission      NarrativeContext = "Mission Dispatch"
)

func (c NarrativeContext) Combat() bool {
	return strings.Contains(string(c), "Combat")
}

// CommandContext picks the context of a free-text command from the mode.
func CommandContext(m Mode) NarrativeContext {
	switch m {
	case ModeBattle:
		return ContextCombatRound
	case ModeTown:
		return ContextTown
	default:
		return ContextGeneral
	}
}

// NarrativeRequest is what the narrator receives for one turn.
type NarrativeRequest struct {
	SessionID string           `json:"session_id"`
	Day       int              `json:"day"`
	Context   NarrativeContext `json:"context"`
	Action    string           `json:"action"`
	Stats     PlayerStats      `json:"stats"`
	Kingdom   Kingdom          `json:"kingdom"`
	Tribe     []TribeMember    `json:"tribe"`
	History   []Message        `json:"history"`
}

// HistoryWindow is how many past user and gm lines the narrator sees.
const HistoryWindow = 8

func NewNarrativeRequest(s *SessionState, ctx NarrativeContext, action string) NarrativeRequest {
	stats := s.Player
	stats.Effects = append([]StatusEffect(nil), s.Player.Effects...)
	kingdom := s.Kingdom
	kingdom.Buildings = append([]Building(nil), s.Kingdom.Buildings...)
	kingdom.Factions = append([]Faction(nil), s.Kingdom.Factions...)
	return NarrativeRequest{
		SessionID: s.ID,
		Day:       s.Kingdom.Day,
		Context:   ctx,
		Action:    action,
		Stats:     stats,
		Kingdom:   kingdom,
		Tribe:     append([]TribeMember(nil), s.Tribe...),
		History:   recentHistory(s.Messages, action),
	}
}

// recentHistory keeps the newest user and gm lines, oldest first. The
// action being narrated is dropped when it was already echoed.
func recentHistory(messages []Message, action string) []Message {
	end := len(messages)
	if end > 0 && messages[end-1].Sender == SenderUser && messages[end-1].Text == action {
		end--
	}
	var out []Message
	for i := end - 1; i >= 0 && len(out) < HistoryWindow; i-- {
		if m := messages[i]; m.Sender == SenderUser || m.Sender == SenderGM {
			out = append(out, m)
		}
	}
	slices.Reverse(out)
	return out
}

// Prompt renders the turn header the narrator keys on.
func (r NarrativeRequest) Prompt() string {
	effects := r.Stats.Effects
	if effects == nil {
		effects = []StatusEffect{}
	}
	b, _ := json.Marshal(effects)
	return fmt.Sprintf("[DAY: %d] [CONTEXT: %s] %s [ACTIVE EFFECTS: %s]", r.Day, r.Context, r.Action, b)
}

// MissionAction describes a dispatch of a tribe member.
func MissionAction(member TribeMember, missionType string) string {
	return fmt.Sprintf("I sent my subordinate %s (%s, Power %d) on a %s mission. "+
		"Resolve it from luck and their power: critical success, success, failure with injury, "+
		"disaster (permanent death or betrayal) or an encounter with an NPC or faction. Describe what happened.",
		member.Name, member.Race, member.Power, missionType)
}

type MapUpdate struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	TileType string `json:"tileType"`
}

const (
	OutcomeVictory = "victory"
	OutcomeDefeat  = "defeat"
	OutcomeOngoing = "ongoing"
)

// NarrativeDelta is the structured answer of the narrator. Nil Stats,
// Kingdom or Tribe leave the session value untouched.
type NarrativeDelta struct {
	Narrative     string        `json:"narrative"`
	VisualPanels  []string      `json:"visualPanels"`
	Stats         *PlayerStats  `json:"statsUpdate,omitempty"`
	Kingdom       *Kingdom      `json:"kingdomUpdate,omitempty"`
	Tribe         []TribeMember `json:"tribeUpdates"`
	VisualEvents  []string      `json:"visualEvents"`
	MapUpdates    []MapUpdate   `json:"mapUpdates,omitempty"`
	EventSummary  string        `json:"eventSummary,omitempty"`
	CombatOutcome string        `json:"combatOutcome,omitempty"`
}

const (
	ConnectionErrorEvent = "CONNECTION ERROR"
	MapChangedEvent      = "MAP CHANGED"

	fallbackNarrative      = "The Great Sage failed to compute the causality of the world. Try again."
	fallbackQuotaNarrative = "The Great Sage sensed a disturbance in the flow of magicules (API quota exceeded). Recovering mana..."
)

// FallbackDelta is merged in place of a narrator answer that never came.
// It changes no stats and carries exactly one connection error event.
func FallbackDelta(quota bool) NarrativeDelta {
	msg := fallbackNarrative
	if quota {
		msg = fallbackQuotaNarrative
	}
	return NarrativeDelta{
		Narrative:    msg,
		VisualPanels: []string{},
		VisualEvents: []string{ConnectionErrorEvent},
	}
}

// MergeNarrative folds a narrator answer into the session. Max HP/MP,
// status effects and the day counter always keep their pre-call values.
func MergeNarrative(s *SessionState, d NarrativeDelta, t Tuning) []DomainEvent {
	if d.Stats != nil {
		next := *d.Stats
		next.MaxHP = s.Player.MaxHP
		next.MaxMP = s.Player.MaxMP
		next.Effects = s.Player.Effects
		next.Clamp()
		s.Player = next
	}
	if d.Kingdom != nil {
		next := *d.Kingdom
		next.Day = s.Kingdom.Day
		next.Loyalty = clamp(next.Loyalty, 0, 100)
		if next.Buildings == nil {
			next.Buildings = []Building{}
		}
		if next.Factions == nil {
			next.Factions = []Faction{}
		}
		s.Kingdom = next
	}
	if d.Tribe != nil {
		s.Tribe = d.Tribe
		s.SyncTribe(t)
	}
	s.VisualEvents = append(s.VisualEvents, d.VisualEvents...)

	applied := 0
	for _, u := range d.MapUpdates {
		if s.Grid.Set(world.Point{X: u.X, Y: u.Y}, world.ParseTileKind(u.TileType)) {
			applied++
		}
	}
	if len(d.MapUpdates) > 0 {
		s.VisualEvents = append(s.VisualEvents, MapChangedEvent)
	}
	if d.Narrative != "" {
		s.AddMessage(SenderGM, d.Narrative)
	}

	return []DomainEvent{newEvent(EventNarrativeApplied, map[string]any{
		"summary":     d.EventSummary,
		"map_updates": applied,
		"tribe_size":  len(s.Tribe),
	})}
}

// ResolveCombat closes a fight the narrator declared won: the enemy on the
// player's tile is defeated and the player absorbs part of its soul.
func ResolveCombat(s *SessionState, ctx NarrativeContext, d NarrativeDelta, t Tuning) (DomainEvent, bool) {
	if !ctx.Combat() || !victorious(d, t.VictoryKeywords) {
		return DomainEvent{}, false
	}
	var slain []string
	for i := 0; i < s.Entities.Len(); i++ {
		e := s.Entities.At(i)
		if e.Kind == KindEnemy && e.Alive() && e.Pos == s.PlayerPos {
			e.Defeated = true
			e.HP = 0
			slain = append(slain, e.SubType)
		}
	}
	s.Mode = ModeMap
	s.Player.HP = min(s.Player.MaxHP, s.Player.HP+int(math.Floor(float64(s.Player.MaxHP)*VictoryHealShare)))
	s.Player.MP = min(s.Player.MaxMP, s.Player.MP+int(math.Floor(float64(s.Player.MaxMP)*VictoryHealShare)))
	s.VisualEvents = append(s.VisualEvents, "+HP (Soul)")
	return newEvent(EventCombatWon, map[string]any{"slain": slain, "hp": s.Player.HP}), true
}

func victorious(d NarrativeDelta, keywords []string) bool {
	switch d.CombatOutcome {
	case OutcomeVictory:
		return true
	case OutcomeDefeat, OutcomeOngoing:
		return false
	}
	text := strings.ToLower(d.Narrative)
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
