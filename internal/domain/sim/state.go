package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"tempest/internal/domain/world"
)

type Mode string

const (
	ModeMap    Mode = "MAP"
	ModeBattle Mode = "BATTLE"
	ModeTown   Mode = "TOWN"
)

type Phase string

const (
	PhasePlaying  Phase = "PLAYING"
	PhaseGameOver Phase = "GAME_OVER"
)

type Sender string

const (
	SenderSystem Sender = "system"
	SenderGM     Sender = "gm"
	SenderUser   Sender = "user"
)

type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Day    int    `json:"day"`
}

type RaidAlert struct {
	Name       string    `json:"name"`
	Species    string    `json:"species"`
	Count      int       `json:"count"`
	Day        int       `json:"day"`
	Multiplier float64   `json:"multiplier"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Active reports whether the alert should still be shown at now.
func (a *RaidAlert) Active(now time.Time) bool {
	return a != nil && now.Before(a.ExpiresAt)
}

const (
	welcomeMessage  = "Welcome to the New World! Monsters roam the forest, but they will not come near the village unless it is a raid."
	gameOverMessage = "WARNING: the slime's structural integrity is compromised. HP 0. Game over."
)

// SessionState is everything one player session owns.
type SessionState struct {
	ID           string        `json:"id"`
	Version      int64         `json:"version"`
	Seed         int64         `json:"seed"`
	Grid         world.Grid    `json:"grid"`
	Entities     *Arena        `json:"entities"`
	PlayerPos    world.Point   `json:"player_pos"`
	Player       PlayerStats   `json:"player"`
	Kingdom      Kingdom       `json:"kingdom"`
	Tribe        []TribeMember `json:"tribe"`
	TurnCounter  int           `json:"turn_counter"`
	Mode         Mode          `json:"mode"`
	Phase        Phase         `json:"phase"`
	Messages     []Message     `json:"messages"`
	VisualEvents []string      `json:"visual_events"`
	DamageFlash  bool          `json:"damage_flash"`
	RaidAlert    *RaidAlert    `json:"raid_alert,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewSession generates a world and populates it with resources and the
// opening monster population.
func NewSession(id string, seed int64, t Tuning, rng Rand, sp Spawner) (*SessionState, []DomainEvent) {
	terrain := world.Generate(t.TerrainConfig(seed), rng)
	s := &SessionState{
		ID:           id,
		Seed:         seed,
		Grid:         terrain.Grid,
		Entities:     NewArena(sp.ResourceEntities(terrain.Resources)...),
		PlayerPos:    t.PlayerStart,
		Player:       BaselinePlayer(t),
		Kingdom:      InitialKingdom(),
		Tribe:        []TribeMember{},
		Mode:         ModeMap,
		Phase:        PhasePlaying,
		VisualEvents: []string{},
	}
	for _, e := range sp.Spawn(rng, s.Grid, t.InitialMonsters, false, DifficultyOf(s, t)) {
		s.Entities.Add(e)
	}
	s.AddMessage(SenderSystem, welcomeMessage)

	return s, []DomainEvent{newEvent(EventSessionStarted, map[string]any{
		"seed":      seed,
		"resources": len(terrain.Resources),
		"monsters":  s.Entities.CountLiving(KindEnemy),
	})}
}

func (s *SessionState) Playing() bool {
	return s.Phase == PhasePlaying
}

// AddMessage appends to the transcript, keeping only the newest entries.
func (s *SessionState) AddMessage(sender Sender, text string) {
	s.Messages = append(s.Messages, Message{Sender: sender, Text: text, Day: s.Kingdom.Day})
	if over := len(s.Messages) - MaxMessages; over > 0 {
		s.Messages = append([]Message(nil), s.Messages[over:]...)
	}
}

// ClearTransient resets the per-intent presentation signals.
func (s *SessionState) ClearTransient() {
	s.VisualEvents = []string{}
	s.DamageFlash = false
}

// CheckGameOver moves a playing session with no HP left into the terminal
// phase. It reports true only on the transition itself.
func (s *SessionState) CheckGameOver() (DomainEvent, bool) {
	if s.Player.HP > 0 || s.Phase == PhaseGameOver {
		return DomainEvent{}, false
	}
	s.Phase = PhaseGameOver
	s.AddMessage(SenderSystem, gameOverMessage)
	return newEvent(EventGameOver, map[string]any{
		"day": s.Kingdom.Day,
		"x":   s.PlayerPos.X,
		"y":   s.PlayerPos.Y,
	}), true
}

// Restart puts the player back to the baseline stat block. The world,
// kingdom and tribe are kept.
func (s *SessionState) Restart(t Tuning) DomainEvent {
	s.Player = BaselinePlayer(t)
	s.Phase = PhasePlaying
	s.Mode = ModeMap
	s.Messages = nil
	s.ClearTransient()
	return newEvent(EventSessionRestarted, map[string]any{"day": s.Kingdom.Day})
}

// ToggleTown switches between the map and the town view. Only allowed
// while standing on a town tile.
func (s *SessionState) ToggleTown() (DomainEvent, bool) {
	if !s.Playing() || s.Grid.At(s.PlayerPos) != world.TileTown {
		return DomainEvent{}, false
	}
	from := s.Mode
	if s.Mode == ModeMap {
		s.Mode = ModeTown
		s.AddMessage(SenderSystem, "Entering the village...")
	} else {
		s.Mode = ModeMap
		s.AddMessage(SenderSystem, "Leaving the village...")
	}
	return newEvent(EventModeChanged, map[string]any{"from": string(from), "to": string(s.Mode)}), true
}

// SyncTribe mirrors loyal tribe members as allies standing on a ring
// around the town. Allies whose member is gone are marked defeated.
func (s *SessionState) SyncTribe(t Tuning) {
	loyal := make([]TribeMember, 0, len(s.Tribe))
	for _, m := range s.Tribe {
		if m.Loyal() {
			loyal = append(loyal, m)
		}
	}
	n := max(len(loyal), 1)
	present := make(map[string]bool, len(loyal))
	for i, m := range loyal {
		angle := float64(i) / float64(n) * 2 * math.Pi
		id := allyID(m)
		present[id] = true
		s.Entities.Add(Entity{
			ID:      id,
			Kind:    KindAlly,
			SubType: strings.ToUpper(m.Race),
			Label:   m.Name,
			Power:   m.Power,
			Pos: world.Point{
				X: int(math.Floor(float64(t.Town.X) + math.Cos(angle)*t.AllyRingRadius)),
				Y: int(math.Floor(float64(t.Town.Y) + math.Sin(angle)*t.AllyRingRadius)),
			},
		})
	}
	for i := 0; i < s.Entities.Len(); i++ {
		e := s.Entities.At(i)
		if e.Kind == KindAlly && e.Alive() && !present[e.ID] {
			e.Defeated = true
		}
	}
}

func allyID(m TribeMember) string {
	if m.ID == "" {
		return "ally:" + m.Name
	}
	return "ally:" + m.ID
}

// Member returns the tribe member with id.
func (s *SessionState) Member(id string) (TribeMember, bool) {
	for _, m := range s.Tribe {
		if m.ID == id {
			return m, true
		}
	}
	return TribeMember{}, false
}

// UnmarshalJSON restores a stored session. A snapshot without entities
// still yields a usable arena.
func (s *SessionState) UnmarshalJSON(data []byte) error {
	type stored SessionState
	var v stored
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SessionState(v)
	if s.Entities == nil {
		s.Entities = NewArena()
	}
	return nil
}

// Maintain compacts the entity arena once enough defeated entries have
// piled up. Callers run it between ticks, never inside one.
func (s *SessionState) Maintain() int {
	if s.Entities.Defeated() <= CompactDefeatedAbove {
		return 0
	}
	return s.Entities.Compact()
}

func (s *SessionState) String() string {
	return fmt.Sprintf("session %s day=%d turn=%d hp=%d/%d mode=%s phase=%s",
		s.ID, s.Kingdom.Day, s.TurnCounter, s.Player.HP, s.Player.MaxHP, s.Mode, s.Phase)
}
