package sim

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempest/internal/domain/world"
)

func TestNewSessionPopulatesWorld(t *testing.T) {
	tn := DefaultTuning()
	rng := rand.New(rand.NewSource(3))

	s, events := NewSession("s1", 3, tn, rng, NewSpawner(tn))

	assert.Equal(t, tn.PlayerStart, s.PlayerPos)
	assert.Equal(t, world.TileTown, s.Grid.At(tn.Town))
	assert.Equal(t, 1, s.Kingdom.Day)
	assert.Equal(t, ModeMap, s.Mode)
	assert.True(t, s.Playing())
	assert.Greater(t, s.Entities.CountLiving(KindResource), 0)
	monsters := s.Entities.Living(KindEnemy)
	assert.NotEmpty(t, monsters)
	assert.LessOrEqual(t, len(monsters), tn.InitialMonsters)
	for _, m := range monsters {
		assert.GreaterOrEqual(t, m.Pos.Dist(tn.Town), tn.SafeZone)
	}
	require.Len(t, s.Messages, 1)
	assert.Equal(t, SenderSystem, s.Messages[0].Sender)
	require.Len(t, events, 1)
	assert.Equal(t, EventSessionStarted, events[0].Type)
}

func TestCheckGameOverFiresOnce(t *testing.T) {
	s := blankSession(testTuning())
	s.Player.HP = 0

	_, first := s.CheckGameOver()
	_, second := s.CheckGameOver()

	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Len(t, s.Messages, 1)
}

func TestCheckGameOverIgnoresLivingPlayer(t *testing.T) {
	s := blankSession(testTuning())
	_, over := s.CheckGameOver()
	assert.False(t, over)
	assert.True(t, s.Playing())
}

func TestRestartRestoresBaseline(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Player = PlayerStats{HP: 0, MaxHP: 90000, Rank: RankS, Effects: []StatusEffect{{Name: "Poison"}}}
	s.Phase = PhaseGameOver
	s.Mode = ModeBattle
	s.Kingdom.Day = 9
	s.Tribe = []TribeMember{{ID: "1", Name: "Ranga"}}
	s.AddMessage(SenderSystem, "old")

	evt := s.Restart(tn)

	assert.Equal(t, EventSessionRestarted, evt.Type)
	assert.Equal(t, BaselinePlayer(tn), s.Player)
	assert.True(t, s.Playing())
	assert.Equal(t, ModeMap, s.Mode)
	assert.Equal(t, 9, s.Kingdom.Day)
	assert.Len(t, s.Tribe, 1)
	assert.Empty(t, s.Messages)
}

func TestToggleTown(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)

	_, ok := s.ToggleTown()
	require.True(t, ok)
	assert.Equal(t, ModeTown, s.Mode)

	_, ok = s.ToggleTown()
	require.True(t, ok)
	assert.Equal(t, ModeMap, s.Mode)

	s.PlayerPos = world.Point{X: 0, Y: 0}
	_, ok = s.ToggleTown()
	assert.False(t, ok)
	assert.Equal(t, ModeMap, s.Mode)
}

func TestSyncTribePlacesLoyalMembersOnRing(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Tribe = []TribeMember{
		{ID: "1", Name: "Ranga", Race: "Tempest Wolf", Job: JobGuard, Power: 800},
		{ID: "2", Name: "Gelmud", Race: "Majin", Job: JobTraitor, Power: 9000},
		{ID: "3", Name: "Gobta", Race: "Hobgoblin", Job: JobHunter, Power: 300},
	}

	s.SyncTribe(tn)

	allies := s.Entities.Living(KindAlly)
	require.Len(t, allies, 2)
	ranga, ok := s.Entities.Get("ally:1")
	require.True(t, ok)
	assert.Equal(t, world.Point{X: 13, Y: 10}, ranga.Pos)
	assert.Equal(t, "TEMPEST WOLF", ranga.SubType)
	gobta, ok := s.Entities.Get("ally:3")
	require.True(t, ok)
	assert.Equal(t, world.Point{X: 7, Y: 10}, gobta.Pos)
	_, ok = s.Entities.Get("ally:2")
	assert.False(t, ok)

	s.Tribe = s.Tribe[:1]
	s.SyncTribe(tn)

	assert.Equal(t, 1, s.Entities.CountLiving(KindAlly))
	gobta, _ = s.Entities.Get("ally:3")
	assert.True(t, gobta.Defeated)
}

func TestAddMessageIsBounded(t *testing.T) {
	s := blankSession(testTuning())
	for i := 0; i < MaxMessages+25; i++ {
		s.AddMessage(SenderUser, "hi")
	}
	assert.Len(t, s.Messages, MaxMessages)
}

func TestArenaOverwriteAndCompact(t *testing.T) {
	a := NewArena(enemyAt("e1", 1, 1, 10, RankE), enemyAt("e2", 2, 2, 10, RankE))

	a.Add(enemyAt("e1", 5, 5, 99, RankE))
	assert.Equal(t, 2, a.Len())
	e1, _ := a.Get("e1")
	assert.Equal(t, 99, e1.Power)

	e1.Defeated = true
	_, ok := a.Occupant(world.Point{X: 5, Y: 5})
	assert.False(t, ok)
	assert.Equal(t, 1, a.CountLiving(KindEnemy))

	assert.Equal(t, 1, a.Compact())
	assert.Equal(t, 1, a.Len())
	_, ok = a.Get("e1")
	assert.False(t, ok)
	e2, ok := a.Get("e2")
	require.True(t, ok)
	assert.Equal(t, world.Point{X: 2, Y: 2}, e2.Pos)
}

func TestArenaJSONRoundTrip(t *testing.T) {
	a := NewArena(enemyAt("e1", 1, 1, 10, RankC))

	b, err := json.Marshal(a)
	require.NoError(t, err)

	var back Arena
	require.NoError(t, json.Unmarshal(b, &back))
	got, ok := back.Get("e1")
	require.True(t, ok)
	assert.Equal(t, RankC, got.Rank)

	b, err = json.Marshal(NewArena())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestSessionStateNullEntitiesLoadAsEmptyArena(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Entities = nil

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"entities":null`)

	var back SessionState
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.Entities)
	assert.Equal(t, 0, back.Entities.Len())

	assert.NotPanics(t, func() { Tick(&back, &scriptRand{}, tn) })
}

func TestMaintainCompactsOnlyPastThreshold(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	for i := 0; i < CompactDefeatedAbove; i++ {
		e := enemyAt(fmt.Sprintf("dead-%d", i), 0, 0, 10, RankE)
		e.Defeated = true
		s.Entities.Add(e)
	}
	s.Entities.Add(enemyAt("alive", 5, 5, 10, RankE))

	assert.Equal(t, 0, s.Maintain())
	assert.Equal(t, CompactDefeatedAbove+1, s.Entities.Len())

	dead := enemyAt("one-more", 0, 1, 10, RankE)
	dead.Defeated = true
	s.Entities.Add(dead)

	assert.Equal(t, CompactDefeatedAbove+1, s.Maintain())
	assert.Equal(t, 1, s.Entities.Len())
	_, ok := s.Entities.Get("alive")
	assert.True(t, ok)
}

func TestSessionStateJSONRoundTrip(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Entities.Add(enemyAt("e1", 3, 3, 10, RankD))
	s.Player.Rank = RankBPlus

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var back SessionState
	require.NoError(t, json.Unmarshal(b, &back))

	assert.Equal(t, s.Grid.Tiles, back.Grid.Tiles)
	assert.Equal(t, RankBPlus, back.Player.Rank)
	assert.Equal(t, 1, back.Entities.Len())
	assert.Equal(t, s.PlayerPos, back.PlayerPos)
}
