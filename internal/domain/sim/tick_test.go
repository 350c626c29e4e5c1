package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempest/internal/domain/world"
)

func TestTickClampsHPAtZero(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Player.HP = 10
	s.Player.Effects = []StatusEffect{{Name: "Doom", Kind: EffectDebuff, Duration: 3, DamagePerTurn: 2}}

	r := Tick(s, &scriptRand{}, tn)

	assert.Equal(t, 2*s.Player.MaxHP, r.Damage)
	assert.Equal(t, 0, s.Player.HP)
}

func TestTickClampsSoulAbsorptionAtMax(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	s.Player.HP = s.Player.MaxHP - 1
	s.Player.MP = s.Player.MaxMP - 1

	enemy := enemyAt("e1", 3, 2, 10, RankE)
	enemy.HP = 1
	enemy.MaxHP = 100000
	enemy.MaxMP = 100000
	s.Entities.Add(enemy)
	s.Entities.Add(Entity{ID: "a1", Kind: KindAlly, Label: "Gobta", Pos: world.Point{X: 2, Y: 2}, Power: 500})

	r := Tick(s, &scriptRand{floats: []float64{0.5}}, tn)

	assert.Equal(t, 10000, r.SoulHP)
	assert.Equal(t, s.Player.MaxHP, s.Player.HP)
	assert.Equal(t, s.Player.MaxMP, s.Player.MP)
}

func TestTickAllyKillGrantsSoulAndSoftDeletes(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	s.Player.HP = 4000
	s.Player.MP = 9000

	enemy := enemyAt("e1", 3, 2, 100, RankE)
	enemy.HP = 100
	enemy.MaxHP = 1005
	enemy.MaxMP = 505
	s.Entities.Add(enemy)
	s.Entities.Add(Entity{ID: "a1", Kind: KindAlly, Label: "Ranga", Pos: world.Point{X: 2, Y: 2}, Power: 1000})

	r := Tick(s, &scriptRand{floats: []float64{0.5}}, tn)

	got, ok := s.Entities.Get("e1")
	require.True(t, ok)
	assert.True(t, got.Defeated)
	assert.Equal(t, 0, got.HP)
	assert.Equal(t, 2, s.Entities.Len())
	assert.Equal(t, 100, r.SoulHP)
	assert.Equal(t, 50, r.SoulMP)
	assert.Equal(t, 4100, s.Player.HP)
	assert.Equal(t, 9050, s.Player.MP)
	require.Len(t, r.Events, 1)
	assert.Equal(t, EventEnemySlain, r.Events[0].Type)
}

func TestTickIgnoresDefeatedEnemies(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	enemy := enemyAt("e1", 10, 16, 5000, RankS)
	enemy.Defeated = true
	s.Entities.Add(enemy)

	r := Tick(s, &scriptRand{floats: []float64{0.1, 0.1, 0.5}}, tn)

	assert.Zero(t, r.Damage)
	assert.Equal(t, s.Player.MaxHP, s.Player.HP)
	assert.Equal(t, 1, s.Entities.Len())
	_, occupied := s.Entities.Occupant(world.Point{X: 10, Y: 16})
	assert.False(t, occupied)
}

func TestTickStatusEffectDurationOneAppliesOnceMore(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Player.Effects = []StatusEffect{{Name: "Poison", Kind: EffectDebuff, Duration: 1, DamagePerTurn: 0.01}}

	r := Tick(s, &scriptRand{}, tn)
	assert.Equal(t, 50, r.Damage)
	assert.Equal(t, 4950, s.Player.HP)
	assert.Empty(t, s.Player.Effects)

	r = Tick(s, &scriptRand{}, tn)
	assert.Zero(t, r.Damage)
	assert.Equal(t, 4950, s.Player.HP)
}

func TestTickDecrementsEffectsWithoutDamage(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.Player.Effects = []StatusEffect{{Name: "Fear", Kind: EffectDebuff, Duration: 3}}

	Tick(s, &scriptRand{}, tn)
	require.Len(t, s.Player.Effects, 1)
	assert.Equal(t, 2, s.Player.Effects[0].Duration)

	Tick(s, &scriptRand{}, tn)
	Tick(s, &scriptRand{}, tn)
	assert.Empty(t, s.Player.Effects)
}

func TestRankGapMultiplier(t *testing.T) {
	assert.Equal(t, 2.5, RankGapMultiplier(RankS, RankB))
	assert.Equal(t, 2.0, RankGapMultiplier(RankA, RankB))
	assert.Equal(t, 1.5, RankGapMultiplier(RankBPlus, RankB))
	assert.Equal(t, 1.0, RankGapMultiplier(RankB, RankB))
	assert.Equal(t, 1.0, RankGapMultiplier(RankC, RankB))
	assert.Equal(t, 0.1, RankGapMultiplier(RankD, RankB))
}

func TestTickStandardHitUsesRankGap(t *testing.T) {
	cases := []struct {
		name  string
		rank  Rank
		rolls []float64
		want  int
	}{
		{name: "enemy two tiers above", rank: RankA, rolls: []float64{0.5, 0.5}, want: 600},
		{name: "enemy two tiers below", rank: RankD, rolls: []float64{0.5, 0.5}, want: 30},
		{name: "same tier", rank: RankB, rolls: []float64{0.5, 0.5}, want: 300},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tn := testTuning()
			s := blankSession(tn)
			s.PlayerPos = world.Point{X: 10, Y: 17}
			s.Entities.Add(enemyAt("e1", 10, 16, 1001, tc.rank))

			r := Tick(s, &scriptRand{floats: tc.rolls}, tn)

			assert.Equal(t, tc.want, r.Damage)
			assert.Equal(t, s.Player.MaxHP-tc.want, s.Player.HP)
			assert.True(t, s.DamageFlash)
		})
	}
}

func TestTickBlockNegatesLowRankAttack(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	s.Entities.Add(enemyAt("e1", 10, 16, 1001, RankC))

	r := Tick(s, &scriptRand{floats: []float64{0.9}}, tn)

	assert.Zero(t, r.Damage)
	assert.Contains(t, s.VisualEvents, "Blocked ORC!")
}

func TestTickHighRankIsNeverBlocked(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	s.Entities.Add(enemyAt("e1", 10, 16, 1001, RankA))

	r := Tick(s, &scriptRand{floats: []float64{0.95, 0.5}}, tn)

	assert.Equal(t, 600, r.Damage)
	assert.NotContains(t, s.VisualEvents, "Blocked ORC!")
}

func TestTickSpecialAbilityInflictsEffect(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	serpent := enemyAt("e1", 10, 16, 1001, RankA)
	serpent.SubType = "TEMPEST SERPENT"
	s.Entities.Add(serpent)

	r := Tick(s, &scriptRand{floats: []float64{0.5, 0.1}}, tn)

	assert.Equal(t, 1201, r.Damage)
	require.Len(t, s.Player.Effects, 1)
	assert.Equal(t, "Poison", s.Player.Effects[0].Name)
	assert.Equal(t, 5, s.Player.Effects[0].Duration)
	assert.Contains(t, s.VisualEvents, "TEMPEST SERPENT: Poison Mist! (area)")

	ability, _ := AbilityFor("TEMPEST SERPENT")
	assert.Equal(t, 5, ability.Effect.Duration, "table entry must not be mutated")
}

func TestTickTownDamage(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 18}
	s.Kingdom.Buildings = []Building{{ID: "b1", Name: "Hut"}, {ID: "b2", Name: "Wall"}}
	s.Entities.Add(enemyAt("e1", 10, 12, 100, RankE))

	r := Tick(s, &scriptRand{floats: []float64{0.1, 0.99, 0.05}, ints: []int{1}}, tn)

	assert.True(t, r.TownDamaged)
	assert.Equal(t, 95, s.Kingdom.Loyalty)
	assert.Equal(t, "Wall", r.DestroyedBuilding)
	require.Len(t, s.Kingdom.Buildings, 1)
	assert.Equal(t, "Hut", s.Kingdom.Buildings[0].Name)
}

func TestTickTownDamageFloorsLoyalty(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 18}
	s.Kingdom.Loyalty = 3
	s.Entities.Add(enemyAt("e1", 10, 12, 100, RankE))

	Tick(s, &scriptRand{floats: []float64{0.1}}, tn)

	assert.Equal(t, 0, s.Kingdom.Loyalty)
}

func TestTickRaidMarchesToTown(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 18, Y: 18}
	raider := enemyAt("e1", 10, 2, 100, RankE)
	raider.Raid = true
	s.Entities.Add(raider)

	Tick(s, &scriptRand{}, tn)

	got, _ := s.Entities.Get("e1")
	assert.Equal(t, world.Point{X: 10, Y: 3}, got.Pos)
}

func TestTickChaseStopsAtBlockedTiles(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.PlayerPos = world.Point{X: 10, Y: 17}
	s.Entities.Add(enemyAt("e1", 10, 14, 100, RankE))
	s.Entities.Add(enemyAt("e2", 6, 17, 100, RankE))
	s.Grid.Set(world.Point{X: 7, Y: 17}, world.TileMountain)

	Tick(s, &scriptRand{floats: []float64{0.1, 0.1}}, tn)

	e1, _ := s.Entities.Get("e1")
	e2, _ := s.Entities.Get("e2")
	assert.Equal(t, world.Point{X: 10, Y: 15}, e1.Pos)
	assert.Equal(t, world.Point{X: 6, Y: 17}, e2.Pos)
}

func TestTickQuietTurnKeepsVisualEvents(t *testing.T) {
	tn := testTuning()
	s := blankSession(tn)
	s.VisualEvents = []string{"keep"}

	r := Tick(s, &scriptRand{}, tn)

	assert.False(t, r.Changed)
	assert.Equal(t, []string{"keep"}, s.VisualEvents)
	assert.False(t, s.DamageFlash)
}
