package sim

import (
	"fmt"

	"tempest/internal/domain/world"
)

// scriptRand replays fixed draws. When a queue runs dry Float64 returns
// 0.99 and Intn returns 0, which keeps every probabilistic branch idle.
type scriptRand struct {
	floats []float64
	ints   []int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func testTuning() Tuning {
	t := DefaultTuning()
	t.Width = 20
	t.Height = 20
	t.Town = world.Point{X: 10, Y: 10}
	t.PlayerStart = world.Point{X: 10, Y: 11}
	t.TownRadius = 1
	t.SafeZone = 5
	return t
}

// blankSession is an all-grass world with a town block and nothing on it.
func blankSession(t Tuning) *SessionState {
	grid := world.NewGrid(t.Width, t.Height, world.TileGrass)
	for y := t.Town.Y - t.TownRadius; y <= t.Town.Y+t.TownRadius; y++ {
		for x := t.Town.X - t.TownRadius; x <= t.Town.X+t.TownRadius; x++ {
			grid.Set(world.Point{X: x, Y: y}, world.TileTown)
		}
	}
	return &SessionState{
		ID:           "test",
		Grid:         grid,
		Entities:     NewArena(),
		PlayerPos:    t.PlayerStart,
		Player:       BaselinePlayer(t),
		Kingdom:      InitialKingdom(),
		Tribe:        []TribeMember{},
		Mode:         ModeMap,
		Phase:        PhasePlaying,
		VisualEvents: []string{},
	}
}

func enemyAt(id string, x, y int, power int, rank Rank) Entity {
	return Entity{
		ID:      id,
		Kind:    KindEnemy,
		SubType: "ORC",
		Label:   "ORC",
		Pos:     world.Point{X: x, Y: y},
		Power:   power,
		HP:      power * 10,
		MaxHP:   power * 10,
		MP:      power * 5,
		MaxMP:   power * 5,
		Rank:    rank,
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
