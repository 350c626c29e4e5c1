package sim

import (
	"math"

	"github.com/google/uuid"

	"tempest/internal/domain/world"
)

// Spawner places new monsters on a grid.
type Spawner struct {
	Town     world.Point
	SafeZone float64
	NewID    func() string
}

func NewSpawner(t Tuning) Spawner {
	return Spawner{Town: t.Town, SafeZone: t.SafeZone, NewID: uuid.NewString}
}

// Spawn rolls count monsters scaled by difficulty. Monsters whose placement
// runs out of attempts are skipped, so the result may be shorter than
// count.
func (s Spawner) Spawn(rng Rand, grid world.Grid, count int, raid bool, difficulty float64) []Entity {
	out := make([]Entity, 0, count)
	for i := 0; i < count; i++ {
		species := drawSpecies(rng)
		power := int(math.Floor(float64(BasePowerOf(species)) * difficulty * (PowerJitterLow + rng.Float64()*PowerJitterRange)))
		maxHP := int(math.Floor(float64(power) * (8 + rng.Float64()*4)))
		maxMP := int(math.Floor(float64(power) * (5 + rng.Float64()*10)))

		pos, ok := s.place(rng, grid, raid)
		if !ok {
			continue
		}
		label := species
		if raid {
			label = "RAID " + species
		}
		out = append(out, Entity{
			ID:      s.newID(),
			Kind:    KindEnemy,
			SubType: species,
			Label:   label,
			Pos:     pos,
			Power:   power,
			HP:      maxHP,
			MaxHP:   maxHP,
			MP:      maxMP,
			MaxMP:   maxMP,
			Rank:    RankFromPower(power),
			Raid:    raid,
		})
	}
	return out
}

// place finds a spawn tile. Terrain rejections use up the attempt budget;
// safe-zone rejections only count against a separate hard cap.
func (s Spawner) place(rng Rand, grid world.Grid, raid bool) (world.Point, bool) {
	attempts, safeRetries := 0, 0
	for attempts < PlacementAttempts && safeRetries < SafeZoneRetryCap {
		var p world.Point
		if raid {
			p = edgePoint(rng, grid)
		} else {
			p = world.Point{X: rng.Intn(grid.Width), Y: rng.Intn(grid.Height)}
		}
		if !raid && p.Dist(s.Town) < s.SafeZone {
			safeRetries++
			continue
		}
		attempts++
		if !grid.InBounds(p) {
			continue
		}
		switch grid.At(p) {
		case world.TileWater, world.TileMountain, world.TileTown:
			continue
		}
		return p, true
	}
	return world.Point{}, false
}

// edgePoint picks a uniform edge of the outer ring, then a uniform
// coordinate along it.
func edgePoint(rng Rand, grid world.Grid) world.Point {
	switch rng.Intn(4) {
	case 0:
		return world.Point{X: rng.Intn(grid.Width), Y: 0}
	case 1:
		return world.Point{X: grid.Width - 1, Y: rng.Intn(grid.Height)}
	case 2:
		return world.Point{X: rng.Intn(grid.Width), Y: grid.Height - 1}
	default:
		return world.Point{X: 0, Y: rng.Intn(grid.Height)}
	}
}

func (s Spawner) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// ResourceEntities turns generated resource nodes into arena entities.
func (s Spawner) ResourceEntities(nodes []world.ResourceNode) []Entity {
	out := make([]Entity, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Entity{
			ID:      s.newID(),
			Kind:    KindResource,
			SubType: string(n.Kind),
			Label:   string(n.Kind),
			Pos:     n.Pos,
		})
	}
	return out
}
