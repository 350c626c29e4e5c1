package world

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTerrainConfig(mode TerrainMode) TerrainConfig {
	return TerrainConfig{
		Width:          100,
		Height:         100,
		Town:           Point{X: 50, Y: 50},
		TownRadius:     3,
		TreeRatio:      0.10,
		MountainRatio:  0.05,
		ResourceChance: 0.015,
		Mode:           mode,
		Seed:           7,
	}
}

func TestGenerateTownBlock(t *testing.T) {
	cfg := defaultTerrainConfig(TerrainUniform)
	terrain := Generate(cfg, rand.New(rand.NewSource(1)))

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := Point{X: x, Y: y}
			inTown := p.Chebyshev(cfg.Town) <= cfg.TownRadius
			if inTown {
				require.Equal(t, TileTown, terrain.Grid.At(p), "tile %v", p)
			} else {
				require.NotEqual(t, TileTown, terrain.Grid.At(p), "tile %v", p)
			}
		}
	}
	assert.Equal(t, 49, terrain.Grid.Count(TileTown))
}

func TestGenerateDistribution(t *testing.T) {
	for _, mode := range []TerrainMode{TerrainUniform, TerrainClustered} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := defaultTerrainConfig(mode)
			terrain := Generate(cfg, rand.New(rand.NewSource(42)))
			g := terrain.Grid
			open := float64(len(g.Tiles) - g.Count(TileTown))

			assert.Zero(t, g.Count(TileWater))
			assert.InDelta(t, 0.85, float64(g.Count(TileGrass))/open, 0.03)
			assert.InDelta(t, 0.10, float64(g.Count(TileTree))/open, 0.03)
			assert.InDelta(t, 0.05, float64(g.Count(TileMountain))/open, 0.02)
		})
	}
}

func TestGenerateResourcesOnGrassOnly(t *testing.T) {
	cfg := defaultTerrainConfig(TerrainUniform)
	terrain := Generate(cfg, rand.New(rand.NewSource(3)))

	require.NotEmpty(t, terrain.Resources)
	seen := map[ResourceKind]int{}
	for _, r := range terrain.Resources {
		assert.Equal(t, TileGrass, terrain.Grid.At(r.Pos))
		seen[r.Kind]++
	}
	assert.Positive(t, seen[ResourceHerb])
	assert.Positive(t, seen[ResourceOre])

	grass := float64(terrain.Grid.Count(TileGrass))
	assert.InDelta(t, 0.015, float64(len(terrain.Resources))/grass, 0.008)
}

func TestGenerateIsReproducibleForSeed(t *testing.T) {
	cfg := defaultTerrainConfig(TerrainUniform)
	a := Generate(cfg, rand.New(rand.NewSource(9)))
	b := Generate(cfg, rand.New(rand.NewSource(9)))
	assert.Equal(t, a, b)
}
