package world

import (
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Rand is the random source consumed by generation and simulation.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type TerrainMode string

const (
	TerrainUniform   TerrainMode = "uniform"
	TerrainClustered TerrainMode = "clustered"
)

type ResourceKind string

const (
	ResourceHerb ResourceKind = "HERB"
	ResourceOre  ResourceKind = "ORE"
)

type ResourceNode struct {
	Pos  Point
	Kind ResourceKind
}

type TerrainConfig struct {
	Width          int
	Height         int
	Town           Point
	TownRadius     int
	TreeRatio      float64
	MountainRatio  float64
	ResourceChance float64
	Mode           TerrainMode
	Seed           int64
}

type Terrain struct {
	Grid      Grid
	Resources []ResourceNode
}

// Generate builds a grid with a town block around cfg.Town and scatters
// resource nodes over grass. Water is never generated.
func Generate(cfg TerrainConfig, rng Rand) Terrain {
	grid := NewGrid(cfg.Width, cfg.Height, TileGrass)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := Point{X: x, Y: y}
			if p.Chebyshev(cfg.Town) <= cfg.TownRadius {
				grid.Set(p, TileTown)
			}
		}
	}

	if cfg.Mode == TerrainClustered {
		paintClustered(&grid, cfg)
	} else {
		paintUniform(&grid, cfg, rng)
	}

	var resources []ResourceNode
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := Point{X: x, Y: y}
			if grid.At(p) != TileGrass {
				continue
			}
			if rng.Float64() >= cfg.ResourceChance {
				continue
			}
			kind := ResourceOre
			if rng.Float64() < 0.5 {
				kind = ResourceHerb
			}
			resources = append(resources, ResourceNode{Pos: p, Kind: kind})
		}
	}
	return Terrain{Grid: grid, Resources: resources}
}

func paintUniform(grid *Grid, cfg TerrainConfig, rng Rand) {
	for i, kind := range grid.Tiles {
		if kind == TileTown {
			continue
		}
		roll := rng.Float64()
		switch {
		case roll < cfg.MountainRatio:
			grid.Tiles[i] = TileMountain
		case roll < cfg.MountainRatio+cfg.TreeRatio:
			grid.Tiles[i] = TileTree
		}
	}
}

// paintClustered places mountains on elevation peaks and trees on
// vegetation peaks, cutting both noise fields at the configured quantiles
// so the overall mix matches the uniform mode.
func paintClustered(grid *Grid, cfg TerrainConfig) {
	elev := opensimplex.NewNormalized(cfg.Seed)
	veg := opensimplex.NewNormalized(cfg.Seed + 1)

	open := make([]int, 0, len(grid.Tiles))
	for i, kind := range grid.Tiles {
		if kind != TileTown {
			open = append(open, i)
		}
	}
	sample := func(noise opensimplex.Noise, idx int) float64 {
		x := float64(idx % grid.Width)
		y := float64(idx / grid.Width)
		return octaveNoise(noise, x, y, 4, 0.06, 0.5)
	}

	mountainCut := quantileCut(open, func(idx int) float64 { return sample(elev, idx) }, cfg.MountainRatio)
	remaining := open[:0:0]
	for _, idx := range open {
		if sample(elev, idx) >= mountainCut && cfg.MountainRatio > 0 {
			grid.Tiles[idx] = TileMountain
			continue
		}
		remaining = append(remaining, idx)
	}

	treeShare := 0.0
	if len(remaining) > 0 {
		treeShare = cfg.TreeRatio * float64(len(open)) / float64(len(remaining))
	}
	treeCut := quantileCut(remaining, func(idx int) float64 { return sample(veg, idx) }, treeShare)
	for _, idx := range remaining {
		if sample(veg, idx) >= treeCut && treeShare > 0 {
			grid.Tiles[idx] = TileTree
		}
	}
}

// quantileCut returns the value above which the top share of cells lie.
func quantileCut(cells []int, value func(int) float64, share float64) float64 {
	if len(cells) == 0 || share <= 0 {
		return 2
	}
	vals := make([]float64, len(cells))
	for i, idx := range cells {
		vals[i] = value(idx)
	}
	sort.Float64s(vals)
	k := int(float64(len(vals)) * (1 - share))
	if k >= len(vals) {
		return 2
	}
	if k < 0 {
		k = 0
	}
	return vals[k]
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
