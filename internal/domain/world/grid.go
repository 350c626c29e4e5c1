package world

import (
	"encoding/json"
	"fmt"
)

// Grid is a fixed-size row-major tile map.
type Grid struct {
	Width  int
	Height int
	Tiles  []TileKind
}

func NewGrid(width, height int, fill TileKind) Grid {
	tiles := make([]TileKind, width*height)
	for i := range tiles {
		tiles[i] = fill
	}
	return Grid{Width: width, Height: height, Tiles: tiles}
}

func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the tile at p. Points outside the grid read as water.
func (g Grid) At(p Point) TileKind {
	if !g.InBounds(p) {
		return TileWater
	}
	return g.Tiles[p.Y*g.Width+p.X]
}

// Set overwrites the tile at p and reports whether p was in bounds.
func (g *Grid) Set(p Point, kind TileKind) bool {
	if !g.InBounds(p) {
		return false
	}
	g.Tiles[p.Y*g.Width+p.X] = kind
	return true
}

func (g Grid) Count(kind TileKind) int {
	n := 0
	for _, t := range g.Tiles {
		if t == kind {
			n++
		}
	}
	return n
}

// Window returns the in-bounds tiles of the square of the given radius
// around center.
func (g Grid) Window(center Point, radius int) Snapshot {
	if radius < 0 {
		radius = 0
	}
	tiles := make([]Tile, 0, (2*radius+1)*(2*radius+1))
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			p := Point{X: x, Y: y}
			if !g.InBounds(p) {
				continue
			}
			tiles = append(tiles, Tile{X: x, Y: y, Kind: g.At(p)})
		}
	}
	return Snapshot{Center: center, ViewRadius: radius, VisibleTiles: tiles}
}

type gridJSON struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows"`
}

func (g Grid) MarshalJSON() ([]byte, error) {
	rows := make([]string, g.Height)
	buf := make([]byte, g.Width)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			buf[x] = tileRunes[g.Tiles[y*g.Width+x]]
		}
		rows[y] = string(buf)
	}
	return json.Marshal(gridJSON{Width: g.Width, Height: g.Height, Rows: rows})
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Rows) != raw.Height {
		return fmt.Errorf("grid: %d rows for height %d", len(raw.Rows), raw.Height)
	}
	out := NewGrid(raw.Width, raw.Height, TileGrass)
	for y, row := range raw.Rows {
		if len(row) != raw.Width {
			return fmt.Errorf("grid: row %d has width %d, want %d", y, len(row), raw.Width)
		}
		for x := 0; x < raw.Width; x++ {
			out.Tiles[y*raw.Width+x] = kindFromRune(row[x])
		}
	}
	*g = out
	return nil
}
