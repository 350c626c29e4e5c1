package world

import "strings"

type TileKind string

const (
	TileGrass    TileKind = "GRASS"
	TileTree     TileKind = "TREE"
	TileMountain TileKind = "MOUNTAIN"
	TileWater    TileKind = "WATER"
	TileTown     TileKind = "TOWN"
)

// ParseTileKind maps a tile name to its kind. Unknown names become grass.
func ParseTileKind(s string) TileKind {
	switch TileKind(strings.ToUpper(strings.TrimSpace(s))) {
	case TileTree:
		return TileTree
	case TileMountain:
		return TileMountain
	case TileWater:
		return TileWater
	case TileTown:
		return TileTown
	default:
		return TileGrass
	}
}

// Walkable reports whether the player may step onto the tile.
func (k TileKind) Walkable() bool {
	return k == TileGrass || k == TileTown
}

// Blocking reports whether the tile stops monster movement.
func (k TileKind) Blocking() bool {
	return k == TileWater || k == TileMountain
}

type Tile struct {
	X    int      `json:"x"`
	Y    int      `json:"y"`
	Kind TileKind `json:"kind"`
}

var tileRunes = map[TileKind]byte{
	TileGrass:    '.',
	TileTree:     'T',
	TileMountain: '^',
	TileWater:    '~',
	TileTown:     '#',
}

func kindFromRune(b byte) TileKind {
	for k, r := range tileRunes {
		if r == b {
			return k
		}
	}
	return TileGrass
}
