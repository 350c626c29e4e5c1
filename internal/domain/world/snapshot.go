package world

// Snapshot is a square window of the grid around a center point.
type Snapshot struct {
	Center       Point  `json:"center"`
	ViewRadius   int    `json:"view_radius"`
	VisibleTiles []Tile `json:"visible_tiles"`
}
