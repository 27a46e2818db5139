package main

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// DefaultTilePath lays tiles out as a slippy-map directory tree.
const DefaultTilePath = "{z}/{x}/{y}.png"

// TileMap describes the tile set being produced.
type TileMap struct {
	Name   string
	Title  string
	Min    int
	Max    int
	Format string
	Path   string
}

// GetTilePath expands the {x}, {y} and {z} placeholders of the path template.
func (m *TileMap) GetTilePath(t maptile.Tile) string {
	path := m.Path
	if path == "" {
		path = DefaultTilePath
	}
	path = strings.Replace(path, "{x}", strconv.Itoa(int(t.X)), -1)
	path = strings.Replace(path, "{y}", strconv.Itoa(int(t.Y)), -1)
	path = strings.Replace(path, "{z}", strconv.Itoa(int(t.Z)), -1)
	return path
}
