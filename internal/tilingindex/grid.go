package tilingindex

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxGridZoom is the deepest zoom whose quadkeys fit in a uint32 tile id.
const MaxGridZoom = 16

// maxMercatorLat is the latitude limit of the web mercator tile pyramid.
const maxMercatorLat = 85.05112878

// Grid indexes tiles of a fixed slippy-map zoom level. A tile id is the
// quadkey of the tile at that zoom.
type Grid struct {
	zoom maptile.Zoom
}

// NewGrid returns a grid index at zoom z.
func NewGrid(z int) (*Grid, error) {
	if z < 0 || z > MaxGridZoom {
		return nil, fmt.Errorf("grid zoom %d out of range [0, %d]", z, MaxGridZoom)
	}
	return &Grid{zoom: maptile.Zoom(z)}, nil
}

// Zoom returns the grid's zoom level.
func (g *Grid) Zoom() maptile.Zoom {
	return g.zoom
}

// TileID returns the id under which t is stored. t must be at the grid zoom.
func (g *Grid) TileID(t maptile.Tile) uint32 {
	return uint32(t.Quadkey())
}

// Tile is the inverse of TileID.
func (g *Grid) Tile(id uint32) maptile.Tile {
	return maptile.FromQuadkey(uint64(id), g.zoom)
}

// TileAt returns the id of the grid tile containing the lon/lat point.
func (g *Grid) TileAt(p orb.Point) uint32 {
	return g.TileID(g.clampedTile(p))
}

// TilesFor returns every grid tile touching the box, row by row.
func (g *Grid) TilesFor(minLat, minLon, maxLat, maxLon float64) []uint32 {
	if minLat > maxLat || minLon > maxLon {
		return nil
	}
	// tile rows grow southwards
	nw := g.clampedTile(orb.Point{minLon, maxLat})
	se := g.clampedTile(orb.Point{maxLon, minLat})

	ids := make([]uint32, 0, int(se.X-nw.X+1)*int(se.Y-nw.Y+1))
	for y := nw.Y; y <= se.Y; y++ {
		for x := nw.X; x <= se.X; x++ {
			ids = append(ids, g.TileID(maptile.Tile{X: x, Y: y, Z: g.zoom}))
		}
	}
	return ids
}

func (g *Grid) clampedTile(p orb.Point) maptile.Tile {
	lon, lat := p[0], p[1]
	if lat > maxMercatorLat {
		lat = maxMercatorLat
	} else if lat < -maxMercatorLat {
		lat = -maxMercatorLat
	}
	if lon < -180 {
		lon = -180
	} else if lon > 180 {
		lon = 180
	}
	t := maptile.At(orb.Point{lon, lat}, g.zoom)
	last := uint32(1)<<uint32(g.zoom) - 1
	if t.X > last {
		t.X = last
	}
	if t.Y > last {
		t.Y = last
	}
	return t
}
