package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileSize is the default tile edge in pixels.
const TileSize = 256

// ZoomMin is the smallest zoom a region may render.
const ZoomMin = 0

// ZoomMax is the largest zoom a region may render.
const ZoomMax = 20

// Tile is one encoded raster tile.
type Tile struct {
	T maptile.Tile
	C []byte
}

// Layer is one region at one zoom.
type Layer struct {
	Zoom       int
	Count      int64
	Collection orb.Collection
}

// Output formats.
const (
	PNG     = "png"
	MBTILES = "mbtiles"
)

// TileSink receives finished tiles. Save may be called concurrently.
type TileSink interface {
	Save(Tile) error
	Close() error
}
