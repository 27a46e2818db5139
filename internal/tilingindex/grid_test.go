package tilingindex

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_ZoomRange(t *testing.T) {
	_, err := NewGrid(-1)
	assert.Error(t, err)
	_, err = NewGrid(MaxGridZoom + 1)
	assert.Error(t, err)

	g, err := NewGrid(MaxGridZoom)
	require.NoError(t, err)
	assert.Equal(t, maptile.Zoom(MaxGridZoom), g.Zoom())
}

func TestGrid_TileIDRoundTrip(t *testing.T) {
	g, err := NewGrid(MaxGridZoom)
	require.NoError(t, err)

	last := uint32(1)<<MaxGridZoom - 1
	for _, tile := range []maptile.Tile{
		{X: 0, Y: 0, Z: MaxGridZoom},
		{X: last, Y: last, Z: MaxGridZoom},
		{X: 35210, Y: 21493, Z: MaxGridZoom},
	} {
		assert.Equal(t, tile, g.Tile(g.TileID(tile)))
	}
}

func TestGrid_TileAt(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), g.TileAt(orb.Point{-90, 45}))
	assert.Equal(t, uint32(1), g.TileAt(orb.Point{90, 45}))
	assert.Equal(t, uint32(2), g.TileAt(orb.Point{-90, -45}))
	assert.Equal(t, uint32(3), g.TileAt(orb.Point{90, -45}))
}

func TestGrid_TilesFor(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)

	assert.Equal(t, []uint32{0, 1, 2, 3}, g.TilesFor(-45, -90, 45, 90))
	assert.Equal(t, []uint32{1}, g.TilesFor(10, 10, 20, 20))
	assert.Equal(t, []uint32{0, 1}, ForBound(g, orb.Bound{Min: orb.Point{-10, 10}, Max: orb.Point{10, 20}}))
}

func TestGrid_TilesForClampsToWorld(t *testing.T) {
	g, err := NewGrid(2)
	require.NoError(t, err)

	ids := g.TilesFor(-90, -180, 90, 180)
	assert.Len(t, ids, 16)
	assert.ElementsMatch(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, ids)
}

func TestGrid_TilesForInvertedBox(t *testing.T) {
	g, err := NewGrid(3)
	require.NoError(t, err)

	assert.Nil(t, g.TilesFor(10, 0, 5, 1))
	assert.Nil(t, g.TilesFor(0, 10, 1, 5))
}

func TestStatic(t *testing.T) {
	idx := Static(7, 3)
	assert.Equal(t, []uint32{7, 3}, idx.TilesFor(0, 0, 0, 0))
	assert.Equal(t, []uint32{7, 3}, ForBound(idx, orb.Bound{}))
}
