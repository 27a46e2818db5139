package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRegion writes a small polygon around (10.5, 10.5).
func writeRegion(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {},
    "geometry": {
      "type": "Polygon",
      "coordinates": [[[10, 10], [11, 10], [11, 11], [10, 11], [10, 10]]]
    }
  }]
}`), 0o644))
	return path
}

func TestInitTask_WritesPNGTree(t *testing.T) {
	useConf(t, func(c *Conf) {
		c.Store.Path = writeStore(t)
		c.Store.Zoom = 8
		c.Task.Workers = 2
		c.Lrs = []Region{{Min: 1, Max: 2, Geojson: writeRegion(t)}}
	})

	require.NoError(t, InitTask(context.Background()))

	for _, rel := range []string{"1/1/0.png", "2/2/1.png"} {
		info, err := os.Stat(filepath.Join(conf.Output.Directory, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.NotZero(t, info.Size())
	}
}

func TestInitTask_ResumesFromBreakPoint(t *testing.T) {
	useConf(t, func(c *Conf) {
		c.Store.Path = writeStore(t)
		c.Store.Index = "extent"
		c.Lrs = []Region{{Min: 1, Max: 1, Geojson: writeRegion(t)}}
	})

	require.NoError(t, InitTask(context.Background()))
	tile := filepath.Join(conf.Output.Directory, "1", "1", "0.png")
	require.NoError(t, os.Remove(tile))

	require.NoError(t, InitTask(context.Background()))
	_, err := os.Stat(tile)
	assert.True(t, os.IsNotExist(err), "finished tile rendered again")
}

func TestInitTask_MBTiles(t *testing.T) {
	useConf(t, func(c *Conf) {
		c.Store.Path = writeStore(t)
		c.Output.Format = MBTILES
		c.Lrs = []Region{{Min: 1, Max: 1, Geojson: writeRegion(t)}}
	})

	require.NoError(t, InitTask(context.Background()))
	_, err := os.Stat(filepath.Join(conf.Output.Directory, conf.Task.Name+".mbtiles"))
	assert.NoError(t, err)
}

func TestInitTask_Cancelled(t *testing.T) {
	useConf(t, func(c *Conf) {
		c.Store.Path = writeStore(t)
		c.Lrs = []Region{{Min: 3, Max: 3, Geojson: writeRegion(t)}}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, InitTask(ctx), context.Canceled)
}

func TestInitTask_NoRegions(t *testing.T) {
	useConf(t, func(c *Conf) { c.Store.Path = writeStore(t) })
	assert.Error(t, InitTask(context.Background()))
}
