package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"maptiler/internal/tilestore"
	"maptiler/internal/tilingindex"
)

// fileSink writes tiles below a root directory using the tile map's
// path template.
type fileSink struct {
	root string
	tm   *TileMap
}

func newFileSink(root string, tm *TileMap) (*fileSink, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &fileSink{root: root, tm: tm}, nil
}

func (s *fileSink) Save(tile Tile) error {
	return saveToFiles(tile, s.root, s.tm)
}

func (s *fileSink) Close() error { return nil }

func saveToFiles(tile Tile, root string, tm *TileMap) error {
	fileName := filepath.Join(root, filepath.FromSlash(tm.GetTilePath(tile.T)))
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(fileName, tile.C, 0o644)
}

func loadCollection(path string) (orb.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s: %w", path, err)
	}

	var collection orb.Collection
	for _, f := range fc.Features {
		collection = append(collection, f.Geometry)
	}
	return collection, nil
}

// openStore opens the configured tile store with the configured tiling index.
func openStore() (*tilestore.Store, error) {
	if conf.Store.Path == "" {
		return nil, fmt.Errorf("store.path is not set")
	}
	opts := []tilestore.Option{tilestore.WithLogger(log)}
	switch conf.Store.Index {
	case "extent":
		opts = append(opts, tilestore.WithExtentIndex())
	default:
		grid, err := tilingindex.NewGrid(conf.Store.Zoom)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tilestore.WithTilingIndex(grid))
	}
	return tilestore.Open(conf.Store.Path, opts...)
}
