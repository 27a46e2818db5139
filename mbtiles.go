package main

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // import sqlite3 driver
)

// mbtilesSink stores tiles in an MBTiles sqlite database.
type mbtilesSink struct {
	mu sync.Mutex
	db *sql.DB
}

func newMBTilesSink(path string, tm *TileMap) (*mbtilesSink, error) {
	db, err := mbtilesOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open mbtiles %s: %w", path, err)
	}
	if err := mbtilesWriteMetadata(db, tm); err != nil {
		db.Close()
		return nil, fmt.Errorf("write mbtiles metadata: %w", err)
	}
	return &mbtilesSink{db: db}, nil
}

// Save serialises writes; the connection runs in exclusive locking mode.
func (s *mbtilesSink) Save(tile Tile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mbtilesWriteTile(s.db, int(tile.T.Z), int(tile.T.X), int(tile.T.Y), tile.C)
}

func (s *mbtilesSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.db
	s.db = nil
	return mbtilesClose(db)
}

func mbtilesOpen(mbtilesOut string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", mbtilesOut)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{
		"PRAGMA synchronous=0",
		"PRAGMA locking_mode=EXCLUSIVE",
		"PRAGMA journal_mode=DELETE",
		"create table if not exists tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob);",
		"create table if not exists metadata (name text, value text);",
		"create unique index if not exists name on metadata (name);",
		"create unique index if not exists tile_index on tiles(zoom_level, tile_column, tile_row);",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func mbtilesWriteMetadata(db *sql.DB, tm *TileMap) error {
	meta := [][2]string{
		{"name", tm.Name},
		{"description", tm.Title},
		{"type", "baselayer"},
		{"version", "1.1"},
		{"format", PNG},
		{"minzoom", fmt.Sprint(tm.Min)},
		{"maxzoom", fmt.Sprint(tm.Max)},
	}
	for _, kv := range meta {
		if _, err := db.Exec("insert or replace into metadata (name, value) values (?, ?);", kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// mbtilesWriteTile stores the tile in TMS row order.
func mbtilesWriteTile(db *sql.DB, z, tx, ty int, data []byte) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	_, err := db.Exec("insert or replace into tiles (zoom_level, tile_column, tile_row, tile_data) values (?, ?, ?, ?);", z, tx, 1<<uint(z)-1-ty, data)
	return err
}

func mbtilesClose(db *sql.DB) error {
	if db == nil {
		return nil
	}
	if _, err := db.Exec("ANALYZE;"); err != nil {
		db.Close()
		return err
	}
	return db.Close()
}
