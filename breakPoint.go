package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/paulmach/orb/maptile"
)

// BreakPoint records finished tiles so an interrupted run can resume.
// Each line of the log is "x-y-z".
type BreakPoint struct {
	file       *os.File
	saveChan   chan maptile.Tile
	successMap map[string]struct{}
	done       chan struct{}

	mu      sync.RWMutex
	isClose bool
}

// NewBreakPoint opens (or creates) dir/name.log and loads the tiles it lists.
func NewBreakPoint(dir, name string, buf int) (*BreakPoint, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create break point dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.log", name))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open break point file: %w", err)
	}
	successMap, err := getBreakPoint(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read break point file: %w", err)
	}

	b := &BreakPoint{
		file:       file,
		saveChan:   make(chan maptile.Tile, buf),
		successMap: successMap,
		done:       make(chan struct{}),
	}
	go b.Start()
	return b, nil
}

func getBreakPoint(file *os.File) (map[string]struct{}, error) {
	res := make(map[string]struct{})
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			res[line] = struct{}{}
		}
	}
	return res, sc.Err()
}

func breakPointKey(tile maptile.Tile) string {
	return fmt.Sprintf("%d-%d-%d", tile.X, tile.Y, tile.Z)
}

// Len returns the number of tiles finished by earlier runs.
func (b *BreakPoint) Len() int {
	return len(b.successMap)
}

func (b *BreakPoint) IsSuccessed(tile maptile.Tile) bool {
	_, ok := b.successMap[breakPointKey(tile)]
	return ok
}

func (b *BreakPoint) SetSuccessed(tile maptile.Tile) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isClose {
		return
	}
	b.saveChan <- tile
}

func (b *BreakPoint) Start() {
	defer close(b.done)
	for tile := range b.saveChan {
		if _, err := b.file.WriteString(breakPointKey(tile) + "\n"); err != nil {
			log.WithError(err).Warn("break point write failed")
		}
	}
}

// Close flushes pending records and closes the log. It is safe to call
// more than once.
func (b *BreakPoint) Close() error {
	b.mu.Lock()
	if b.isClose {
		b.mu.Unlock()
		return nil
	}
	b.isClose = true
	close(b.saveChan)
	b.mu.Unlock()

	<-b.done
	return b.file.Close()
}
