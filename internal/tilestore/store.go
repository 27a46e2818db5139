// Package tilestore reads the tiled binary geodata format through a
// read-only memory mapping.
//
// The mapped file is one immutable byte arena. Headers, features,
// coordinates and strings are decoded directly from it by offset; the only
// copies made are freeform property strings, which outlive a feature visit.
//
//	s, err := tilestore.Open("planet.tiles", tilestore.WithExtentIndex())
//	if err != nil { ... }
//	defer s.Close()
//
//	err = s.ForEachFeature(box, func(f *tilestore.Feature) bool {
//		...
//		return true
//	})
//
// A Store is safe for concurrent readers. Close must not race with a
// running ForEachFeature.
package tilestore

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"maptiler/internal/tilingindex"
)

// Store is an open, memory-mapped tile file.
type Store struct {
	path   string
	data   []byte
	header fileHeader
	index  tilingindex.Index
	log    logrus.FieldLogger
	closed atomic.Bool
}

// Open maps the file at path read-only and validates its header table.
// The file handle is released once the mapping exists.
func Open(path string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size < fileHeaderSize {
		return nil, corruptHeader(0, "file size %d is smaller than the %d byte file header", size, fileHeaderSize)
	}
	if size > math.MaxInt {
		return nil, corruptHeader(0, "file size %d exceeds the address space", size)
	}

	data, err := mmapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	s := &Store{
		path:   path,
		data:   data,
		header: readFileHeader(data),
		log:    o.logger.WithField("path", path),
	}

	tableEnd := uint64(fileHeaderSize) + uint64(s.header.tileCount)*tileHeaderEntrySize
	if tableEnd > uint64(size) {
		s.Close()
		return nil, corruptHeader(fileHeaderSize, "tile count %d needs %d bytes, file has %d",
			s.header.tileCount, tableEnd, size)
	}

	if o.index != nil {
		s.index = o.index(s)
	} else {
		s.index = tilingindex.Func(func(_, _, _, _ float64) []uint32 { return s.Tiles() })
	}

	s.log.WithFields(logrus.Fields{
		"version": s.header.version,
		"tiles":   s.header.tileCount,
		"size":    humanize.Bytes(uint64(size)),
	}).Debug("tile store mapped")

	return s, nil
}

// Close unmaps the file. It is idempotent.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	data := s.data
	s.data = nil
	if data == nil {
		return nil
	}
	return munmap(data)
}

func (s *Store) bytes() []byte {
	if s.closed.Load() {
		return nil
	}
	return s.data
}

// Path returns the file path the store was opened from.
func (s *Store) Path() string { return s.path }

// Version returns the layout version stored in the file header.
func (s *Store) Version() uint32 { return s.header.version }

// TileCount returns the number of entries in the tile header table.
func (s *Store) TileCount() int { return int(s.header.tileCount) }

// Size returns the mapped size in bytes.
func (s *Store) Size() int { return len(s.data) }

// Index returns the tiling index used by ForEachFeature.
func (s *Store) Index() tilingindex.Index { return s.index }

// Tiles returns the tile ids in header table order.
func (s *Store) Tiles() []uint32 {
	data := s.bytes()
	if data == nil {
		return nil
	}
	ids := make([]uint32, s.header.tileCount)
	for i := range ids {
		ids[i] = readTileHeaderEntry(data[fileHeaderSize+i*tileHeaderEntrySize:]).tileID
	}
	return ids
}

// findTile scans the header table for id. The table is not assumed sorted.
func (s *Store) findTile(data []byte, id uint32) (uint64, bool) {
	for i := 0; i < int(s.header.tileCount); i++ {
		e := readTileHeaderEntry(data[fileHeaderSize+i*tileHeaderEntrySize:])
		if e.tileID == id {
			return e.offset, true
		}
	}
	return 0, false
}

// tileBlock reads and validates the block header at off together with the
// extents of the arrays it points to.
func (s *Store) tileBlock(data []byte, id uint32, off uint64) (tileBlockHeader, error) {
	size := uint64(len(data))
	if off+tileBlockHeaderSize > size {
		return tileBlockHeader{}, corruptTile(id, off, "block header past end of file (%d bytes)", size)
	}
	blk := readTileBlockHeader(data[off:])

	if end := off + tileBlockHeaderSize + uint64(blk.featureCount)*mapFeatureSize; end > size {
		return blk, corruptTile(id, off, "%d features end at %d, past end of file", blk.featureCount, end)
	}
	if end := blk.coordinatesOffset + uint64(blk.coordinateCount)*coordinateSize; end > size {
		return blk, corruptTile(id, blk.coordinatesOffset, "%d coordinates end at %d, past end of file", blk.coordinateCount, end)
	}
	if end := blk.stringsOffset + uint64(blk.stringCount)*stringEntrySize; end > size {
		return blk, corruptTile(id, blk.stringsOffset, "%d strings end at %d, past end of file", blk.stringCount, end)
	}
	if end := blk.charactersOffset + uint64(blk.characterCount); end > size {
		return blk, corruptTile(id, blk.charactersOffset, "%d characters end at %d, past end of file", blk.characterCount, end)
	}
	return blk, nil
}

// FeatureCount returns the feature count of tile id, or false if the tile
// is not in the file.
func (s *Store) FeatureCount(id uint32) (int, bool) {
	data := s.bytes()
	if data == nil {
		return 0, false
	}
	off, ok := s.findTile(data, id)
	if !ok {
		return 0, false
	}
	blk, err := s.tileBlock(data, id, off)
	if err != nil {
		return 0, false
	}
	return int(blk.featureCount), true
}

// TileExtent returns the lon/lat bound of all coordinates stored in tile id.
// It reports false for missing, empty or corrupt tiles.
func (s *Store) TileExtent(id uint32) (orb.Bound, bool) {
	data := s.bytes()
	if data == nil {
		return orb.Bound{}, false
	}
	off, ok := s.findTile(data, id)
	if !ok {
		return orb.Bound{}, false
	}
	blk, err := s.tileBlock(data, id, off)
	if err != nil || blk.coordinateCount == 0 {
		return orb.Bound{}, false
	}
	coords := Coordinates{data: data[blk.coordinatesOffset : blk.coordinatesOffset+uint64(blk.coordinateCount)*coordinateSize]}
	b := orb.Bound{Min: coords.Point(0), Max: coords.Point(0)}
	for i := 1; i < coords.Len(); i++ {
		p := coords.Point(i)
		b.Min[0] = math.Min(b.Min[0], p[0])
		b.Min[1] = math.Min(b.Min[1], p[1])
		b.Max[0] = math.Max(b.Max[0], p[0])
		b.Max[1] = math.Max(b.Max[1], p[1])
	}
	return b, true
}

// Visitor receives each feature passing the query filter. Returning false
// stops iteration of the current tile only; the next tile is still visited.
type Visitor func(f *Feature) bool

// ForEachFeature visits every feature of the tiles the index returns for
// box that has at least one vertex inside box. Tiles missing from the file
// are skipped. The Feature passed to visit is reused between calls.
func (s *Store) ForEachFeature(box orb.Bound, visit Visitor) error {
	data := s.bytes()
	if data == nil {
		return ErrClosed
	}

	var f Feature
	for _, id := range tilingindex.ForBound(s.index, box) {
		off, ok := s.findTile(data, id)
		if !ok {
			s.log.WithField("tile", id).Debug("tile not in store, skipping")
			continue
		}
		if err := s.visitTile(data, id, off, box, &f, visit); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) visitTile(data []byte, id uint32, off uint64, box orb.Bound, f *Feature, visit Visitor) error {
	blk, err := s.tileBlock(data, id, off)
	if err != nil {
		return err
	}

	dropped := 0
	for i := 0; i < int(blk.featureCount); i++ {
		recOff := off + tileBlockHeaderSize + uint64(i)*mapFeatureSize
		rec := readMapFeature(data[recOff:])

		if rec.coordinateIndex+uint64(rec.coordinateCount) > uint64(blk.coordinateCount) {
			return corruptFeature(id, i, recOff, "coordinates [%d, +%d) exceed tile coordinate count %d",
				rec.coordinateIndex, rec.coordinateCount, blk.coordinateCount)
		}
		start := blk.coordinatesOffset + rec.coordinateIndex*coordinateSize
		coords := Coordinates{data: data[start : start+uint64(rec.coordinateCount)*coordinateSize]}
		if !coords.AnyWithin(box) {
			continue
		}

		f.reset()
		f.ID = rec.id
		f.Kind = rec.kind
		f.Coordinates = coords

		if rec.label != NoLabel {
			label, ok := s.str(data, blk, uint32(rec.label))
			if !ok {
				return corruptFeature(id, i, recOff, "label index %d outside string table", rec.label)
			}
			f.label = label
		}

		if uint64(rec.propertyIndex)+2*uint64(rec.propertyCount) > uint64(blk.stringCount) {
			return corruptFeature(id, i, recOff, "properties [%d, +%d) exceed string count %d",
				rec.propertyIndex, 2*rec.propertyCount, blk.stringCount)
		}
		for p := uint32(0); p < rec.propertyCount; p++ {
			k, kok := s.str(data, blk, rec.propertyIndex+2*p)
			v, vok := s.str(data, blk, rec.propertyIndex+2*p+1)
			if !kok || !vok {
				return corruptFeature(id, i, recOff, "property pair %d outside character blob", p)
			}
			key, ok := ParsePropertyType(k)
			if !ok {
				dropped++
				continue
			}
			if !f.Properties.Set(key, ParsePropertyValue(key, v)) {
				dropped++
			}
		}

		if !visit(f) {
			break
		}
	}

	if dropped > 0 {
		s.log.WithFields(logrus.Fields{"tile": id, "dropped": dropped}).Trace("dropped unknown or duplicate properties")
	}
	return nil
}

// str returns the borrowed bytes of string-table entry idx.
func (s *Store) str(data []byte, blk tileBlockHeader, idx uint32) ([]byte, bool) {
	if idx >= blk.stringCount {
		return nil, false
	}
	e := data[blk.stringsOffset+uint64(idx)*stringEntrySize:]
	start, n := uint64(le.Uint32(e[0:])), uint64(le.Uint32(e[4:]))
	if start+n > uint64(blk.characterCount) {
		return nil, false
	}
	base := blk.charactersOffset + start
	return data[base : base+n : base+n], true
}
