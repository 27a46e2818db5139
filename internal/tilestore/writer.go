package tilestore

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
)

// Tag is one key/value property pair as written to the string table.
type Tag struct {
	Key, Value string
}

// FeatureRecord is the input form of a feature for Writer.
// Coordinates are lon/lat points; an empty Label writes no label.
type FeatureRecord struct {
	ID          uint64
	Kind        GeometryKind
	Coordinates []orb.Point
	Tags        []Tag
	Label       string
}

// Writer assembles a tile file in memory. It produces exactly the layout
// Store reads and is used to build fixtures.
type Writer struct {
	tiles []*TileWriter
	byID  map[uint32]*TileWriter
}

// TileWriter collects the features of one tile.
type TileWriter struct {
	id       uint32
	features []FeatureRecord
}

func NewWriter() *Writer {
	return &Writer{byID: make(map[uint32]*TileWriter)}
}

// Tile returns the writer for tile id, creating it on first use. Tiles are
// written in creation order.
func (w *Writer) Tile(id uint32) *TileWriter {
	if t, ok := w.byID[id]; ok {
		return t
	}
	t := &TileWriter{id: id}
	w.tiles = append(w.tiles, t)
	w.byID[id] = t
	return t
}

// Add appends a feature to the tile.
func (t *TileWriter) Add(f FeatureRecord) *TileWriter {
	t.features = append(t.features, f)
	return t
}

// WriteFile writes the file to path.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if _, err := w.WriteTo(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes the complete file to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	buf := make([]byte, 0, fileHeaderSize+len(w.tiles)*tileHeaderEntrySize)
	buf = le.AppendUint32(buf, FormatVersion)
	buf = le.AppendUint32(buf, uint32(len(w.tiles)))

	offset := uint64(fileHeaderSize + len(w.tiles)*tileHeaderEntrySize)
	blocks := make([][]byte, len(w.tiles))
	for i, t := range w.tiles {
		block, err := t.encode(offset)
		if err != nil {
			return 0, fmt.Errorf("encode tile %d: %w", t.id, err)
		}
		blocks[i] = block
		buf = le.AppendUint32(buf, t.id)
		buf = le.AppendUint32(buf, 0)
		buf = le.AppendUint64(buf, offset)
		offset += uint64(len(block))
	}

	n, err := out.Write(buf)
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, block := range blocks {
		n, err := out.Write(block)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type stringTable struct {
	entries  []uint32 // offset, length pairs
	chars    []byte
	interned map[string]uint32
}

func (st *stringTable) add(s string) uint32 {
	off, ok := st.interned[s]
	if !ok {
		off = uint32(len(st.chars))
		st.chars = append(st.chars, s...)
		st.interned[s] = off
	}
	st.entries = append(st.entries, off, uint32(len(s)))
	return uint32(len(st.entries)/2 - 1)
}

// encode lays out the tile block starting at absolute offset base.
func (t *TileWriter) encode(base uint64) ([]byte, error) {
	st := stringTable{interned: make(map[string]uint32)}
	var coords []orb.Point

	type placed struct {
		coordIndex, propIndex uint32
		label                 int32
	}
	places := make([]placed, len(t.features))
	for i, f := range t.features {
		p := placed{coordIndex: uint32(len(coords)), propIndex: uint32(len(st.entries) / 2), label: NoLabel}
		coords = append(coords, f.Coordinates...)
		for _, tag := range f.Tags {
			st.add(tag.Key)
			st.add(tag.Value)
		}
		if f.Label != "" {
			p.label = int32(st.add(f.Label))
		}
		places[i] = p
	}

	coordsOffset := base + tileBlockHeaderSize + uint64(len(t.features))*mapFeatureSize
	stringsOffset := coordsOffset + uint64(len(coords))*coordinateSize
	charsOffset := stringsOffset + uint64(len(st.entries)/2)*stringEntrySize

	size := charsOffset - base + uint64(len(st.chars))
	buf := make([]byte, 0, size+7)

	buf = le.AppendUint32(buf, uint32(len(t.features)))
	buf = le.AppendUint32(buf, uint32(len(coords)))
	buf = le.AppendUint32(buf, uint32(len(st.entries)/2))
	buf = le.AppendUint32(buf, uint32(len(st.chars)))
	buf = le.AppendUint64(buf, coordsOffset)
	buf = le.AppendUint64(buf, stringsOffset)
	buf = le.AppendUint64(buf, charsOffset)

	for i, f := range t.features {
		p := places[i]
		buf = le.AppendUint64(buf, f.ID)
		buf = append(buf, byte(f.Kind), 0, 0, 0)
		buf = le.AppendUint32(buf, uint32(len(f.Coordinates)))
		buf = le.AppendUint64(buf, uint64(p.coordIndex))
		buf = le.AppendUint32(buf, p.propIndex)
		buf = le.AppendUint32(buf, uint32(len(f.Tags)))
		buf = le.AppendUint32(buf, uint32(p.label))
		buf = le.AppendUint32(buf, 0)
	}
	for _, c := range coords {
		buf = le.AppendUint32(buf, math.Float32bits(float32(c[1])))
		buf = le.AppendUint32(buf, math.Float32bits(float32(c[0])))
	}
	for _, v := range st.entries {
		buf = le.AppendUint32(buf, v)
	}
	buf = append(buf, st.chars...)

	// keep the next block 8-byte aligned
	for len(buf)%8 != 0 {
		buf = append(buf, 0)
	}
	return buf, nil
}
