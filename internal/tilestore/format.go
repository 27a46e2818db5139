package tilestore

import (
	"encoding/binary"
	"math"
)

// FormatVersion is the layout version written by Writer.
const FormatVersion = 1

// Fixed record sizes of the on-disk layout. All integers are little-endian.
const (
	fileHeaderSize      = 8  // version u32, tileCount u32
	tileHeaderEntrySize = 16 // tileID u32, reserved u32, offset u64
	tileBlockHeaderSize = 40 // 4 x u32 counts, 3 x u64 offsets
	mapFeatureSize      = 40
	coordinateSize      = 8 // lat f32, lon f32
	stringEntrySize     = 8 // offset u32, length u32
)

// NoLabel marks a feature without a label string.
const NoLabel = -1

// GeometryKind is the stored geometry type of a feature.
type GeometryKind uint8

const (
	KindPoint GeometryKind = iota
	KindLine
	KindPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

var le = binary.LittleEndian

type fileHeader struct {
	version   uint32
	tileCount uint32
}

func readFileHeader(b []byte) fileHeader {
	return fileHeader{
		version:   le.Uint32(b[0:]),
		tileCount: le.Uint32(b[4:]),
	}
}

type tileHeaderEntry struct {
	tileID uint32
	offset uint64
}

func readTileHeaderEntry(b []byte) tileHeaderEntry {
	return tileHeaderEntry{
		tileID: le.Uint32(b[0:]),
		offset: le.Uint64(b[8:]),
	}
}

type tileBlockHeader struct {
	featureCount      uint32
	coordinateCount   uint32
	stringCount       uint32
	characterCount    uint32
	coordinatesOffset uint64
	stringsOffset     uint64
	charactersOffset  uint64
}

func readTileBlockHeader(b []byte) tileBlockHeader {
	return tileBlockHeader{
		featureCount:      le.Uint32(b[0:]),
		coordinateCount:   le.Uint32(b[4:]),
		stringCount:       le.Uint32(b[8:]),
		characterCount:    le.Uint32(b[12:]),
		coordinatesOffset: le.Uint64(b[16:]),
		stringsOffset:     le.Uint64(b[24:]),
		charactersOffset:  le.Uint64(b[32:]),
	}
}

// mapFeature is the fixed-size feature record:
//
//	id u64 | kind u8 | pad [3] | coordinateCount u32 | coordinateIndex u64 |
//	propertyIndex u32 | propertyCount u32 | label i32 | pad u32
type mapFeature struct {
	id              uint64
	kind            GeometryKind
	coordinateCount uint32
	coordinateIndex uint64
	propertyIndex   uint32
	propertyCount   uint32
	label           int32
}

func readMapFeature(b []byte) mapFeature {
	return mapFeature{
		id:              le.Uint64(b[0:]),
		kind:            GeometryKind(b[8]),
		coordinateCount: le.Uint32(b[12:]),
		coordinateIndex: le.Uint64(b[16:]),
		propertyIndex:   le.Uint32(b[24:]),
		propertyCount:   le.Uint32(b[28:]),
		label:           int32(le.Uint32(b[32:])),
	}
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(le.Uint32(b))
}
