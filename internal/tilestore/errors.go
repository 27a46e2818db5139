package tilestore

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptFile is matched by every *CorruptFileError.
	ErrCorruptFile = errors.New("tilestore: corrupt file")

	// ErrClosed is returned when the store is used after Close.
	ErrClosed = errors.New("tilestore: store closed")
)

// CorruptFileError describes a layout violation with enough context to
// locate it in the file. TileID and Feature are -1 when not applicable.
type CorruptFileError struct {
	TileID  int64
	Feature int
	Offset  uint64
	Reason  string
}

func (e *CorruptFileError) Error() string {
	switch {
	case e.TileID < 0:
		return fmt.Sprintf("tilestore: corrupt file at offset %d: %s", e.Offset, e.Reason)
	case e.Feature < 0:
		return fmt.Sprintf("tilestore: corrupt tile %d at offset %d: %s", e.TileID, e.Offset, e.Reason)
	default:
		return fmt.Sprintf("tilestore: corrupt feature %d of tile %d at offset %d: %s",
			e.Feature, e.TileID, e.Offset, e.Reason)
	}
}

func (e *CorruptFileError) Is(target error) bool {
	return target == ErrCorruptFile
}

func corruptHeader(offset uint64, format string, args ...interface{}) error {
	return &CorruptFileError{TileID: -1, Feature: -1, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func corruptTile(tileID uint32, offset uint64, format string, args ...interface{}) error {
	return &CorruptFileError{TileID: int64(tileID), Feature: -1, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func corruptFeature(tileID uint32, feature int, offset uint64, format string, args ...interface{}) error {
	return &CorruptFileError{TileID: int64(tileID), Feature: feature, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
