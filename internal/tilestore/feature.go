package tilestore

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinates is a borrowed view over a contiguous Coordinate array inside
// the mapping. Values are decoded on access; nothing is copied.
type Coordinates struct {
	data []byte
}

// Len returns the number of coordinates in the view.
func (c Coordinates) Len() int {
	return len(c.data) / coordinateSize
}

// At returns the i-th coordinate as stored (32-bit lat, lon).
func (c Coordinates) At(i int) (lat, lon float32) {
	b := c.data[i*coordinateSize:]
	return readFloat32(b[0:]), readFloat32(b[4:])
}

// Point returns the i-th coordinate as an orb point (lon, lat).
func (c Coordinates) Point(i int) orb.Point {
	lat, lon := c.At(i)
	return orb.Point{float64(lon), float64(lat)}
}

// AnyWithin reports whether at least one coordinate lies inside b.
// Bound edges count as inside.
func (c Coordinates) AnyWithin(b orb.Bound) bool {
	for i, n := 0, c.Len(); i < n; i++ {
		lat, lon := c.At(i)
		x, y := float64(lon), float64(lat)
		if x >= b.Min[0] && x <= b.Max[0] && y >= b.Min[1] && y <= b.Max[1] {
			return true
		}
	}
	return false
}

// Feature is one decoded map feature. The coordinate and label views borrow
// from the store's mapping and are only valid during the visitor call; the
// store reuses the Feature value between calls.
type Feature struct {
	ID          uint64
	Kind        GeometryKind
	Coordinates Coordinates
	Properties  Properties

	label []byte
}

// Label returns the borrowed label bytes, empty when the feature has none.
func (f *Feature) Label() []byte {
	return f.label
}

// LabelString returns an owned copy of the label.
func (f *Feature) LabelString() string {
	return string(f.label)
}

func (f *Feature) reset() {
	f.ID = 0
	f.Kind = KindPoint
	f.Coordinates = Coordinates{}
	f.Properties.Reset()
	f.label = nil
}

// NewFeature builds a standalone feature backed by its own buffer. Tags are
// decoded exactly as the store decodes a property list.
func NewFeature(id uint64, kind GeometryKind, coords []orb.Point, label string, tags ...Tag) *Feature {
	data := make([]byte, 0, len(coords)*coordinateSize)
	for _, c := range coords {
		data = le.AppendUint32(data, math.Float32bits(float32(c[1])))
		data = le.AppendUint32(data, math.Float32bits(float32(c[0])))
	}
	f := &Feature{ID: id, Kind: kind, Coordinates: Coordinates{data: data}}
	if label != "" {
		f.label = []byte(label)
	}
	for _, tag := range tags {
		if key, ok := ParsePropertyType([]byte(tag.Key)); ok {
			f.Properties.Set(key, ParsePropertyValue(key, []byte(tag.Value)))
		}
	}
	return f
}
