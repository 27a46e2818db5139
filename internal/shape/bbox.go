package shape

import (
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox accumulates the projected extent of the shapes of one render
// request. The zero value is not empty; use NewBoundingBox.
type BoundingBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewBoundingBox returns an empty box with infinite sentinels.
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p orb.Point) {
	b.MinX = math.Min(b.MinX, p[0])
	b.MinY = math.Min(b.MinY, p[1])
	b.MaxX = math.Max(b.MaxX, p[0])
	b.MaxY = math.Max(b.MaxY, p[1])
}

// ExtendPoints grows the box to include every point.
func (b *BoundingBox) ExtendPoints(points []orb.Point) {
	for _, p := range points {
		b.Extend(p)
	}
}

// IsEmpty reports whether nothing was added to the box.
func (b BoundingBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func (b BoundingBox) Width() float64 { return b.MaxX - b.MinX }

func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// Bound converts the box to an orb bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}

// FromBound returns a box covering b.
func FromBound(b orb.Bound) BoundingBox {
	return BoundingBox{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}
