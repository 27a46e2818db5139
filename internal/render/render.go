// Package render paints queued shapes onto a raster canvas.
package render

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"maptiler/internal/shape"
)

// RenderTile drains q in ascending priority and paints every shape onto a
// new width x height canvas. The frame is bbox scaled uniformly to fit; the
// canvas is background-only when bbox is empty.
func RenderTile(q *shape.Queue, bbox shape.BoundingBox, width, height int) *image.RGBA {
	return paint(q, bbox, width, height, shape.Background)
}

func paint(q *shape.Queue, bbox shape.BoundingBox, width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(bg)
	dc.Clear()

	if bbox.IsEmpty() {
		return img
	}

	scale := fitScale(bbox, width, height)
	h := float64(height)
	for s := q.Pop(); s != nil; s = q.Pop() {
		s.TransformAndScale(bbox.MinX, bbox.MinY, scale, h)
		s.Render(dc)
	}
	return img
}

// fitScale is the largest uniform scale that fits bbox into the canvas.
// An axis with zero extent places no constraint; a single point renders
// at scale 1.
func fitScale(bbox shape.BoundingBox, width, height int) float64 {
	dx, dy := bbox.Width(), bbox.Height()
	sx, sy := math.Inf(1), math.Inf(1)
	if dx > 0 {
		sx = float64(width) / dx
	}
	if dy > 0 {
		sy = float64(height) / dy
	}
	scale := math.Min(sx, sy)
	if math.IsInf(scale, 1) {
		return 1
	}
	return scale
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img *image.RGBA) error {
	return gg.NewContextForRGBA(img).EncodePNG(w)
}

// ParseColor parses a "#rrggbb" or "#rrggbbaa" hex color.
func ParseColor(hex string) color.Color {
	dc := gg.NewContext(1, 1)
	dc.SetHexColor(hex)
	dc.Clear()
	return dc.Image().At(0, 0)
}
