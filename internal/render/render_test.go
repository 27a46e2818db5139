package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maptiler/internal/shape"
	"maptiler/internal/tessellate"
	"maptiler/internal/tilestore"
)

func rect(x0, y0, x1, y1 float64) []orb.Point {
	return []orb.Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
}

func fillOf(s *shape.Shape) color.RGBA {
	return s.Style().Fill
}

func assertUniform(t *testing.T, img *image.RGBA, want color.RGBA) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRenderTile_EmptyIsBackground(t *testing.T) {
	img := RenderTile(shape.NewQueue(0), shape.NewBoundingBox(), 16, 8)

	require.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	assertUniform(t, img, shape.Background)
}

func TestRenderTile_HigherPriorityPaintsOnTop(t *testing.T) {
	bbox := shape.NewBoundingBox()
	forest := shape.NewGeoFeature(rect(0, 0, 10, 10), shape.SubtypeForest)
	building := shape.NewGeoFeature(rect(2, 2, 8, 8), shape.SubtypeResidential)
	bbox.ExtendPoints(forest.Points)
	bbox.ExtendPoints(building.Points)

	q := shape.NewQueue(2)
	q.Push(building)
	q.Push(forest)
	img := RenderTile(q, bbox, 100, 100)

	assert.Equal(t, fillOf(building), img.RGBAAt(50, 50))
	assert.Equal(t, fillOf(forest), img.RGBAAt(5, 50))
	assert.Equal(t, 0, q.Len())
}

func TestRenderTile_EnqueueOrderDoesNotMatter(t *testing.T) {
	build := func() []*shape.Shape {
		return []*shape.Shape{
			shape.NewGeoFeature(rect(0, 0, 10, 10), shape.SubtypePlain),
			shape.NewWaterway(rect(3, 3, 7, 9), tilestore.KindPolygon),
			shape.NewRoad([]orb.Point{{0, 5}, {10, 5}}, tilestore.ValuePrimary),
			shape.NewBorder([]orb.Point{{5, 0}, {5, 10}}),
		}
	}
	render := func(shapes []*shape.Shape) []byte {
		bbox := shape.NewBoundingBox()
		q := shape.NewQueue(len(shapes))
		for _, s := range shapes {
			bbox.ExtendPoints(s.Points)
			q.Push(s)
		}
		return RenderTile(q, bbox, 64, 64).Pix
	}

	forward := build()
	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	assert.True(t, bytes.Equal(render(forward), render(reversed)))
}

func TestFitScale(t *testing.T) {
	cases := []struct {
		name string
		bbox shape.BoundingBox
		want float64
	}{
		{"wide", shape.BoundingBox{MinX: 0, MinY: 0, MaxX: 20, MaxY: 5}, 5},
		{"tall", shape.BoundingBox{MinX: 0, MinY: 0, MaxX: 5, MaxY: 50}, 2},
		{"horizontal line", shape.BoundingBox{MinX: 0, MinY: 3, MaxX: 50, MaxY: 3}, 2},
		{"vertical line", shape.BoundingBox{MinX: 1, MinY: 0, MaxX: 1, MaxY: 25}, 4},
		{"single point", shape.BoundingBox{MinX: 1, MinY: 1, MaxX: 1, MaxY: 1}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fitScale(tc.bbox, 100, 100))
		})
	}
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame("Tile")
	require.NoError(t, err)
	assert.Equal(t, FrameTile, f)

	f, err = ParseFrame("")
	require.NoError(t, err)
	assert.Equal(t, FrameContent, f)

	_, err = ParseFrame("stretch")
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	r, g, b, a := ParseColor("#102030").RGBA()
	assert.Equal(t, []uint32{0x10, 0x20, 0x30, 0xff}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}

func openStore(t *testing.T, w *tilestore.Writer) *tilestore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiles.bin")
	require.NoError(t, w.WriteFile(path))
	s, err := tilestore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRenderer_TileFrame(t *testing.T) {
	w := tilestore.NewWriter()
	w.Tile(1).Add(tilestore.FeatureRecord{
		ID:          1,
		Kind:        tilestore.KindPolygon,
		Coordinates: rect(0, 0, 5, 10),
		Tags:        []tilestore.Tag{{Key: "building", Value: "yes"}},
	})
	r := New(openStore(t, w), WithClassifier(tessellate.Classifier{}))

	img, stats, err := r.Render(context.Background(), Request{
		Bound:  orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}},
		Width:  256,
		Height: 256,
		Frame:  FrameTile,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Features)
	assert.Equal(t, 1, stats.Shapes)

	residential := fillOf(shape.NewGeoFeature(nil, shape.SubtypeResidential))
	assert.Equal(t, residential, img.RGBAAt(64, 128))
	assert.Equal(t, shape.Background, img.RGBAAt(192, 128))
}

func TestRenderer_ContentFrameFillsCanvas(t *testing.T) {
	w := tilestore.NewWriter()
	w.Tile(1).Add(tilestore.FeatureRecord{
		ID:          1,
		Kind:        tilestore.KindPolygon,
		Coordinates: rect(0, 0, 5, 10),
		Tags:        []tilestore.Tag{{Key: "landuse", Value: "forest"}},
	})
	r := New(openStore(t, w), WithClassifier(tessellate.Classifier{}))

	img, _, err := r.Render(context.Background(), Request{
		Bound:  orb.Bound{Min: orb.Point{-20, -20}, Max: orb.Point{20, 20}},
		Width:  10,
		Height: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, fillOf(shape.NewGeoFeature(nil, shape.SubtypeForest)), img.RGBAAt(5, 10))
}

func TestRenderer_Background(t *testing.T) {
	bg := color.RGBA{0x10, 0x20, 0x30, 0xff}
	r := New(openStore(t, tilestore.NewWriter()), WithBackground(bg))

	img, stats, err := r.Render(context.Background(), Request{
		Bound:  orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}},
		Width:  4,
		Height: 4,
	})
	require.NoError(t, err)
	assert.Zero(t, stats.Features)
	assertUniform(t, img, bg)
}

func TestRenderer_InvalidSize(t *testing.T) {
	r := New(openStore(t, tilestore.NewWriter()))
	_, _, err := r.Render(context.Background(), Request{Width: 0, Height: 10})
	assert.Error(t, err)
}

func TestRenderer_Cancelled(t *testing.T) {
	w := tilestore.NewWriter()
	w.Tile(1).Add(tilestore.FeatureRecord{
		ID:          1,
		Kind:        tilestore.KindLine,
		Coordinates: []orb.Point{{0, 0}, {1, 1}},
		Tags:        []tilestore.Tag{{Key: "railway", Value: "rail"}},
	})
	r := New(openStore(t, w))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, stats, err := r.Render(ctx, Request{
		Bound:  orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{2, 2}},
		Width:  8,
		Height: 8,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Features)
}

func TestEncodePNG(t *testing.T) {
	img := RenderTile(shape.NewQueue(0), shape.NewBoundingBox(), 3, 2)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())
}
