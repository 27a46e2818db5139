package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"maptiler/internal/shape"
	"maptiler/internal/tessellate"
	"maptiler/internal/tilestore"
)

// Frame selects how the canvas is framed.
type Frame uint8

const (
	// FrameContent fits the canvas to the extent of the classified shapes.
	FrameContent Frame = iota
	// FrameTile fixes the canvas to the projected request bound so that
	// neighbouring tiles line up.
	FrameTile
)

func (f Frame) String() string {
	if f == FrameTile {
		return "tile"
	}
	return "content"
}

// ParseFrame parses "content" or "tile".
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(s) {
	case "", "content":
		return FrameContent, nil
	case "tile":
		return FrameTile, nil
	}
	return FrameContent, fmt.Errorf("unknown render frame %q", s)
}

// Request describes one render.
type Request struct {
	Bound  orb.Bound
	Width  int
	Height int
	Frame  Frame
}

// Stats summarises a finished render.
type Stats struct {
	Features int
	Shapes   int
	Elapsed  time.Duration
}

// Renderer renders regions of a store. It is safe for concurrent use.
type Renderer struct {
	store      *tilestore.Store
	classifier tessellate.Classifier
	background color.Color
	log        logrus.FieldLogger
}

type Option func(*Renderer)

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClassifier replaces the default mercator classifier.
func WithClassifier(c tessellate.Classifier) Option {
	return func(r *Renderer) {
		r.classifier = c
	}
}

func WithBackground(c color.Color) Option {
	return func(r *Renderer) {
		if c != nil {
			r.background = c
		}
	}
}

func New(store *tilestore.Store, opts ...Option) *Renderer {
	r := &Renderer{
		store:      store,
		classifier: tessellate.Default,
		background: shape.Background,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render classifies every feature with a vertex inside req.Bound and paints
// the result. Cancelling ctx stops the scan between features.
func (r *Renderer) Render(ctx context.Context, req Request) (*image.RGBA, Stats, error) {
	var stats Stats
	if req.Width <= 0 || req.Height <= 0 {
		return nil, stats, fmt.Errorf("invalid canvas size %dx%d", req.Width, req.Height)
	}
	start := time.Now()

	q := shape.NewQueue(64)
	content := shape.NewBoundingBox()
	err := r.store.ForEachFeature(req.Bound, func(f *tilestore.Feature) bool {
		if ctx.Err() != nil {
			return false
		}
		stats.Features++
		if s, ok := r.classifier.Classify(f, &content); ok {
			q.Push(s)
		}
		return true
	})
	if err != nil {
		return nil, stats, fmt.Errorf("scan %v: %w", req.Bound, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	stats.Shapes = q.Len()

	frame := content
	if req.Frame == FrameTile {
		frame = r.projectedFrame(req.Bound)
	}
	img := paint(q, frame, req.Width, req.Height, r.background)

	stats.Elapsed = time.Since(start)
	r.log.WithFields(logrus.Fields{
		"bound":    req.Bound,
		"frame":    req.Frame,
		"features": stats.Features,
		"shapes":   stats.Shapes,
		"elapsed":  stats.Elapsed,
	}).Debug("rendered")
	return img, stats, nil
}

func (r *Renderer) projectedFrame(b orb.Bound) shape.BoundingBox {
	lo, hi := b.Min, b.Max
	if r.classifier.Project != nil {
		lo, hi = r.classifier.Project(lo), r.classifier.Project(hi)
	}
	bbox := shape.NewBoundingBox()
	bbox.ExtendPoints([]orb.Point{lo, hi})
	return bbox
}
