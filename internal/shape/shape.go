// Package shape defines the closed family of drawable map shapes.
//
// A Shape is a tagged union: Kind selects the variant and fixes the draw
// priority at construction. Points start in projected space and are
// rewritten in place to pixel space by TransformAndScale before Render.
package shape

import (
	"github.com/paulmach/orb"

	"maptiler/internal/tilestore"
)

// Kind is the shape variant.
type Kind uint8

const (
	KindRoad Kind = iota
	KindWaterway
	KindGeoFeature
	KindBorder
	KindPopulatedPlace
	KindRailway
)

func (k Kind) String() string {
	switch k {
	case KindRoad:
		return "road"
	case KindWaterway:
		return "waterway"
	case KindGeoFeature:
		return "geofeature"
	case KindBorder:
		return "border"
	case KindPopulatedPlace:
		return "populated_place"
	case KindRailway:
		return "railway"
	default:
		return "unknown"
	}
}

// Subtype refines KindGeoFeature.
type Subtype uint8

const (
	SubtypeNone Subtype = iota
	SubtypeForest
	SubtypeResidential
	SubtypePlain
	SubtypeWater
)

func (s Subtype) String() string {
	switch s {
	case SubtypeForest:
		return "forest"
	case SubtypeResidential:
		return "residential"
	case SubtypePlain:
		return "plain"
	case SubtypeWater:
		return "water"
	default:
		return "none"
	}
}

// Draw priorities. Smaller values are painted first.
const (
	PriorityPlain          = 10
	PriorityForest         = 20
	PriorityWater          = 30
	PriorityWaterway       = 35
	PriorityResidential    = 40
	PriorityRailway        = 50
	PriorityRoad           = 60
	PriorityBorder         = 70
	PriorityPopulatedPlace = 80
)

// Shape is one drawable, classified feature.
type Shape struct {
	Kind    Kind
	Subtype Subtype

	// Points is owned by the shape.
	Points []orb.Point

	// Geometry is the stored geometry kind of the source feature.
	Geometry tilestore.GeometryKind

	// Class is the road class for roads and the place size for places.
	Class tilestore.ValueCode

	// Filled is set for polygon waterways.
	Filled bool

	Label string

	priority int
}

// Priority returns the draw priority fixed at construction.
func (s *Shape) Priority() int {
	return s.priority
}

func NewRoad(points []orb.Point, class tilestore.ValueCode) *Shape {
	return &Shape{Kind: KindRoad, Points: points, Geometry: tilestore.KindLine, Class: class, priority: PriorityRoad}
}

func NewWaterway(points []orb.Point, geometry tilestore.GeometryKind) *Shape {
	return &Shape{
		Kind:     KindWaterway,
		Points:   points,
		Geometry: geometry,
		Filled:   geometry == tilestore.KindPolygon,
		priority: PriorityWaterway,
	}
}

func NewGeoFeature(points []orb.Point, sub Subtype) *Shape {
	return &Shape{
		Kind:     KindGeoFeature,
		Subtype:  sub,
		Points:   points,
		Geometry: tilestore.KindPolygon,
		priority: geoFeaturePriority(sub),
	}
}

func geoFeaturePriority(sub Subtype) int {
	switch sub {
	case SubtypeForest:
		return PriorityForest
	case SubtypeWater:
		return PriorityWater
	case SubtypeResidential:
		return PriorityResidential
	default:
		return PriorityPlain
	}
}

func NewBorder(points []orb.Point) *Shape {
	return &Shape{Kind: KindBorder, Points: points, Geometry: tilestore.KindLine, priority: PriorityBorder}
}

func NewPopulatedPlace(points []orb.Point, geometry tilestore.GeometryKind, class tilestore.ValueCode, label string) *Shape {
	return &Shape{
		Kind:     KindPopulatedPlace,
		Points:   points,
		Geometry: geometry,
		Class:    class,
		Label:    label,
		priority: PriorityPopulatedPlace,
	}
}

func NewRailway(points []orb.Point) *Shape {
	return &Shape{Kind: KindRailway, Points: points, Geometry: tilestore.KindLine, priority: PriorityRailway}
}

// TransformAndScale rewrites the points from projected space to pixel
// space. Y is flipped because pixel rows grow downwards.
func (s *Shape) TransformAndScale(minX, minY, scale, canvasHeight float64) {
	for i, p := range s.Points {
		s.Points[i] = orb.Point{
			(p[0] - minX) * scale,
			canvasHeight - (p[1]-minY)*scale,
		}
	}
}
