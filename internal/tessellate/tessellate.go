// Package tessellate turns decoded tile features into drawable shapes.
package tessellate

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"maptiler/internal/shape"
	"maptiler/internal/tilestore"
)

// Classifier classifies features. Project maps lon/lat to the planar space
// the shapes are built in.
type Classifier struct {
	Project orb.Projection
}

// Default projects to spherical web mercator.
var Default = Classifier{Project: project.WGS84.ToMercator}

// Classify uses the Default classifier.
func Classify(f *tilestore.Feature, bbox *shape.BoundingBox) (*shape.Shape, bool) {
	return Default.Classify(f, bbox)
}

// borderFlags records the two tags that together make a national border.
type borderFlags struct {
	administrative bool
	adminLevelTwo  bool
}

func (b borderFlags) border() bool {
	return b.administrative && b.adminLevelTwo
}

func scanBorder(p *tilestore.Properties) borderFlags {
	var b borderFlags
	if v, ok := p.Get(tilestore.PropBoundary); ok && v.Code() == tilestore.ValueAdministrative {
		b.administrative = true
	}
	if v, ok := p.Get(tilestore.PropAdminLevel); ok && v.Code() == tilestore.ValueTwo {
		b.adminLevelTwo = true
	}
	return b
}

// Classify returns the shape for f, if any, and folds its projected extent
// into bbox. Properties are tried in PropertyType order and the first rule
// that produces a shape wins.
func (c Classifier) Classify(f *tilestore.Feature, bbox *shape.BoundingBox) (*shape.Shape, bool) {
	flags := scanBorder(&f.Properties)

	var s *shape.Shape
	f.Properties.Each(func(t tilestore.PropertyType, v tilestore.PropertyValue) bool {
		s = c.apply(f, t, v, flags)
		return s == nil
	})
	if s == nil {
		return nil, false
	}
	bbox.ExtendPoints(s.Points)
	return s, true
}

func (c Classifier) apply(f *tilestore.Feature, t tilestore.PropertyType, v tilestore.PropertyValue, flags borderFlags) *shape.Shape {
	code := v.Code()
	polygon := f.Kind == tilestore.KindPolygon

	switch t {
	case tilestore.PropHighway:
		if code.Between(tilestore.ValueMotorway, tilestore.ValueResidential) {
			return shape.NewRoad(c.points(f), code)
		}
	case tilestore.PropWater:
		if f.Kind != tilestore.KindPoint {
			return shape.NewWaterway(c.points(f), f.Kind)
		}
	case tilestore.PropBoundary:
		if code == tilestore.ValueForest {
			return shape.NewGeoFeature(c.points(f), shape.SubtypeForest)
		}
		if code == tilestore.ValueAdministrative && flags.border() {
			return shape.NewBorder(c.points(f))
		}
	case tilestore.PropAdminLevel:
		if code == tilestore.ValueTwo && flags.border() {
			return shape.NewBorder(c.points(f))
		}
	case tilestore.PropPlace:
		switch code {
		case tilestore.ValueCity, tilestore.ValueTown, tilestore.ValueLocality, tilestore.ValueHamlet:
			return shape.NewPopulatedPlace(c.points(f), f.Kind, code, label(f))
		}
	case tilestore.PropRailway:
		return shape.NewRailway(c.points(f))
	case tilestore.PropNatural:
		if polygon {
			return shape.NewGeoFeature(c.points(f), naturalSubtype(code))
		}
	case tilestore.PropLanduse:
		switch {
		case code == tilestore.ValueForest || code == tilestore.ValueOrchard:
			return shape.NewGeoFeature(c.points(f), shape.SubtypeForest)
		case !polygon:
		case code.Between(tilestore.ValueResidential, tilestore.ValueBrownfield):
			return shape.NewGeoFeature(c.points(f), shape.SubtypeResidential)
		case code.Between(tilestore.ValueFarm, tilestore.ValueAllotments):
			return shape.NewGeoFeature(c.points(f), shape.SubtypePlain)
		case code == tilestore.ValueReservoir || code == tilestore.ValueBasin:
			return shape.NewGeoFeature(c.points(f), shape.SubtypeWater)
		}
	case tilestore.PropBuilding, tilestore.PropLeisure, tilestore.PropAmenity:
		if polygon {
			return shape.NewGeoFeature(c.points(f), shape.SubtypeResidential)
		}
	}
	return nil
}

func naturalSubtype(code tilestore.ValueCode) shape.Subtype {
	switch code {
	case tilestore.ValueWood, tilestore.ValueScrub, tilestore.ValueForest:
		return shape.SubtypeForest
	case tilestore.ValueWater, tilestore.ValueWetland, tilestore.ValueBay:
		return shape.SubtypeWater
	default:
		return shape.SubtypePlain
	}
}

// label prefers the stored label over the name tag.
func label(f *tilestore.Feature) string {
	if len(f.Label()) > 0 {
		return f.LabelString()
	}
	if v, ok := f.Properties.Get(tilestore.PropName); ok {
		return v.Text()
	}
	return ""
}

// points copies the feature coordinates into projected space.
func (c Classifier) points(f *tilestore.Feature) []orb.Point {
	n := f.Coordinates.Len()
	points := make([]orb.Point, n)
	for i := 0; i < n; i++ {
		p := f.Coordinates.Point(i)
		if c.Project != nil {
			p = c.Project(p)
		}
		points[i] = p
	}
	return points
}
