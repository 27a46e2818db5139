package tessellate

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maptiler/internal/shape"
	"maptiler/internal/tilestore"
)

var identity = Classifier{}

var (
	square = []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	line   = []orb.Point{{0, 0}, {2, 1}}
	dot    = []orb.Point{{0.5, 0.5}}
)

func tags(kv ...string) []tilestore.Tag {
	out := make([]tilestore.Tag, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, tilestore.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

func classify(t *testing.T, kind tilestore.GeometryKind, coords []orb.Point, kv ...string) (*shape.Shape, bool) {
	t.Helper()
	f := tilestore.NewFeature(1, kind, coords, "", tags(kv...)...)
	bbox := shape.NewBoundingBox()
	return identity.Classify(f, &bbox)
}

func TestClassify_Rules(t *testing.T) {
	cases := []struct {
		name    string
		kind    tilestore.GeometryKind
		coords  []orb.Point
		tags    []string
		want    shape.Kind
		subtype shape.Subtype
	}{
		{"motorway", tilestore.KindLine, line, []string{"highway", "motorway"}, shape.KindRoad, shape.SubtypeNone},
		{"residential street", tilestore.KindLine, line, []string{"highway", "residential"}, shape.KindRoad, shape.SubtypeNone},
		{"water line", tilestore.KindLine, line, []string{"water", "river"}, shape.KindWaterway, shape.SubtypeNone},
		{"water polygon", tilestore.KindPolygon, square, []string{"water", "lake"}, shape.KindWaterway, shape.SubtypeNone},
		{"boundary forest", tilestore.KindPolygon, square, []string{"boundary", "forest"}, shape.KindGeoFeature, shape.SubtypeForest},
		{"city", tilestore.KindPoint, dot, []string{"place", "city"}, shape.KindPopulatedPlace, shape.SubtypeNone},
		{"hamlet", tilestore.KindPoint, dot, []string{"place", "hamlet"}, shape.KindPopulatedPlace, shape.SubtypeNone},
		{"railway any value", tilestore.KindLine, line, []string{"railway", "tram"}, shape.KindRailway, shape.SubtypeNone},
		{"natural wood", tilestore.KindPolygon, square, []string{"natural", "wood"}, shape.KindGeoFeature, shape.SubtypeForest},
		{"natural wetland", tilestore.KindPolygon, square, []string{"natural", "wetland"}, shape.KindGeoFeature, shape.SubtypeWater},
		{"natural heath", tilestore.KindPolygon, square, []string{"natural", "heath"}, shape.KindGeoFeature, shape.SubtypePlain},
		{"landuse forest line", tilestore.KindLine, line, []string{"landuse", "forest"}, shape.KindGeoFeature, shape.SubtypeForest},
		{"landuse orchard", tilestore.KindPolygon, square, []string{"landuse", "orchard"}, shape.KindGeoFeature, shape.SubtypeForest},
		{"landuse industrial", tilestore.KindPolygon, square, []string{"landuse", "industrial"}, shape.KindGeoFeature, shape.SubtypeResidential},
		{"landuse meadow", tilestore.KindPolygon, square, []string{"landuse", "meadow"}, shape.KindGeoFeature, shape.SubtypePlain},
		{"landuse reservoir", tilestore.KindPolygon, square, []string{"landuse", "reservoir"}, shape.KindGeoFeature, shape.SubtypeWater},
		{"building", tilestore.KindPolygon, square, []string{"building", "yes"}, shape.KindGeoFeature, shape.SubtypeResidential},
		{"leisure", tilestore.KindPolygon, square, []string{"leisure", "park"}, shape.KindGeoFeature, shape.SubtypeResidential},
		{"amenity", tilestore.KindPolygon, square, []string{"amenity", "school"}, shape.KindGeoFeature, shape.SubtypeResidential},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := classify(t, tc.kind, tc.coords, tc.tags...)
			require.True(t, ok)
			assert.Equal(t, tc.want, s.Kind)
			assert.Equal(t, tc.subtype, s.Subtype)
		})
	}
}

func TestClassify_NoShape(t *testing.T) {
	cases := []struct {
		name   string
		kind   tilestore.GeometryKind
		coords []orb.Point
		tags   []string
	}{
		{"unknown highway", tilestore.KindLine, line, []string{"highway", "footway"}},
		{"water point", tilestore.KindPoint, dot, []string{"water", "pond"}},
		{"village", tilestore.KindPoint, dot, []string{"place", "village"}},
		{"natural line", tilestore.KindLine, line, []string{"natural", "wood"}},
		{"landuse residential line", tilestore.KindLine, line, []string{"landuse", "residential"}},
		{"landuse unknown", tilestore.KindPolygon, square, []string{"landuse", "garages"}},
		{"building line", tilestore.KindLine, line, []string{"building", "yes"}},
		{"name only", tilestore.KindPoint, dot, []string{"name", "Somewhere"}},
		{"no tags", tilestore.KindPolygon, square, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := classify(t, tc.kind, tc.coords, tc.tags...)
			assert.False(t, ok)
			assert.Nil(t, s)
		})
	}
}

func TestClassify_WaterBeatsBuilding(t *testing.T) {
	s, ok := classify(t, tilestore.KindPolygon, square, "building", "yes", "water", "pond")
	require.True(t, ok)
	assert.Equal(t, shape.KindWaterway, s.Kind)
	assert.True(t, s.Filled)
}

func TestClassify_HighwayBeatsLanduse(t *testing.T) {
	s, ok := classify(t, tilestore.KindLine, line, "landuse", "forest", "highway", "primary")
	require.True(t, ok)
	assert.Equal(t, shape.KindRoad, s.Kind)
	assert.Equal(t, tilestore.ValuePrimary, s.Class)
}

func TestClassify_NationalBorder(t *testing.T) {
	for _, order := range [][]string{
		{"boundary", "administrative", "admin_level", "2"},
		{"admin_level", "2", "boundary", "administrative"},
	} {
		s, ok := classify(t, tilestore.KindLine, square, order...)
		require.True(t, ok, "%v", order)
		assert.Equal(t, shape.KindBorder, s.Kind)
		assert.Len(t, s.Points, len(square))
	}
}

func TestClassify_BorderNeedsBothTags(t *testing.T) {
	for _, kv := range [][]string{
		{"boundary", "administrative"},
		{"admin_level", "2"},
		{"boundary", "administrative", "admin_level", "4"},
	} {
		_, ok := classify(t, tilestore.KindLine, square, kv...)
		assert.False(t, ok, "%v", kv)
	}
}

func TestClassify_PlaceLabel(t *testing.T) {
	bbox := shape.NewBoundingBox()

	f := tilestore.NewFeature(1, tilestore.KindPoint, dot, "Stored", tags("place", "town", "name", "Tagged")...)
	s, ok := identity.Classify(f, &bbox)
	require.True(t, ok)
	assert.Equal(t, "Stored", s.Label)

	f = tilestore.NewFeature(2, tilestore.KindPoint, dot, "", tags("place", "town", "name", "Tagged")...)
	s, ok = identity.Classify(f, &bbox)
	require.True(t, ok)
	assert.Equal(t, "Tagged", s.Label)
	assert.Equal(t, tilestore.ValueTown, s.Class)
}

func TestClassify_FoldsExtentIntoBoundingBox(t *testing.T) {
	bbox := shape.NewBoundingBox()

	f := tilestore.NewFeature(1, tilestore.KindLine, []orb.Point{{-1, 2}, {3, 4}}, "", tags("railway", "rail")...)
	_, ok := identity.Classify(f, &bbox)
	require.True(t, ok)

	skipped := tilestore.NewFeature(2, tilestore.KindLine, []orb.Point{{50, 50}}, "", tags("highway", "path")...)
	_, ok = identity.Classify(skipped, &bbox)
	require.False(t, ok)

	assert.Equal(t, shape.BoundingBox{MinX: -1, MinY: 2, MaxX: 3, MaxY: 4}, bbox)
}

func TestClassify_Deterministic(t *testing.T) {
	f := tilestore.NewFeature(1, tilestore.KindPolygon, square, "", tags("natural", "water", "landuse", "meadow")...)

	b1, b2 := shape.NewBoundingBox(), shape.NewBoundingBox()
	s1, ok1 := identity.Classify(f, &b1)
	s2, ok2 := identity.Classify(f, &b2)

	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, shape.SubtypeWater, s1.Subtype)
}

func TestClassify_DefaultProjectsToMercator(t *testing.T) {
	p := orb.Point{13.4, 52.5}
	f := tilestore.NewFeature(1, tilestore.KindLine, []orb.Point{p, {13.5, 52.6}}, "", tags("highway", "trunk")...)

	bbox := shape.NewBoundingBox()
	s, ok := Classify(f, &bbox)
	require.True(t, ok)

	want := project.WGS84.ToMercator(orb.Point{float64(float32(p[0])), float64(float32(p[1]))})
	assert.InDelta(t, want[0], s.Points[0][0], 1e-6)
	assert.InDelta(t, want[1], s.Points[0][1], 1e-6)
	assert.InDelta(t, want[0], bbox.MinX, 1e-6)
}
