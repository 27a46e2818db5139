package tilingindex

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// ExtentSource lists stored tiles together with the lon/lat extent of
// their coordinates.
type ExtentSource interface {
	Tiles() []uint32
	TileExtent(id uint32) (orb.Bound, bool)
}

// Extent answers queries from the stored tile extents using an R-tree, so
// it works for files whose tile ids follow no grid.
type Extent struct {
	rtree *rtreego.Rtree
	count int
}

type indexedTile struct {
	id    uint32
	bound orb.Bound
}

// Bounds implements rtreego.Spatial.
func (t *indexedTile) Bounds() rtreego.Rect {
	return rect(t.bound)
}

// NewExtent indexes every tile of src that has at least one coordinate.
func NewExtent(src ExtentSource) *Extent {
	// 2D, min=25 children, max=50 children
	rtree := rtreego.NewTree(2, 25, 50)
	count := 0
	for _, id := range src.Tiles() {
		b, ok := src.TileExtent(id)
		if !ok {
			continue
		}
		rtree.Insert(&indexedTile{id: id, bound: b})
		count++
	}
	return &Extent{rtree: rtree, count: count}
}

// Len returns the number of indexed tiles.
func (e *Extent) Len() int {
	return e.count
}

// TilesFor returns the ids of tiles whose extent intersects the box, in
// ascending id order.
func (e *Extent) TilesFor(minLat, minLon, maxLat, maxLon float64) []uint32 {
	if minLat > maxLat || minLon > maxLon {
		return nil
	}
	query := rect(orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}})
	spatials := e.rtree.SearchIntersect(query)

	ids := make([]uint32, 0, len(spatials))
	for _, s := range spatials {
		ids = append(ids, s.(*indexedTile).id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// rect converts a bound to an R-tree rectangle. The R-tree rejects zero
// lengths, so degenerate extents get a small epsilon (~11 meters).
func rect(b orb.Bound) rtreego.Rect {
	const epsilon = 0.0001
	lonLength := b.Max[0] - b.Min[0]
	latLength := b.Max[1] - b.Min[1]
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	r, _ := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{lonLength, latLength})
	return r
}
