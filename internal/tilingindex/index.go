// Package tilingindex resolves a geographic bounding box to the identifiers
// of the stored tiles that may hold features inside it.
package tilingindex

import "github.com/paulmach/orb"

// Index maps a lat/lon bounding box to tile identifiers. Callers must not
// depend on the order of the result.
type Index interface {
	TilesFor(minLat, minLon, maxLat, maxLon float64) []uint32
}

// Func adapts a plain function to Index.
type Func func(minLat, minLon, maxLat, maxLon float64) []uint32

func (f Func) TilesFor(minLat, minLon, maxLat, maxLon float64) []uint32 {
	return f(minLat, minLon, maxLat, maxLon)
}

// Static returns the same tile ids for every query.
func Static(ids ...uint32) Index {
	return Func(func(_, _, _, _ float64) []uint32 {
		return ids
	})
}

// ForBound is a convenience wrapper taking an orb bound in lon/lat order.
func ForBound(idx Index, b orb.Bound) []uint32 {
	return idx.TilesFor(b.Min[1], b.Min[0], b.Max[1], b.Max[0])
}
