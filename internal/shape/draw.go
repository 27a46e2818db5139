package shape

import (
	"image/color"

	"github.com/fogleman/gg"

	"maptiler/internal/tilestore"
)

// Style is the paint used for one shape.
type Style struct {
	Stroke color.RGBA
	Fill   color.RGBA
	Width  float64
	Dash   []float64
}

var (
	Background = color.RGBA{0xf2, 0xef, 0xe9, 0xff}

	forestColor      = color.RGBA{0xad, 0xd1, 0x9e, 0xff}
	residentialColor = color.RGBA{0xe0, 0xdf, 0xdf, 0xff}
	plainColor       = color.RGBA{0xcd, 0xeb, 0xb0, 0xff}
	waterColor       = color.RGBA{0xaa, 0xd3, 0xdf, 0xff}
	railwayColor     = color.RGBA{0x70, 0x70, 0x70, 0xff}
	borderColor      = color.RGBA{0x9e, 0x5d, 0x9e, 0xff}
	placeColor       = color.RGBA{0x33, 0x33, 0x33, 0xff}
	placeAreaColor   = color.RGBA{0xf2, 0xda, 0xd9, 0xff}
)

func roadStyle(class tilestore.ValueCode) Style {
	switch class {
	case tilestore.ValueMotorway, tilestore.ValueMotorwayLink:
		return Style{Stroke: color.RGBA{0xe8, 0x92, 0xa2, 0xff}, Width: 5}
	case tilestore.ValueTrunk, tilestore.ValueTrunkLink:
		return Style{Stroke: color.RGBA{0xf9, 0xb2, 0x9c, 0xff}, Width: 4.5}
	case tilestore.ValuePrimary, tilestore.ValuePrimaryLink:
		return Style{Stroke: color.RGBA{0xfc, 0xd6, 0xa4, 0xff}, Width: 4}
	case tilestore.ValueSecondary, tilestore.ValueSecondaryLink:
		return Style{Stroke: color.RGBA{0xf7, 0xfa, 0xbf, 0xff}, Width: 3.5}
	case tilestore.ValueTertiary, tilestore.ValueTertiaryLink:
		return Style{Stroke: color.RGBA{0xff, 0xff, 0xff, 0xff}, Width: 3}
	default:
		return Style{Stroke: color.RGBA{0xff, 0xff, 0xff, 0xff}, Width: 2}
	}
}

// Style returns the variant style of the shape.
func (s *Shape) Style() Style {
	switch s.Kind {
	case KindRoad:
		return roadStyle(s.Class)
	case KindRailway:
		return Style{Stroke: railwayColor, Width: 2, Dash: []float64{6, 4}}
	case KindBorder:
		return Style{Stroke: borderColor, Width: 2.5, Dash: []float64{8, 3, 2, 3}}
	case KindWaterway:
		if s.Filled {
			return Style{Fill: waterColor}
		}
		return Style{Stroke: waterColor, Width: 2}
	case KindGeoFeature:
		switch s.Subtype {
		case SubtypeForest:
			return Style{Fill: forestColor}
		case SubtypeResidential:
			return Style{Fill: residentialColor}
		case SubtypeWater:
			return Style{Fill: waterColor}
		default:
			return Style{Fill: plainColor}
		}
	case KindPopulatedPlace:
		if s.Geometry == tilestore.KindPoint {
			return Style{Fill: placeColor}
		}
		return Style{Fill: placeAreaColor}
	default:
		return Style{}
	}
}

// Render paints the shape. Points must already be in pixel space.
func (s *Shape) Render(dc *gg.Context) {
	if len(s.Points) == 0 {
		return
	}
	st := s.Style()

	dc.Push()
	defer dc.Pop()

	switch s.Kind {
	case KindRoad, KindRailway, KindBorder:
		s.stroke(dc, st)
	case KindWaterway:
		if s.Filled {
			s.fill(dc, st)
		} else {
			s.stroke(dc, st)
		}
	case KindGeoFeature:
		s.fill(dc, st)
	case KindPopulatedPlace:
		if s.Geometry != tilestore.KindPoint {
			s.fill(dc, st)
			return
		}
		p := s.Points[0]
		dc.SetColor(st.Fill)
		dc.DrawCircle(p[0], p[1], placeRadius(s.Class))
		dc.Fill()
		if s.Label != "" {
			dc.DrawStringAnchored(s.Label, p[0]+placeRadius(s.Class)+3, p[1], 0, 0.5)
		}
	}
}

func placeRadius(class tilestore.ValueCode) float64 {
	switch class {
	case tilestore.ValueCity:
		return 4
	case tilestore.ValueTown:
		return 3
	default:
		return 2
	}
}

func (s *Shape) stroke(dc *gg.Context, st Style) {
	if len(s.Points) < 2 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(s.Points[0][0], s.Points[0][1])
	for _, p := range s.Points[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.SetColor(st.Stroke)
	dc.SetLineWidth(st.Width)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	if len(st.Dash) > 0 {
		dc.SetDash(st.Dash...)
	}
	dc.Stroke()
}

func (s *Shape) fill(dc *gg.Context, st Style) {
	if len(s.Points) < 3 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(s.Points[0][0], s.Points[0][1])
	for _, p := range s.Points[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()
	dc.SetColor(st.Fill)
	dc.Fill()
}
