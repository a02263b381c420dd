package render

import (
	"image/color"
	"math"
)

// glyphPainter is implemented by backends that draw marker glyphs natively.
type glyphPainter interface {
	Glyph(glyph string, x, y float64, c color.RGBA)
}

// paintGlyph draws a legend marker glyph of the given pixel size centered on
// (x, y). Unknown glyphs fall back to a circle.
func paintGlyph(p painter, glyph string, x, y, size float64, c color.RGBA) {
	if gp, ok := p.(glyphPainter); ok {
		gp.Glyph(glyph, x, y, c)
		return
	}
	pts := glyphPolygon(glyph, x, y, size/2)
	if pts == nil {
		p.Circle(x, y, size/2, c)
		return
	}
	p.Polygon(pts, c)
}

func glyphPolygon(glyph string, x, y, r float64) []point {
	switch glyph {
	case "s":
		return regular(4, x, y, r, math.Pi/4)
	case "D":
		return regular(4, x, y, r, 0)
	case "^":
		return regular(3, x, y, r, -math.Pi/2)
	case "v":
		return regular(3, x, y, r, math.Pi/2)
	case "p":
		return regular(5, x, y, r, -math.Pi/2)
	case "h":
		return regular(6, x, y, r, 0)
	case "*":
		return star(5, x, y, r, r*0.45)
	default:
		return nil
	}
}

// regular returns the vertices of a regular n-gon. y grows downwards.
func regular(n int, x, y, r, rotation float64) []point {
	pts := make([]point, n)
	for i := range pts {
		a := rotation + 2*math.Pi*float64(i)/float64(n)
		pts[i] = point{x + r*math.Cos(a), y + r*math.Sin(a)}
	}
	return pts
}

func star(n int, x, y, outer, inner float64) []point {
	pts := make([]point, 2*n)
	for i := range pts {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + math.Pi*float64(i)/float64(n)
		pts[i] = point{x + r*math.Cos(a), y + r*math.Sin(a)}
	}
	return pts
}
