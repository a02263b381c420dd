package figure

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/recorder"

	"github.com/vanderheijden86/msmview/pkg/model"
)

// Segment is one straight piece of an isoline in data coordinates.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// fieldGrid adapts a ScalarField to plotter.GridXYZ. Grid columns run along
// X and rows along Y. Non-finite samples read as NaN.
type fieldGrid struct {
	f *model.ScalarField
}

func (g fieldGrid) Dims() (c, r int) {
	rows, cols := g.f.Dims()
	return cols, rows
}

func (g fieldGrid) Z(c, r int) float64 {
	v := g.f.At(r, c)
	if !finite(v) {
		return math.NaN()
	}
	return v
}

func (g fieldGrid) X(c int) float64 { return g.f.X[c] }
func (g fieldGrid) Y(r int) float64 { return g.f.Y[r] }

// Isolines traces the level set of field at level. Paths come from gonum/plot's
// contour tracer drawn onto a recording canvas whose coordinates equal data
// coordinates. Pieces lying in a cell that touches a non-finite sample are cut.
func Isolines(field *model.ScalarField, level float64) []Segment {
	rows, cols := field.Dims()
	if rows < 2 || cols < 2 || !finite(level) {
		return nil
	}
	lo, hi, ok := field.Range()
	if !ok || level < lo || level > hi {
		return nil
	}

	grid := fieldGrid{f: field}
	c := plotter.NewContour(grid, []float64{level}, nil)
	c.LineStyles = []draw.LineStyle{{Color: color.Black, Width: 1}}

	xmin, xmax, ymin, ymax := field.Extent()
	p := plot.New()
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax

	var rec recorder.Canvas
	c.Plot(draw.Canvas{
		Canvas: &rec,
		Rectangle: vg.Rectangle{
			Min: vg.Point{X: vg.Length(xmin), Y: vg.Length(ymin)},
			Max: vg.Point{X: vg.Length(xmax), Y: vg.Length(ymax)},
		},
	}, p)

	var segs []Segment
	for _, a := range rec.Actions {
		stroke, ok := a.(*recorder.Stroke)
		if !ok {
			continue
		}
		segs = appendPath(segs, field, stroke.Path)
	}
	return segs
}

// appendPath splits a traced path into segments, dropping the ones in masked
// cells.
func appendPath(segs []Segment, field *model.ScalarField, path vg.Path) []Segment {
	var (
		start, prev vg.Point
		open        bool
	)
	add := func(a, b vg.Point) {
		s := Segment{X0: float64(a.X), Y0: float64(a.Y), X1: float64(b.X), Y1: float64(b.Y)}
		if s.X0 == s.X1 && s.Y0 == s.Y1 {
			return
		}
		if maskedAt(field, (s.X0+s.X1)/2, (s.Y0+s.Y1)/2) {
			return
		}
		segs = append(segs, s)
	}
	for _, comp := range path {
		switch comp.Type {
		case vg.MoveComp:
			start, prev, open = comp.Pos, comp.Pos, true
		case vg.LineComp:
			if open {
				add(prev, comp.Pos)
			}
			prev, open = comp.Pos, true
		case vg.CloseComp:
			if open {
				add(prev, start)
			}
			prev = start
		}
	}
	return segs
}

// maskedAt reports whether (x, y) lies outside the grid or in a cell with a
// non-finite corner.
func maskedAt(field *model.ScalarField, x, y float64) bool {
	if !finite(x) || !finite(y) {
		return true
	}
	j, okx := cellIndex(field.X, x)
	i, oky := cellIndex(field.Y, y)
	if !okx || !oky {
		return true
	}
	for _, v := range []float64{field.At(i, j), field.At(i, j+1), field.At(i+1, j), field.At(i+1, j+1)} {
		if !finite(v) {
			return true
		}
	}
	return false
}

// cellIndex returns k with axis[k] <= v <= axis[k+1] on an ascending or
// descending axis.
func cellIndex(axis []float64, v float64) (int, bool) {
	n := len(axis)
	if n < 2 {
		return 0, false
	}
	asc := axis[n-1] >= axis[0]
	k := sort.Search(n, func(i int) bool {
		if asc {
			return axis[i] >= v
		}
		return axis[i] <= v
	})
	switch {
	case k == 0:
		if axis[0] != v {
			return 0, false
		}
		return 0, true
	case k >= n:
		return 0, false
	}
	return k - 1, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
