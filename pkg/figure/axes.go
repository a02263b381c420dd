package figure

import "math"

// Rect is a region in figure fractions. The origin is the top-left corner and
// y grows downwards, the same orientation backends use.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the figure fraction (fx, fy) lies inside r.
func (r Rect) Contains(fx, fy float64) bool {
	return fx >= r.X && fx <= r.X+r.W && fy >= r.Y && fy <= r.Y+r.H
}

// Axes is a rectangular plotting region with its own data coordinates.
type Axes struct {
	ID     string
	Rect   Rect
	XLim   [2]float64
	YLim   [2]float64
	LogY   bool
	Title  string
	XLabel string
	YLabel string
	XTicks []float64
	YTicks []float64
	Frame  bool

	// nominal figure size in pixels, set by Figure.AddAxes
	refW, refH float64
}

// SetLimits sets both data ranges.
func (a *Axes) SetLimits(xmin, xmax, ymin, ymax float64) {
	a.XLim = [2]float64{xmin, xmax}
	a.YLim = [2]float64{ymin, ymax}
}

// ClearTicks removes all tick marks.
func (a *Axes) ClearTicks() {
	a.XTicks = nil
	a.YTicks = nil
}

// PixelRect returns the axes bounds in a canvas of width x height pixels.
func (a *Axes) PixelRect(width, height float64) (x, y, w, h float64) {
	return a.Rect.X * width, a.Rect.Y * height, a.Rect.W * width, a.Rect.H * height
}

// PixelScale returns how many canvas pixels one nominal figure pixel spans
// on a width x height canvas. Axes made outside a figure scale by 1.
func (a *Axes) PixelScale(width, height float64) float64 {
	if a.refW <= 0 || a.refH <= 0 {
		return 1
	}
	return math.Min(width/a.refW, height/a.refH)
}

// ToPixel maps data coordinates to canvas pixels.
func (a *Axes) ToPixel(x, y, width, height float64) (px, py float64) {
	ox, oy, w, h := a.PixelRect(width, height)
	fx := frac(x, a.XLim[0], a.XLim[1], false)
	fy := frac(y, a.YLim[0], a.YLim[1], a.LogY)
	return ox + fx*w, oy + (1-fy)*h
}

// FromPixel maps canvas pixels back to data coordinates.
func (a *Axes) FromPixel(px, py, width, height float64) (x, y float64) {
	ox, oy, w, h := a.PixelRect(width, height)
	fx := (px - ox) / w
	fy := 1 - (py-oy)/h
	x = a.XLim[0] + fx*(a.XLim[1]-a.XLim[0])
	if a.LogY {
		lo, hi := math.Log10(a.YLim[0]), math.Log10(a.YLim[1])
		return x, math.Pow(10, lo+fy*(hi-lo))
	}
	return x, a.YLim[0] + fy*(a.YLim[1]-a.YLim[0])
}

func frac(v, lo, hi float64, log bool) float64 {
	if log {
		if v <= 0 || lo <= 0 || hi <= 0 {
			return 0
		}
		v, lo, hi = math.Log10(v), math.Log10(lo), math.Log10(hi)
	}
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}
