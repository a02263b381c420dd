package render

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/metrics"
)

// Cell is one character of a terminal rendering.
type Cell struct {
	Rune  rune // 0 marks the trailing half of a wide rune
	FG    color.RGBA
	BG    color.RGBA
	HasFG bool
	HasBG bool
}

// Grid is a figure rendered into character cells. One cell is one canvas
// pixel, so hit testing in cell coordinates uses Cols x Rows as the canvas.
type Grid struct {
	Cols, Rows int
	cells      []Cell
}

// Cell returns the cell at column x and row y.
func (g *Grid) Cell(x, y int) Cell {
	return g.cells[y*g.Cols+x]
}

// Plain returns the grid as text without colors.
func (g *Grid) Plain() string {
	var b strings.Builder
	for y := 0; y < g.Rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < g.Cols; x++ {
			if r := g.Cell(x, y).Rune; r != 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// String renders the grid with lipgloss colors, merging runs of equally
// styled cells.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.Rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var cur Cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(cellStyle(cur).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < g.Cols; x++ {
			c := g.Cell(x, y)
			if c.Rune == 0 {
				continue
			}
			if run.Len() > 0 && !sameStyle(c, cur) {
				flush()
			}
			cur = c
			run.WriteRune(c.Rune)
		}
		flush()
	}
	return b.String()
}

func sameStyle(a, b Cell) bool {
	return a.HasFG == b.HasFG && a.HasBG == b.HasBG && a.FG == b.FG && a.BG == b.BG
}

func cellStyle(c Cell) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c.HasFG {
		s = s.Foreground(lipgloss.Color(css(c.FG)))
	}
	if c.HasBG {
		s = s.Background(lipgloss.Color(css(c.BG)))
	}
	return s
}

type termPainter struct {
	g *Grid
}

func (t *termPainter) cell(x, y int) *Cell {
	if x < 0 || y < 0 || x >= t.g.Cols || y >= t.g.Rows {
		return nil
	}
	return &t.g.cells[y*t.g.Cols+x]
}

func (t *termPainter) put(x, y int, r rune, c color.RGBA) {
	if cell := t.cell(x, y); cell != nil {
		if cell.Rune == 0 {
			return
		}
		cell.Rune, cell.FG, cell.HasFG = r, c, true
	}
}

// FillRect colors cell backgrounds. The figure backdrop is left to the
// terminal's own background.
func (t *termPainter) FillRect(x, y, w, h float64, c color.RGBA) {
	if c == colorBackdrop {
		return
	}
	for cy := ri(y); cy < ri(y+h); cy++ {
		for cx := ri(x); cx < ri(x+w); cx++ {
			if cell := t.cell(cx, cy); cell != nil {
				cell.BG, cell.HasBG = c, true
			}
		}
	}
}

func (t *termPainter) StrokeRect(x, y, w, h float64, c color.RGBA, _ float64) {
	x0, y0 := ri(x)-1, ri(y)-1
	x1, y1 := ri(x+w), ri(y+h)
	for cx := x0 + 1; cx < x1; cx++ {
		t.put(cx, y0, '─', c)
		t.put(cx, y1, '─', c)
	}
	for cy := y0 + 1; cy < y1; cy++ {
		t.put(x0, cy, '│', c)
		t.put(x1, cy, '│', c)
	}
	t.put(x0, y0, '┌', c)
	t.put(x1, y0, '┐', c)
	t.put(x0, y1, '└', c)
	t.put(x1, y1, '┘', c)
}

func (t *termPainter) Polyline(pts []point, c color.RGBA, width float64, dashed bool) {
	r := '·'
	if width >= 2 {
		r = '•'
	}
	step := 0
	for i := 1; i < len(pts); i++ {
		x0, y0 := ri(pts[i-1].X-0.5), ri(pts[i-1].Y-0.5)
		x1, y1 := ri(pts[i].X-0.5), ri(pts[i].Y-0.5)
		bresenham(x0, y0, x1, y1, func(x, y int) {
			step++
			if dashed && step%2 == 0 {
				return
			}
			t.put(x, y, r, c)
		})
	}
}

func (t *termPainter) Polygon(pts []point, c color.RGBA) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	t.put(ri(cx/n-0.5), ri(cy/n-0.5), '■', c)
}

func (t *termPainter) Circle(x, y, _ float64, c color.RGBA) {
	t.put(ri(x-0.5), ri(y-0.5), '•', c)
}

var glyphRunes = map[string]rune{
	"o": '●', "s": '■', "^": '▲', "v": '▼', "D": '◆', "p": '⬟', "h": '⬢', "*": '★',
}

// Glyph draws a marker as a single symbol. Symbols the width tables treat as
// wide fall back to the ASCII glyph name.
func (t *termPainter) Glyph(glyph string, x, y float64, c color.RGBA) {
	r, ok := glyphRunes[glyph]
	if !ok || runewidth.RuneWidth(r) != 1 {
		r = '●'
		if len(glyph) == 1 {
			r = rune(glyph[0])
		}
	}
	t.put(ri(x-0.5), ri(y-0.5), r, c)
}

func (t *termPainter) Text(s string, x, y, ax, _ float64, c color.RGBA) {
	w := runewidth.StringWidth(s)
	cx := ri(x - ax*float64(w))
	cy := ri(y - 0.5)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		t.put(cx, cy, r, c)
		if rw == 2 {
			if cell := t.cell(cx+1, cy); cell != nil {
				cell.Rune = 0
			}
		}
		cx += rw
	}
}

// Raster samples img at each cell center and uses it as the cell background.
func (t *termPainter) Raster(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w <= 0 || h <= 0 {
		return
	}
	for cy := ri(y); cy < ri(y+h); cy++ {
		for cx := ri(x); cx < ri(x+w); cx++ {
			cell := t.cell(cx, cy)
			if cell == nil {
				continue
			}
			sx := b.Min.X + int((float64(cx)+0.5-x)/w*float64(b.Dx()))
			sy := b.Min.Y + int((float64(cy)+0.5-y)/h*float64(b.Dy()))
			col := color.RGBAModel.Convert(img.At(min(sx, b.Max.X-1), min(sy, b.Max.Y-1))).(color.RGBA)
			if col.A == 0 {
				continue
			}
			cell.BG, cell.HasBG = col, true
		}
	}
}

// Terminal renders fig into a cols x rows character grid.
func Terminal(fig *figure.Figure, cols, rows int) *Grid {
	defer metrics.Timer(metrics.Render)()

	cols, rows = max(cols, 1), max(rows, 1)
	g := &Grid{Cols: cols, Rows: rows, cells: make([]Cell, cols*rows)}
	for i := range g.cells {
		g.cells[i].Rune = ' '
	}
	paintFigure(fig, &termPainter{g: g}, float64(cols), float64(rows), textMetrics{charW: 1, lineH: 1, compact: true})
	return g
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	dy := -int(math.Abs(float64(y1 - y0)))
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}
