package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/metrics"
)

type svgPainter struct {
	canvas *svg.SVG
	err    error
}

func (s *svgPainter) FillRect(x, y, w, h float64, c color.RGBA) {
	s.canvas.Rect(ri(x), ri(y), ri(w), ri(h), fmt.Sprintf("fill:%s", css(c)))
}

func (s *svgPainter) StrokeRect(x, y, w, h float64, c color.RGBA, width float64) {
	s.canvas.Rect(ri(x), ri(y), ri(w), ri(h), fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", css(c), width))
}

func (s *svgPainter) Polyline(pts []point, c color.RGBA, width float64, dashed bool) {
	if len(pts) < 2 {
		return
	}
	xs, ys := coords(pts)
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%g", css(c), width)
	if dashed {
		style += ";stroke-dasharray:6,4"
	}
	s.canvas.Polyline(xs, ys, style)
}

func (s *svgPainter) Polygon(pts []point, c color.RGBA) {
	xs, ys := coords(pts)
	s.canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s", css(c)))
}

func (s *svgPainter) Circle(x, y, r float64, c color.RGBA) {
	s.canvas.Circle(ri(x), ri(y), max(1, ri(r)), fmt.Sprintf("fill:%s", css(c)))
}

func (s *svgPainter) Text(t string, x, y, ax, ay float64, c color.RGBA) {
	anchor := "start"
	switch {
	case ax >= 0.75:
		anchor = "end"
	case ax >= 0.25:
		anchor = "middle"
	}
	baseline := "middle"
	if ay < 0.25 {
		baseline = "hanging"
	}
	s.canvas.Text(ri(x), ri(y), t,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:%s;dominant-baseline:%s", css(c), anchor, baseline))
}

// Raster embeds img as a base64 PNG data URI.
func (s *svgPainter) Raster(img image.Image, x, y, w, h float64) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if s.err == nil {
			s.err = err
		}
		return
	}
	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	s.canvas.Image(ri(x), ri(y), ri(w), ri(h), href, `preserveAspectRatio="none"`)
}

// WriteSVG paints fig as an SVG document.
func WriteSVG(w io.Writer, fig *figure.Figure) error {
	defer metrics.Timer(metrics.Render)()

	canvas := svg.New(w)
	canvas.Start(fig.Width, fig.Height)
	if fig.Title != "" {
		canvas.Title(fig.Title)
	}
	p := &svgPainter{canvas: canvas}
	paintFigure(fig, p, float64(fig.Width), float64(fig.Height), textMetrics{charW: 7, lineH: 15})
	canvas.End()
	return p.err
}

func coords(pts []point) ([]int, []int) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = ri(pt.X), ri(pt.Y)
	}
	return xs, ys
}

func ri(v float64) int { return int(math.Round(v)) }

func css(c color.RGBA) string {
	return strings.ToLower(figure.Hex(c))
}
