package figure

import (
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Colormap maps [0, 1] onto a color gradient. Stops are blended in CIE L*a*b*
// so perceived lightness changes evenly between them. A colormap may instead
// wrap a gonum/plot palette.ColorMap.
type Colormap struct {
	Name  string
	stops []colorful.Color
	cm    palette.ColorMap
}

// paletteColormap wraps cm, rescaled to [0, 1].
func paletteColormap(name string, cm palette.ColorMap) Colormap {
	cm.SetMin(0)
	cm.SetMax(1)
	return Colormap{Name: name, cm: cm}
}

// NewColormap builds a colormap from hex color stops.
func NewColormap(name string, hexStops ...string) Colormap {
	stops := make([]colorful.Color, 0, len(hexStops))
	for _, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			continue
		}
		stops = append(stops, c)
	}
	return Colormap{Name: name, stops: stops}
}

// Built-in colormaps.
var (
	// Viridis is the sequential map used for free energy.
	Viridis = NewColormap("viridis", "#440154", "#3b528b", "#21918c", "#5ec962", "#fde725")
	// Bone is a sequential grey-blue map.
	Bone = NewColormap("bone", "#000000", "#545474", "#a7c7c7", "#ffffff")
	// RdBu is the diverging map used for eigenvector surfaces.
	RdBu = NewColormap("rdbu", "#67001f", "#d6604d", "#f7f7f7", "#4393c3", "#053061")
	// CoolWarm is Moreland's smooth blue-red diverging map.
	CoolWarm = paletteColormap("coolwarm", moreland.SmoothBlueRed())
	// Kindlmann is a sequential map with monotonic luminance.
	Kindlmann = paletteColormap("kindlmann", moreland.Kindlmann())
)

// ColormapByName returns a built-in colormap, defaulting to Viridis.
func ColormapByName(name string) Colormap {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rdbu", "rdbu_r", "diverging":
		return RdBu
	case "bone":
		return Bone
	case "coolwarm":
		return CoolWarm
	case "kindlmann":
		return Kindlmann
	default:
		return Viridis
	}
}

// At returns the color at position t, clamped to [0, 1].
func (c Colormap) At(t float64) color.RGBA {
	if c.cm != nil {
		return c.paletteAt(t)
	}
	if len(c.stops) == 0 {
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	if len(c.stops) == 1 || math.IsNaN(t) {
		return toRGBA(c.stops[0])
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(c.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(c.stops)-1 {
		return toRGBA(c.stops[len(c.stops)-1])
	}
	f := pos - float64(i)
	if f == 0 {
		return toRGBA(c.stops[i])
	}
	return toRGBA(c.stops[i].BlendLab(c.stops[i+1], f).Clamped())
}

func (c Colormap) paletteAt(t float64) color.RGBA {
	if math.IsNaN(t) {
		t = 0
	}
	col, err := c.cm.At(math.Max(0, math.Min(1, t)))
	if err != nil {
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	rgba.A = 0xff
	return rgba
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xff}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// ParseHex parses #rrggbb into an opaque color.
func ParseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	return toRGBA(c), nil
}
