package dashboard

import (
	"fmt"

	"github.com/vanderheijden86/msmview/pkg/figure"
)

// Axes ids of the fixed layout.
const (
	AxesSurface    = "surface"
	AxesColorbar   = "colorbar"
	AxesTimescales = "timescales"
	AxesStructure  = "structure"
	AxesLegend     = "legend"
)

// Layout of the figure in figure fractions.
var (
	SurfaceRect    = figure.Rect{X: 0.06, Y: 0.16, W: 0.50, H: 0.74}
	ColorbarRect   = figure.Rect{X: 0.58, Y: 0.16, W: 0.02, H: 0.74}
	TimescalesRect = figure.Rect{X: 0.69, Y: 0.52, W: 0.28, H: 0.38}
	StructureRect  = figure.Rect{X: 0.69, Y: 0.06, W: 0.28, H: 0.38}
	LegendRect     = figure.Rect{X: 0.06, Y: 0.04, W: 0.54, H: 0.08}
)

// Artist ids.
const (
	FreeEnergyID      figure.ArtistID = "surface/free-energy"
	FreeEnergyLinesID figure.ArtistID = "surface/free-energy/lines"
	LagLineID         figure.ArtistID = "timescale/lag"
	StructureID       figure.ArtistID = "structure"
)

// EigenvectorID names the filled eigenvector surface of process p.
func EigenvectorID(p int) figure.ArtistID {
	return figure.ArtistID(fmt.Sprintf("surface/eigenvector/%d", p))
}

// EigenvectorLinesID names the outline contours of process p's surface.
func EigenvectorLinesID(p int) figure.ArtistID {
	return figure.ArtistID(fmt.Sprintf("surface/eigenvector/%d/lines", p))
}

// OverlayID names one contour level of cluster k's outline.
func OverlayID(k int, part string) figure.ArtistID {
	return figure.ArtistID(fmt.Sprintf("overlay/%d/%s", k, part))
}

// TimescaleID names the implied-timescale curve of process p.
func TimescaleID(p int) figure.ArtistID {
	return figure.ArtistID(fmt.Sprintf("timescale/%d", p))
}

// LegendID names the legend marker of cluster k.
func LegendID(k int) figure.ArtistID {
	return figure.ArtistID(fmt.Sprintf("legend/%d", k))
}
