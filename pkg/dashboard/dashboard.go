// Package dashboard builds the linked multi-panel figure for a dataset and
// wires its pickable artists to an interaction controller.
//
// The layout is fixed: the main contour surface with its colorbar on the
// left, implied time scales and the representative structure on the right,
// and the cluster legend above the surface.
package dashboard

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/vanderheijden86/msmview/pkg/config"
	"github.com/vanderheijden86/msmview/pkg/debug"
	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/interact"
	"github.com/vanderheijden86/msmview/pkg/metrics"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/panel"
)

// Options controls figure construction.
type Options struct {
	Width               int
	Height              int
	FreeEnergyColormap  string
	EigenvectorColormap string
	NormalWidth         float64
	EmphasisWidth       float64
	// Logger receives pick diagnostics. Nil keeps the controller silent.
	Logger *log.Logger
}

// OptionsFromConfig maps user configuration onto build options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Width:               cfg.Export.Width,
		Height:              cfg.Export.Height,
		FreeEnergyColormap:  cfg.Surface.FreeEnergyColormap,
		EigenvectorColormap: cfg.Surface.EigenvectorColormap,
		NormalWidth:         cfg.Lines.NormalWidth,
		EmphasisWidth:       cfg.Lines.EmphasisWidth,
	}
}

// DefaultOptions returns OptionsFromConfig(config.DefaultConfig()).
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

var (
	outlineColor = color.RGBA{0x30, 0x30, 0x30, 0xff}
	lagLineColor = color.RGBA{0x99, 0x99, 0x99, 0xff}
	processMap   = figure.Viridis
)

// Dashboard is a built figure together with its controller and adapters.
type Dashboard struct {
	Dataset    *model.Dataset
	Figure     *figure.Figure
	Controller *interact.Controller

	FreeEnergy   *panel.SurfaceRenderer
	Eigenvectors map[int]*panel.SurfaceRenderer
	Overlays     map[int]*panel.OverlayRenderer
	Markers      map[int]*panel.TimescaleMarker
	Image        *panel.ImagePanel
}

// Build constructs the figure for ds and pushes the initial view state:
// free energy shown, no overlay, default structure image.
func Build(ds *model.Dataset, opts Options) (*Dashboard, error) {
	defer metrics.Timer(metrics.FigureBuild)()
	defer debug.LogEnterExit("dashboard.Build")()

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	fig := figure.New(opts.Width, opts.Height)
	fig.Title = ds.Name
	d := &Dashboard{
		Dataset:      ds,
		Figure:       fig,
		Eigenvectors: make(map[int]*panel.SurfaceRenderer, len(ds.Processes)),
		Overlays:     make(map[int]*panel.OverlayRenderer, len(ds.Clusters)),
		Markers:      make(map[int]*panel.TimescaleMarker, len(ds.Processes)),
	}

	surfaceAx := fig.AddAxes(AxesSurface, SurfaceRect)
	colorbarAx := fig.AddAxes(AxesColorbar, ColorbarRect)
	timescaleAx := fig.AddAxes(AxesTimescales, TimescalesRect)
	structureAx := fig.AddAxes(AxesStructure, StructureRect)
	legendAx := fig.AddAxes(AxesLegend, LegendRect)

	if err := d.addSurfaces(surfaceAx, colorbarAx, opts); err != nil {
		return nil, err
	}
	if err := d.addOverlays(surfaceAx); err != nil {
		return nil, err
	}
	if err := d.addTimescales(timescaleAx); err != nil {
		return nil, err
	}
	if err := d.addLegend(legendAx); err != nil {
		return nil, err
	}
	if err := d.addStructure(structureAx); err != nil {
		return nil, err
	}
	colorbarAx.Frame = true

	ctrl, err := d.newController(opts)
	if err != nil {
		return nil, err
	}
	d.Controller = ctrl
	if err := ctrl.Sync(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dashboard) addSurfaces(ax, colorbar *figure.Axes, opts Options) error {
	ds := d.Dataset
	xmin, xmax, ymin, ymax := ds.FreeEnergy.Extent()
	ax.SetLimits(xmin, xmax, ymin, ymax)
	ax.XTicks = figure.NiceTicks(xmin, xmax)
	ax.YTicks = figure.NiceTicks(ymin, ymax)
	ax.XLabel, ax.YLabel = "CV 1", "CV 2"
	ax.Frame = true

	fill := figure.NewContourFill(FreeEnergyID, ax, ds.FreeEnergy, ds.FreeEnergyLevels,
		figure.ColormapByName(opts.FreeEnergyColormap))
	lines := figure.NewContourLines(FreeEnergyLinesID, ax, ds.FreeEnergy, ds.FreeEnergyLevels, outlineColor, 0.5)
	if err := addAll(d.Figure, fill, lines); err != nil {
		return err
	}
	d.FreeEnergy = panel.NewSurfaceRenderer(d.Figure, colorbar, fill, lines)

	cmap := figure.ColormapByName(opts.EigenvectorColormap)
	for _, p := range ds.Processes {
		fill := figure.NewContourFill(EigenvectorID(p.ID), ax, p.Eigenvector, p.Levels, cmap)
		lines := figure.NewContourLines(EigenvectorLinesID(p.ID), ax, p.Eigenvector, p.Levels, outlineColor, 0.5)
		if err := addAll(d.Figure, fill, lines); err != nil {
			return err
		}
		s := panel.NewSurfaceRenderer(d.Figure, colorbar, fill, lines)
		s.SetVisible(false)
		d.Eigenvectors[p.ID] = s
	}
	return nil
}

func (d *Dashboard) addOverlays(ax *figure.Axes) error {
	for _, c := range d.Dataset.Clusters {
		parts := []figure.Artist{
			figure.NewContourLines(OverlayID(c.ID, "presence"), ax, c.Density, []float64{c.PresenceLevel}, c.Color, 2),
		}
		if c.InnerLevel != nil {
			parts = append(parts,
				figure.NewContourLines(OverlayID(c.ID, "inner"), ax, c.Density, []float64{*c.InnerLevel}, c.Color, 1))
		}
		if err := addAll(d.Figure, parts...); err != nil {
			return err
		}
		o := panel.NewOverlayRenderer(parts...)
		o.SetVisible(false)
		d.Overlays[c.ID] = o
	}
	return nil
}

func (d *Dashboard) addTimescales(ax *figure.Axes) error {
	ds := d.Dataset
	unit := ds.LagUnit
	if unit == "" {
		unit = "steps"
	}
	ax.Title = "Implied timescales"
	ax.XLabel = fmt.Sprintf("lag time (%s)", unit)
	ax.YLabel = fmt.Sprintf("timescale (%s)", unit)
	ax.LogY = true
	ax.Frame = true

	xlo, xhi := math.Inf(1), math.Inf(-1)
	ylo, yhi := math.Inf(1), math.Inf(-1)
	for _, lag := range ds.Lags {
		xlo, xhi = math.Min(xlo, lag), math.Max(xhi, lag)
		if lag > 0 {
			ylo, yhi = math.Min(ylo, lag), math.Max(yhi, lag)
		}
	}
	for _, p := range ds.Processes {
		for _, ts := range p.Timescales {
			if ts > 0 && !math.IsInf(ts, 0) {
				ylo, yhi = math.Min(ylo, ts), math.Max(yhi, ts)
			}
		}
	}
	if math.IsInf(ylo, 0) {
		ylo, yhi = 1, 10
	}
	ax.SetLimits(xlo, xhi, ylo/1.5, yhi*1.5)
	ax.XTicks = figure.NiceTicks(xlo, xhi)
	ax.YTicks = figure.LogTicks(ax.YLim[0], ax.YLim[1])

	// Time scales below the lag time cannot be resolved.
	lag := figure.NewLine(LagLineID, ax, ds.Lags, ds.Lags, lagLineColor, 1)
	lag.Dashed = true
	if err := d.Figure.Add(lag); err != nil {
		return err
	}

	for _, p := range ds.Processes {
		c := processMap.At(float64(p.ID-1) / float64(max(len(ds.Processes)-1, 1)))
		line := figure.NewLine(TimescaleID(p.ID), ax, ds.Lags, p.Timescales, c, interact.DefaultNormalWidth)
		line.Points = true
		line.Label = fmt.Sprintf("process %d", p.ID)
		line.SetPickable(true)
		if err := d.Figure.Add(line); err != nil {
			return err
		}
		d.Markers[p.ID] = panel.NewTimescaleMarker(line)
	}
	return nil
}

func (d *Dashboard) addLegend(ax *figure.Axes) error {
	n := float64(len(d.Dataset.Clusters))
	ax.SetLimits(0.5, n+0.5, 0, 1)
	for _, c := range d.Dataset.Clusters {
		m := figure.NewMarker(LegendID(c.ID), ax, float64(c.ID), 0.5, c.Marker, c.Color, 14,
			fmt.Sprintf("Cluster %d", c.ID))
		m.Short = fmt.Sprint(c.ID)
		m.SetPickable(true)
		if err := d.Figure.Add(m); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dashboard) addStructure(ax *figure.Axes) error {
	img, err := d.Dataset.Image(model.DefaultImage)
	if err != nil {
		return err
	}
	artist := figure.NewImage(StructureID, ax, img, model.DefaultImage)
	if err := d.Figure.Add(artist); err != nil {
		return err
	}
	d.Image = panel.NewImagePanel(artist, d.Dataset)
	return nil
}

func (d *Dashboard) newController(opts Options) (*interact.Controller, error) {
	ctrlOpts := interact.Options{
		FreeEnergy:       d.FreeEnergy,
		FreeEnergyLevels: d.Dataset.FreeEnergyLevels,
		Image:            d.Image,
		Canvas:           d.Figure,
		NormalWidth:      opts.NormalWidth,
		EmphasisWidth:    opts.EmphasisWidth,
	}
	for _, p := range d.Dataset.Processes {
		ctrlOpts.Processes = append(ctrlOpts.Processes, interact.ProcessView{
			ID:      p.ID,
			Surface: d.Eigenvectors[p.ID],
			Levels:  p.Levels,
			Marker:  d.Markers[p.ID],
		})
	}
	for _, c := range d.Dataset.Clusters {
		ctrlOpts.Clusters = append(ctrlOpts.Clusters, interact.ClusterView{ID: c.ID, Overlay: d.Overlays[c.ID]})
	}

	ctrl, err := interact.New(ctrlOpts)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		ctrl.SetLogger(opts.Logger)
	}
	for _, p := range d.Dataset.Processes {
		if err := ctrl.Register(TimescaleID(p.ID), interact.Target{Group: interact.GroupProcesses, ID: p.ID}); err != nil {
			return nil, err
		}
	}
	for _, c := range d.Dataset.Clusters {
		if err := ctrl.Register(LegendID(c.ID), interact.Target{Group: interact.GroupClusters, ID: c.ID}); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

func addAll(fig *figure.Figure, artists ...figure.Artist) error {
	for _, a := range artists {
		if err := fig.Add(a); err != nil {
			return err
		}
	}
	return nil
}
