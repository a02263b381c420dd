// Package testutil provides deterministic synthetic datasets for tests.
//
// The generator places one Gaussian well per cluster on a regular grid and
// derives the free energy, cluster densities and eigenvectors from them, so
// every field is smooth and every contour level crosses the grid.
package testutil

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/vanderheijden86/msmview/pkg/model"
)

// GeneratorConfig controls dataset generation.
type GeneratorConfig struct {
	Seed      int64     // random seed for well jitter (0 = no jitter)
	Cols      int       // grid points along axis 1 (default 32)
	Rows      int       // grid points along axis 2 (default 24)
	Lags      []float64 // lag times (default 1, 2, 5, 10, 20)
	LagUnit   string    // default "ns"
	ImageSize int       // edge of the square structure images (default 8)
	MaskEdge  bool      // mark the first grid column as "no data"
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Cols:      32,
		Rows:      24,
		Lags:      []float64{1, 2, 5, 10, 20},
		LagUnit:   "ns",
		ImageSize: 8,
	}
}

// Generator creates synthetic datasets.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Cols < 2 {
		cfg.Cols = def.Cols
	}
	if cfg.Rows < 2 {
		cfg.Rows = def.Rows
	}
	if len(cfg.Lags) == 0 {
		cfg.Lags = def.Lags
	}
	if cfg.LagUnit == "" {
		cfg.LagUnit = def.LagUnit
	}
	if cfg.ImageSize <= 0 {
		cfg.ImageSize = def.ImageSize
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ClusterColors are the fill colors of generated clusters, indexed by id-1.
var ClusterColors = []color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff},
	{0xff, 0x7f, 0x0e, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0xd6, 0x27, 0x28, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x8c, 0x56, 0x4b, 0xff},
	{0xe3, 0x77, 0xc2, 0xff},
	{0x17, 0xbe, 0xcf, 0xff},
}

// DefaultImageColor fills the generated default structure image.
var DefaultImageColor = color.RGBA{0x80, 0x80, 0x80, 0xff}

type well struct{ x, y, sigma float64 }

// wells returns one well per cluster, arranged on an ellipse.
func (g *Generator) wells() []well {
	out := make([]well, model.ClusterCount)
	for k := range out {
		angle := 2 * math.Pi * float64(k) / float64(model.ClusterCount)
		w := well{x: 2 * math.Cos(angle), y: 1.3 * math.Sin(angle), sigma: 0.45}
		if g.cfg.Seed != 0 {
			w.x += 0.1 * (g.rng.Float64() - 0.5)
			w.y += 0.1 * (g.rng.Float64() - 0.5)
		}
		out[k] = w
	}
	return out
}

// Axes returns the grid coordinates: axis 1 spans [-3, 3], axis 2 [-2, 2].
func (g *Generator) Axes() (x, y []float64) {
	x = make([]float64, g.cfg.Cols)
	for j := range x {
		x[j] = -3 + 6*float64(j)/float64(g.cfg.Cols-1)
	}
	y = make([]float64, g.cfg.Rows)
	for i := range y {
		y[i] = -2 + 4*float64(i)/float64(g.cfg.Rows-1)
	}
	return x, y
}

func (g *Generator) field(x, y []float64, fn func(px, py float64) float64) *model.ScalarField {
	values := make([][]float64, len(y))
	for i := range values {
		values[i] = make([]float64, len(x))
		for j := range values[i] {
			if g.cfg.MaskEdge && j == 0 {
				values[i][j] = math.NaN()
				continue
			}
			values[i][j] = fn(x[j], y[i])
		}
	}
	f, err := model.NewScalarField(x, y, values)
	if err != nil {
		panic(fmt.Sprintf("testutil: generated field: %v", err))
	}
	return f
}

func gauss(w well, px, py float64) float64 {
	dx, dy := px-w.x, py-w.y
	return math.Exp(-(dx*dx + dy*dy) / (2 * w.sigma * w.sigma))
}

// Dataset returns a complete, valid dataset.
func (g *Generator) Dataset() *model.Dataset {
	x, y := g.Axes()
	wells := g.wells()

	ds := &model.Dataset{
		Name:    "synthetic",
		Lags:    append([]float64(nil), g.cfg.Lags...),
		LagUnit: g.cfg.LagUnit,
		Images:  make(map[model.ImageKey]image.Image, model.ClusterCount+1),
	}

	ds.FreeEnergy = g.field(x, y, func(px, py float64) float64 {
		p := 1e-3
		for _, w := range wells {
			p += gauss(w, px, py)
		}
		return -math.Log(p) + math.Log(1+1e-3)
	})
	ds.FreeEnergyLevels = ds.FreeEnergy.Levels(10)

	for k, w := range wells {
		id := k + 1
		density := g.field(x, y, func(px, py float64) float64 { return gauss(w, px, py) })
		c := model.Cluster{
			ID:            id,
			Marker:        []string{"o", "s", "^", "v", "D", "p", "h", "*"}[k],
			Color:         ClusterColors[k],
			PresenceLevel: 0.1,
			Density:       density,
		}
		if id%2 == 0 {
			inner := 0.6
			c.InnerLevel = &inner
		}
		ds.Clusters = append(ds.Clusters, c)
	}

	for p := 1; p <= model.ProcessCount; p++ {
		proc := model.Process{ID: p}
		// Process p separates the wells by the sign of cos(p * angle).
		proc.Eigenvector = g.field(x, y, func(px, py float64) float64 {
			var v float64
			for k, w := range wells {
				angle := 2 * math.Pi * float64(k) / float64(model.ClusterCount)
				v += math.Cos(float64(p)*angle) * gauss(w, px, py)
			}
			return v
		})
		proc.Levels = symmetricLevels(proc.Eigenvector, 11)
		for _, lag := range ds.Lags {
			base := 1000 / float64(p*p)
			proc.Timescales = append(proc.Timescales, base*(1-math.Exp(-lag/5)))
		}
		ds.Processes = append(ds.Processes, proc)
	}

	ds.Images[model.DefaultImage] = g.Image(DefaultImageColor)
	for _, c := range ds.Clusters {
		ds.Images[c.ImageKey()] = g.Image(c.Color)
	}
	return ds
}

// Image returns a square image filled with c.
func (g *Generator) Image(c color.RGBA) *image.RGBA {
	n := g.cfg.ImageSize
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for py := 0; py < n; py++ {
		for px := 0; px < n; px++ {
			img.SetRGBA(px, py, c)
		}
	}
	return img
}

func symmetricLevels(f *model.ScalarField, n int) []float64 {
	lo, hi, _ := f.Range()
	m := math.Max(math.Abs(lo), math.Abs(hi))
	if m == 0 {
		m = 1
	}
	levels := make([]float64, n)
	for i := range levels {
		levels[i] = -m + 2*m*float64(i)/float64(n-1)
	}
	return levels
}

// SyntheticDataset is shorthand for NewDefault().Dataset().
func SyntheticDataset() *model.Dataset {
	return NewDefault().Dataset()
}
