// Package loader reads a precomputed Markov-state-model analysis from a
// dataset directory and assembles it into an immutable model.Dataset.
//
// Directory layout:
//
//	manifest.yaml                          cluster styling and contour levels
//	timescales.json                        lag times and implied time scales
//	free_energy.json                       ensemble free-energy surface
//	clusters/cluster_<k>.json              density of cluster k (1..8)
//	eigenvectors/eigenvector_<k>.json      eigenvector surface of process k (1..7)
//	images/default.png, images/cluster_<k>.png
//
// Every file is required except the manifest. Any missing or malformed file
// fails the whole load.
package loader

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/msmview/pkg/debug"
	"github.com/vanderheijden86/msmview/pkg/metrics"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// DataDirEnvVar names the environment variable holding the default dataset.
const DataDirEnvVar = "MSMVIEW_DATA"

// File names inside a dataset directory.
const (
	ManifestFile   = "manifest.yaml"
	TimescalesFile = "timescales.json"
	FreeEnergyFile = "free_energy.json"
	ClustersDir    = "clusters"
	EigenvectorDir = "eigenvectors"
	ImagesDir      = "images"
)

// Default level counts used when the manifest gives none.
const (
	DefaultFreeEnergyLevels  = 10
	DefaultEigenvectorLevels = 11
)

// ClusterFieldPath returns the density file of cluster k under dir.
func ClusterFieldPath(dir string, k int) string {
	return filepath.Join(dir, ClustersDir, fmt.Sprintf("cluster_%d.json", k))
}

// EigenvectorFieldPath returns the eigenvector file of process k under dir.
func EigenvectorFieldPath(dir string, k int) string {
	return filepath.Join(dir, EigenvectorDir, fmt.Sprintf("eigenvector_%d.json", k))
}

// ResolveDataPath picks the dataset path: the explicit argument, then the
// MSMVIEW_DATA environment variable, then fallback.
func ResolveDataPath(arg, fallback string) (string, error) {
	path := arg
	if path == "" {
		path = os.Getenv(DataDirEnvVar)
	}
	if path == "" {
		path = fallback
	}
	if path == "" {
		return "", fmt.Errorf("no dataset given (pass a path or set %s)", DataDirEnvVar)
	}
	return filepath.Abs(path)
}

// Options tunes how a dataset is assembled.
type Options struct {
	// EigenvectorLevels is used when the manifest has no eigenvector levels.
	EigenvectorLevels int
	// Concurrency bounds the number of files read at once (default 8).
	Concurrency int
}

// Parts are the raw pieces of a dataset before assembly.
type Parts struct {
	Manifest     Manifest
	Timescales   TimescaleTable
	FreeEnergy   *model.ScalarField
	Clusters     map[int]*model.ScalarField
	Eigenvectors map[int]*model.ScalarField
	Images       map[model.ImageKey]image.Image
}

// NewParts returns empty Parts ready to be filled.
func NewParts() *Parts {
	return &Parts{
		Clusters:     make(map[int]*model.ScalarField, model.ClusterCount),
		Eigenvectors: make(map[int]*model.ScalarField, model.ProcessCount),
		Images:       make(map[model.ImageKey]image.Image, model.ClusterCount+1),
	}
}

// LoadDir reads and validates the dataset stored in dir.
func LoadDir(ctx context.Context, dir string, opts Options) (*model.Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()
	defer debug.LogEnterExit("loader.LoadDir " + dir)()

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset %s is not a directory", dir)
	}

	parts, err := readParts(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	return Assemble(parts, opts)
}

// readParts loads every file of the dataset concurrently.
func readParts(ctx context.Context, dir string, opts Options) (*Parts, error) {
	parts := NewParts()
	var mu sync.Mutex

	manifest, err := ReadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	parts.Manifest = manifest

	g, ctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 8
	}
	g.SetLimit(limit)

	g.Go(func() error {
		data, err := os.ReadFile(filepath.Join(dir, TimescalesFile))
		if err != nil {
			return fmt.Errorf("timescales: %w", err)
		}
		t, err := DecodeTimescales(data)
		if err != nil {
			return err
		}
		mu.Lock()
		parts.Timescales = t
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		f, err := readField(filepath.Join(dir, FreeEnergyFile))
		if err != nil {
			return fmt.Errorf("free energy: %w", err)
		}
		mu.Lock()
		parts.FreeEnergy = f
		mu.Unlock()
		return nil
	})

	for k := 1; k <= model.ClusterCount; k++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := readField(ClusterFieldPath(dir, k))
			if err != nil {
				return fmt.Errorf("cluster %d: %w", k, err)
			}
			mu.Lock()
			parts.Clusters[k] = f
			mu.Unlock()
			return nil
		})
	}

	for k := 1; k <= model.ProcessCount; k++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := readField(EigenvectorFieldPath(dir, k))
			if err != nil {
				return fmt.Errorf("eigenvector %d: %w", k, err)
			}
			mu.Lock()
			parts.Eigenvectors[k] = f
			mu.Unlock()
			return nil
		})
	}

	for k := 0; k <= model.ClusterCount; k++ {
		key := model.ImageKey(k)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := readImage(filepath.Join(dir, ImagesDir), key)
			if err != nil {
				return err
			}
			mu.Lock()
			parts.Images[key] = img
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

// Assemble combines raw parts into a validated dataset.
func Assemble(p *Parts, opts Options) (*model.Dataset, error) {
	if p.FreeEnergy == nil {
		return nil, fmt.Errorf("%w: free energy", model.ErrMissingField)
	}

	ds := &model.Dataset{
		Name:       p.Manifest.Name,
		Lags:       append([]float64(nil), p.Timescales.Lags...),
		LagUnit:    p.Timescales.Unit,
		FreeEnergy: p.FreeEnergy,
		Images:     make(map[model.ImageKey]image.Image, len(p.Images)),
	}
	for k, img := range p.Images {
		ds.Images[k] = img
	}

	ds.FreeEnergyLevels = surfaceLevels(p.Manifest.FreeEnergy, p.FreeEnergy, DefaultFreeEnergyLevels)

	for k := 1; k <= model.ClusterCount; k++ {
		density, ok := p.Clusters[k]
		if !ok {
			return nil, fmt.Errorf("%w: density of cluster %d", model.ErrMissingField, k)
		}
		style, err := p.Manifest.ClusterStyle(k)
		if err != nil {
			return nil, err
		}
		var presence float64
		if style.PresenceLevel != nil {
			presence = *style.PresenceLevel
		} else {
			lo, hi, _ := density.Range()
			presence = lo + 0.1*(hi-lo)
		}
		ds.Clusters = append(ds.Clusters, model.Cluster{
			ID:            k,
			Marker:        style.Marker,
			Color:         mustColor(style.Color),
			PresenceLevel: presence,
			InnerLevel:    style.InnerLevel,
			Density:       density,
		})
	}

	eigenDefault := opts.EigenvectorLevels
	if eigenDefault < 2 {
		eigenDefault = DefaultEigenvectorLevels
	}
	if len(p.Timescales.Timescales) != model.ProcessCount {
		return nil, fmt.Errorf("%w: timescale table has %d processes, want %d",
			model.ErrShapeMismatch, len(p.Timescales.Timescales), model.ProcessCount)
	}
	for k := 1; k <= model.ProcessCount; k++ {
		ev, ok := p.Eigenvectors[k]
		if !ok {
			return nil, fmt.Errorf("%w: eigenvector of process %d", model.ErrMissingField, k)
		}
		ds.Processes = append(ds.Processes, model.Process{
			ID:          k,
			Timescales:  append([]float64(nil), p.Timescales.Timescales[k-1]...),
			Eigenvector: ev,
			Levels:      eigenvectorLevels(p.Manifest.Eigenvectors, ev, eigenDefault),
		})
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func surfaceLevels(spec SurfaceSpec, f *model.ScalarField, fallback int) []float64 {
	if len(spec.Levels) >= 2 {
		return append([]float64(nil), spec.Levels...)
	}
	n := spec.LevelCount
	if n < 2 {
		n = fallback
	}
	return f.Levels(n)
}

// eigenvectorLevels spans levels symmetric around zero so the diverging
// colormap centres on sign changes.
func eigenvectorLevels(spec SurfaceSpec, f *model.ScalarField, fallback int) []float64 {
	if len(spec.Levels) >= 2 {
		return append([]float64(nil), spec.Levels...)
	}
	n := spec.LevelCount
	if n < 2 {
		n = fallback
	}
	lo, hi, ok := f.Range()
	if !ok {
		return nil
	}
	m := math.Max(math.Abs(lo), math.Abs(hi))
	if m == 0 {
		m = 1
	}
	return floats.Span(make([]float64, n), -m, m)
}

func nan() float64 { return math.NaN() }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
