package datasource

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// SourceDiff represents differences between two loaded datasets
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// FieldMismatch names fields whose values differ beyond the tolerance
	FieldMismatch []string
	// TimescaleMismatch lists process ids whose timescale rows differ
	TimescaleMismatch []int
	// ImageMismatch lists image keys present in only one source or with
	// different dimensions
	ImageMismatch []model.ImageKey
	// LagsDiffer is true when the lag vectors differ
	LagsDiffer bool
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return d.LagsDiffer || len(d.FieldMismatch) > 0 || len(d.TimescaleMismatch) > 0 || len(d.ImageMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%s, %s)", d.SourceA, d.SourceB)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)
	if d.LagsDiffer {
		b.WriteString("  - lag vectors differ\n")
	}
	for _, name := range d.FieldMismatch {
		fmt.Fprintf(&b, "  - field %s differs\n", name)
	}
	for _, id := range d.TimescaleMismatch {
		fmt.Fprintf(&b, "  - timescales of process %d differ\n", id)
	}
	for _, key := range d.ImageMismatch {
		fmt.Fprintf(&b, "  - image %s differs\n", key)
	}
	return b.String()
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// Tolerance is the largest absolute difference treated as equal
	Tolerance float64
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{Tolerance: 1e-9}
}

// DetectInconsistencies compares two datasets and returns differences
func DetectInconsistencies(a, b *model.Dataset, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{SourceA: sourceA, SourceB: sourceB}

	diff.LagsDiffer = !sliceEqual(a.Lags, b.Lags, opts.Tolerance)

	if !fieldEqual(a.FreeEnergy, b.FreeEnergy, opts.Tolerance) {
		diff.FieldMismatch = append(diff.FieldMismatch, "free energy")
	}
	for _, ca := range a.Clusters {
		cb, ok := b.Cluster(ca.ID)
		if !ok || !fieldEqual(ca.Density, cb.Density, opts.Tolerance) {
			diff.FieldMismatch = append(diff.FieldMismatch, fmt.Sprintf("cluster %d", ca.ID))
		}
	}
	for _, pa := range a.Processes {
		pb, ok := b.Process(pa.ID)
		if !ok || !fieldEqual(pa.Eigenvector, pb.Eigenvector, opts.Tolerance) {
			diff.FieldMismatch = append(diff.FieldMismatch, fmt.Sprintf("eigenvector %d", pa.ID))
		}
		if !ok || !sliceEqual(pa.Timescales, pb.Timescales, opts.Tolerance) {
			diff.TimescaleMismatch = append(diff.TimescaleMismatch, pa.ID)
		}
	}

	for k := model.DefaultImage; k <= model.ImageKey(model.ClusterCount); k++ {
		ia, errA := a.Image(k)
		ib, errB := b.Image(k)
		switch {
		case errA != nil && errB != nil:
		case errA != nil || errB != nil:
			diff.ImageMismatch = append(diff.ImageMismatch, k)
		case ia.Bounds().Size() != ib.Bounds().Size():
			diff.ImageMismatch = append(diff.ImageMismatch, k)
		}
	}
	return diff
}

// CompareSources loads and compares two data sources
func CompareSources(ctx context.Context, sourceA, sourceB DataSource, opts DiffOptions) (*SourceDiff, error) {
	a, err := LoadFromSource(ctx, sourceA, loader.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}
	b, err := LoadFromSource(ctx, sourceB, loader.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}
	diff := DetectInconsistencies(a, b, sourceA.Path, sourceB.Path, opts)
	return &diff, nil
}

func sliceEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !approxEqual(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

func fieldEqual(a, b *model.ScalarField, tol float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return false
	}
	if !sliceEqual(a.X, b.X, tol) || !sliceEqual(a.Y, b.Y, tol) {
		return false
	}
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if !approxEqual(a.At(i, j), b.At(i, j), tol) {
				return false
			}
		}
	}
	return true
}

func approxEqual(x, y, tol float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.IsNaN(x) && math.IsNaN(y)
	}
	return math.Abs(x-y) <= tol
}
