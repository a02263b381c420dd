// Package model defines the immutable data the viewer renders: scalar fields on
// regular grids, metastable clusters, slow processes and the dataset that ties
// them together.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Common errors.
var (
	ErrShapeMismatch = errors.New("grid shape does not match coordinate vectors")
	ErrEmptyField    = errors.New("scalar field has no samples")
	ErrMissingImage  = errors.New("representative structure image missing")
	ErrMissingField  = errors.New("scalar field missing")
)

// ScalarField is a 2-D grid of values over two coordinate axes.
// Row i of Z corresponds to Y[i] and column j to X[j]. Non-finite values mark
// grid points without data and are skipped by contouring and range queries.
type ScalarField struct {
	X []float64
	Y []float64
	Z *mat.Dense
}

// NewScalarField validates the grid against its coordinate vectors and copies
// the values into a dense matrix. values must have len(y) rows of len(x).
func NewScalarField(x, y []float64, values [][]float64) (*ScalarField, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, ErrEmptyField
	}
	if len(values) != len(y) {
		return nil, fmt.Errorf("%w: %d rows for %d axis-2 coordinates", ErrShapeMismatch, len(values), len(y))
	}
	data := make([]float64, 0, len(x)*len(y))
	for i, row := range values {
		if len(row) != len(x) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d axis-1 coordinates", ErrShapeMismatch, i, len(row), len(x))
		}
		data = append(data, row...)
	}
	return &ScalarField{
		X: append([]float64(nil), x...),
		Y: append([]float64(nil), y...),
		Z: mat.NewDense(len(y), len(x), data),
	}, nil
}

// Dims returns the number of rows (axis 2) and columns (axis 1).
func (f *ScalarField) Dims() (rows, cols int) {
	return f.Z.Dims()
}

// At returns the value at row i (axis 2) and column j (axis 1).
func (f *ScalarField) At(i, j int) float64 {
	return f.Z.At(i, j)
}

// Rows returns a copy of the grid as nested slices, row-major.
func (f *ScalarField) Rows() [][]float64 {
	r, c := f.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, f.Z)
	}
	return out
}

// Extent returns the coordinate bounds of the grid.
func (f *ScalarField) Extent() (xmin, xmax, ymin, ymax float64) {
	return floats.Min(f.X), floats.Max(f.X), floats.Min(f.Y), floats.Max(f.Y)
}

// Range returns the finite minimum and maximum of the field.
// ok is false when the field holds no finite value.
func (f *ScalarField) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.Z.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// Levels returns n evenly spaced contour levels spanning the finite range.
func (f *ScalarField) Levels(n int) []float64 {
	if n < 2 {
		n = 2
	}
	lo, hi, ok := f.Range()
	if !ok {
		return nil
	}
	if lo == hi {
		hi = lo + 1
	}
	levels := make([]float64, n)
	floats.Span(levels, lo, hi)
	return levels
}

// Sample returns the bilinear interpolation of the field at (x, y).
// ok is false outside the grid or when a surrounding sample has no data.
func (f *ScalarField) Sample(x, y float64) (v float64, ok bool) {
	j, tx, okx := locate(f.X, x)
	i, ty, oky := locate(f.Y, y)
	if !okx || !oky {
		return 0, false
	}
	rows, cols := f.Dims()
	i1, j1 := min(i+1, rows-1), min(j+1, cols-1)
	z00, z01 := f.Z.At(i, j), f.Z.At(i, j1)
	z10, z11 := f.Z.At(i1, j), f.Z.At(i1, j1)
	for _, z := range [...]float64{z00, z01, z10, z11} {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return 0, false
		}
	}
	top := z00*(1-tx) + z01*tx
	bottom := z10*(1-tx) + z11*tx
	return top*(1-ty) + bottom*ty, true
}

// locate finds the cell index and fractional offset of v in an ascending or
// descending coordinate vector.
func locate(axis []float64, v float64) (idx int, t float64, ok bool) {
	n := len(axis)
	if n == 1 {
		return 0, 0, v == axis[0]
	}
	asc := axis[n-1] >= axis[0]
	lo, hi := axis[0], axis[n-1]
	if !asc {
		lo, hi = hi, lo
	}
	if v < lo || v > hi {
		return 0, 0, false
	}
	for k := 0; k < n-1; k++ {
		a, b := axis[k], axis[k+1]
		if (asc && v >= a && v <= b) || (!asc && v <= a && v >= b) {
			if a == b {
				return k, 0, true
			}
			return k, (v - a) / (b - a), true
		}
	}
	return n - 1, 0, true
}
