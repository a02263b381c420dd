package testutil

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/vanderheijden86/msmview/pkg/model"
)

// AssertValid fails the test when ds does not validate.
func AssertValid(t *testing.T, ds *model.Dataset) {
	t.Helper()
	if err := ds.Validate(); err != nil {
		t.Fatalf("dataset invalid: %v", err)
	}
}

// AssertFieldsEqual compares two fields value by value within tol. Positions
// without data must agree.
func AssertFieldsEqual(t *testing.T, name string, got, want *model.ScalarField, tol float64) {
	t.Helper()
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Fatalf("%s: dims %dx%d, want %dx%d", name, gr, gc, wr, wc)
	}
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			g, w := got.At(i, j), want.At(i, j)
			if math.IsNaN(w) {
				if !math.IsNaN(g) {
					t.Errorf("%s[%d][%d] = %v, want no data", name, i, j, g)
				}
				continue
			}
			if math.Abs(g-w) > tol {
				t.Errorf("%s[%d][%d] = %v, want %v", name, i, j, g, w)
				return
			}
		}
	}
}

// AssertDatasetsEqual compares the numeric content of two datasets.
func AssertDatasetsEqual(t *testing.T, got, want *model.Dataset) {
	t.Helper()
	if len(got.Lags) != len(want.Lags) {
		t.Fatalf("lags = %v, want %v", got.Lags, want.Lags)
	}
	AssertFieldsEqual(t, "free energy", got.FreeEnergy, want.FreeEnergy, 1e-9)
	for i, c := range want.Clusters {
		g := got.Clusters[i]
		if g.ID != c.ID || g.Marker != c.Marker || g.Color != c.Color {
			t.Errorf("cluster %d = {%d %q %v}, want {%d %q %v}", i, g.ID, g.Marker, g.Color, c.ID, c.Marker, c.Color)
		}
		AssertFieldsEqual(t, "density", g.Density, c.Density, 1e-9)
	}
	for i, p := range want.Processes {
		g := got.Processes[i]
		for j := range p.Timescales {
			if math.Abs(g.Timescales[j]-p.Timescales[j]) > 1e-9 {
				t.Errorf("process %d timescale %d = %v, want %v", p.ID, j, g.Timescales[j], p.Timescales[j])
			}
		}
		AssertFieldsEqual(t, "eigenvector", g.Eigenvector, p.Eigenvector, 1e-9)
	}
}

// AssertImageColor checks the center pixel of img.
func AssertImageColor(t *testing.T, img image.Image, want color.RGBA) {
	t.Helper()
	if img == nil {
		t.Fatal("image is nil")
	}
	b := img.Bounds()
	got := color.RGBAModel.Convert(img.At((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)).(color.RGBA)
	if got != want {
		t.Errorf("image color = %v, want %v", got, want)
	}
}
