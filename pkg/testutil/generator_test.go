package testutil

import (
	"math"
	"testing"

	"github.com/vanderheijden86/msmview/pkg/model"
)

func TestSyntheticDatasetIsValid(t *testing.T) {
	ds := SyntheticDataset()
	AssertValid(t, ds)

	if got := len(ds.Clusters); got != model.ClusterCount {
		t.Errorf("clusters = %d, want %d", got, model.ClusterCount)
	}
	for _, p := range ds.Processes {
		if len(p.Timescales) != len(ds.Lags) {
			t.Errorf("process %d has %d timescales", p.ID, len(p.Timescales))
		}
	}
}

func TestTimescalesDecreaseWithProcess(t *testing.T) {
	ds := SyntheticDataset()
	last := len(ds.Lags) - 1
	for i := 1; i < len(ds.Processes); i++ {
		if ds.Processes[i].Timescales[last] >= ds.Processes[i-1].Timescales[last] {
			t.Errorf("process %d is not faster than process %d", i+1, i)
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := New(GeneratorConfig{Seed: 7}).Dataset()
	b := New(GeneratorConfig{Seed: 7}).Dataset()
	AssertDatasetsEqual(t, a, b)
}

func TestMaskEdge(t *testing.T) {
	ds := New(GeneratorConfig{MaskEdge: true}).Dataset()
	rows, _ := ds.FreeEnergy.Dims()
	for i := 0; i < rows; i++ {
		if !math.IsNaN(ds.FreeEnergy.At(i, 0)) {
			t.Fatalf("row %d column 0 should have no data", i)
		}
	}
	AssertValid(t, ds)
}

func TestImagesCarryClusterColor(t *testing.T) {
	ds := SyntheticDataset()
	AssertImageColor(t, ds.Images[model.DefaultImage], DefaultImageColor)
	for _, c := range ds.Clusters {
		AssertImageColor(t, ds.Images[c.ImageKey()], c.Color)
	}
}
