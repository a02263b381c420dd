package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// WriteDir stores ds in the dataset directory format under dir.
func WriteDir(dir string, ds *model.Dataset) error {
	for _, sub := range []string{loader.ClustersDir, loader.EigenvectorDir, loader.ImagesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}

	manifest, err := loader.MarshalManifest(loader.ManifestFor(ds))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, loader.ManifestFile), manifest, 0o644); err != nil {
		return err
	}

	table := loader.TimescaleTable{Lags: ds.Lags, Unit: ds.LagUnit}
	for _, p := range ds.Processes {
		table.Timescales = append(table.Timescales, p.Timescales)
	}
	data, err := loader.EncodeTimescales(table)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, loader.TimescalesFile), data, 0o644); err != nil {
		return err
	}

	if err := writeField(filepath.Join(dir, loader.FreeEnergyFile), ds.FreeEnergy); err != nil {
		return err
	}
	for _, c := range ds.Clusters {
		if err := writeField(loader.ClusterFieldPath(dir, c.ID), c.Density); err != nil {
			return err
		}
	}
	for _, p := range ds.Processes {
		if err := writeField(loader.EigenvectorFieldPath(dir, p.ID), p.Eigenvector); err != nil {
			return err
		}
	}

	for key, img := range ds.Images {
		data, err := loader.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("image %s: %w", key, err)
		}
		path := filepath.Join(dir, loader.ImagesDir, loader.ImageBaseName(key)+".png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeField(path string, f *model.ScalarField) error {
	data, err := loader.EncodeField(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DatasetDir writes the synthetic dataset into a fresh temp directory and
// returns its path.
func DatasetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := WriteDir(dir, SyntheticDataset()); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return dir
}
