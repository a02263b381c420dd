package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/msmview/pkg/loader"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/testutil"
)

func writeBundle(t *testing.T, ds *model.Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.msm")
	if err := WriteBundle(context.Background(), ds, path); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	return path
}

func TestDiscover(t *testing.T) {
	dir := testutil.DatasetDir(t)
	src, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover(dir): %v", err)
	}
	if src.Type != SourceTypeDir || src.Size == 0 || src.ModTime.IsZero() {
		t.Errorf("unexpected dir source: %s", src)
	}

	bundle := writeBundle(t, testutil.SyntheticDataset())
	src, err = Discover(bundle)
	if err != nil {
		t.Fatalf("Discover(bundle): %v", err)
	}
	if src.Type != SourceTypeBundle {
		t.Errorf("type = %s, want bundle", src.Type)
	}
}

func TestDiscoverRejectsUnknown(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{"empty dir", func(t *testing.T) string { return t.TempDir() }},
		{"text file", func(t *testing.T) string {
			p := filepath.Join(t.TempDir(), "notes.txt")
			os.WriteFile(p, []byte("hello"), 0o644)
			return p
		}},
		{"empty file", func(t *testing.T) string {
			p := filepath.Join(t.TempDir(), "empty.db")
			os.WriteFile(p, nil, 0o644)
			return p
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Discover(tt.setup(t))
			if !errors.Is(err, ErrUnknownSource) {
				t.Fatalf("err = %v, want ErrUnknownSource", err)
			}
		})
	}
}

func TestBundleRoundTrip(t *testing.T) {
	want := testutil.SyntheticDataset()
	path := writeBundle(t, want)

	got, src, err := Load(context.Background(), path, loader.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src.Type != SourceTypeBundle {
		t.Errorf("type = %s", src.Type)
	}
	testutil.AssertValid(t, got)
	testutil.AssertDatasetsEqual(t, got, want)
	if got.Name != want.Name || got.LagUnit != want.LagUnit {
		t.Errorf("meta = %q/%q, want %q/%q", got.Name, got.LagUnit, want.Name, want.LagUnit)
	}
	for _, c := range got.Clusters {
		testutil.AssertImageColor(t, got.Images[c.ImageKey()], c.Color)
	}

	r, err := NewSQLiteReader(src)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	v, err := r.SchemaVersion(context.Background())
	if err != nil || v != SchemaVersion {
		t.Errorf("schema version = %d %v", v, err)
	}
}

func TestBundleMatchesDirectory(t *testing.T) {
	ds := testutil.New(testutil.GeneratorConfig{MaskEdge: true}).Dataset()
	dir := t.TempDir()
	if err := testutil.WriteDir(dir, ds); err != nil {
		t.Fatal(err)
	}
	bundle := writeBundle(t, ds)

	a, _ := Discover(dir)
	b, _ := Discover(bundle)
	diff, err := CompareSources(context.Background(), a, b, DefaultDiffOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff.HasInconsistencies() {
		t.Errorf("directory and bundle differ:\n%s", diff.Summary())
	}
}

func TestDetectInconsistencies(t *testing.T) {
	a := testutil.SyntheticDataset()
	b := testutil.New(testutil.GeneratorConfig{Seed: 3, Lags: []float64{1, 2, 4}}).Dataset()
	delete(b.Images, model.ImageKey(5))

	diff := DetectInconsistencies(a, b, "a", "b", DefaultDiffOptions())
	if !diff.LagsDiffer {
		t.Error("lags should differ")
	}
	if len(diff.FieldMismatch) == 0 {
		t.Error("jittered wells should change the fields")
	}
	if len(diff.ImageMismatch) != 1 || diff.ImageMismatch[0] != 5 {
		t.Errorf("image mismatch = %v, want [5]", diff.ImageMismatch)
	}
	if !strings.Contains(diff.Summary(), "image cluster 5") {
		t.Errorf("summary missing image line:\n%s", diff.Summary())
	}
}

func TestNewSQLiteReaderRejectsDirectory(t *testing.T) {
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeDir}); err == nil {
		t.Fatal("expected error")
	}
}
