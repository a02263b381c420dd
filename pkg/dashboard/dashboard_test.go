package dashboard

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/interact"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/testutil"
)

func build(t *testing.T) *Dashboard {
	t.Helper()
	d, err := Build(testutil.SyntheticDataset(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func visible(t *testing.T, d *Dashboard, id figure.ArtistID) bool {
	t.Helper()
	a, ok := d.Figure.Artist(id)
	if !ok {
		t.Fatalf("artist %s not found", id)
	}
	return a.Visible()
}

func lineWidth(t *testing.T, d *Dashboard, p int) float64 {
	t.Helper()
	a, _ := d.Figure.Artist(TimescaleID(p))
	return a.(*figure.Line).Width
}

func assertFreeEnergyState(t *testing.T, d *Dashboard) {
	t.Helper()
	if !visible(t, d, FreeEnergyID) || !visible(t, d, FreeEnergyLinesID) {
		t.Error("free energy should be visible")
	}
	for p := 1; p <= model.ProcessCount; p++ {
		if visible(t, d, EigenvectorID(p)) || visible(t, d, EigenvectorLinesID(p)) {
			t.Errorf("eigenvector %d should be hidden", p)
		}
		if w := lineWidth(t, d, p); w != interact.DefaultNormalWidth {
			t.Errorf("process %d width = %v, want normal", p, w)
		}
	}
	cb := d.Figure.Colorbar()
	if cb.Label != "ΔG" || cb.Target != d.FreeEnergy.Fill() {
		t.Errorf("colorbar = %q on %v, want ΔG on free energy", cb.Label, cb.Target.ID())
	}
	if len(cb.Ticks) != len(d.Dataset.FreeEnergyLevels) {
		t.Errorf("colorbar ticks = %v", cb.Ticks)
	}
}

func TestInitialState(t *testing.T) {
	d := build(t)
	assertFreeEnergyState(t, d)
	for k := 1; k <= model.ClusterCount; k++ {
		if d.Overlays[k].Visible() {
			t.Errorf("overlay %d should be hidden", k)
		}
	}
	if d.Image.Key() != model.DefaultImage {
		t.Errorf("image = %s, want default", d.Image.Key())
	}
	if got := d.Figure.Generation(); got != 1 {
		t.Errorf("generation = %d, want 1 after the initial sync", got)
	}
	if !visible(t, d, LagLineID) {
		t.Error("lag line should be visible")
	}
}

func TestPickClusterTwice(t *testing.T) {
	d := build(t)

	ok, err := d.Pick(LegendID(7))
	if !ok || err != nil {
		t.Fatalf("Pick = %v, %v", ok, err)
	}
	for k := 1; k <= model.ClusterCount; k++ {
		if got := d.Overlays[k].Visible(); got != (k == 7) {
			t.Errorf("overlay %d visible = %v", k, got)
		}
	}
	if d.Image.Key() != 7 {
		t.Errorf("image = %s, want cluster 7", d.Image.Key())
	}
	if ax, _ := d.Figure.AxesByID(AxesStructure); len(ax.XTicks) != 0 || len(ax.YTicks) != 0 {
		t.Error("structure ticks should be cleared")
	}

	d.Pick(LegendID(7))
	if d.Overlays[7].Visible() {
		t.Error("second pick should hide overlay 7")
	}
	if d.Image.Key() != model.DefaultImage {
		t.Errorf("image = %s, want default", d.Image.Key())
	}
}

func TestInnerLevelOverlaySharesVisibility(t *testing.T) {
	d := build(t)
	d.Pick(LegendID(2))
	if !visible(t, d, OverlayID(2, "presence")) || !visible(t, d, OverlayID(2, "inner")) {
		t.Error("both contour levels of cluster 2 should show")
	}
	d.Pick(LegendID(3))
	if visible(t, d, OverlayID(2, "inner")) {
		t.Error("inner contour of cluster 2 should hide with its overlay")
	}
}

func TestPickProcessThenAnother(t *testing.T) {
	d := build(t)

	d.Pick(TimescaleID(4))
	if visible(t, d, FreeEnergyID) {
		t.Error("free energy should be hidden")
	}
	if !visible(t, d, EigenvectorID(4)) {
		t.Error("eigenvector 4 should be visible")
	}
	cb := d.Figure.Colorbar()
	if cb.Label != "4th eigenvector" || cb.Target != d.Eigenvectors[4].Fill() {
		t.Errorf("colorbar = %q", cb.Label)
	}
	if w := lineWidth(t, d, 4); w != interact.DefaultEmphasisWidth {
		t.Errorf("process 4 width = %v", w)
	}

	d.Pick(TimescaleID(2))
	if visible(t, d, EigenvectorID(4)) || !visible(t, d, EigenvectorID(2)) {
		t.Error("only eigenvector 2 should be visible")
	}
	if lineWidth(t, d, 4) != interact.DefaultNormalWidth || lineWidth(t, d, 2) != interact.DefaultEmphasisWidth {
		t.Error("emphasis should move from process 4 to process 2")
	}
	if got := d.Figure.Colorbar().Label; got != "2nd eigenvector" {
		t.Errorf("label = %q", got)
	}

	d.Pick(TimescaleID(2))
	assertFreeEnergyState(t, d)
}

func TestGroupsAreIndependent(t *testing.T) {
	d := build(t)
	d.Pick(TimescaleID(3))
	d.Pick(LegendID(5))
	d.Pick(TimescaleID(3))

	if !d.Overlays[5].Visible() || d.Image.Key() != 5 {
		t.Error("clearing the process must not touch the cluster views")
	}
	assertFreeEnergyState(t, d)
}

func TestOneRedrawPerPick(t *testing.T) {
	d := build(t)
	var calls int
	d.Figure.OnRedraw(func(uint64) { calls++ })

	refs := []figure.ArtistID{TimescaleID(1), LegendID(1), LegendID(8), TimescaleID(7), TimescaleID(7)}
	for _, ref := range refs {
		d.Pick(ref)
	}
	if calls != len(refs) {
		t.Errorf("redraws = %d, want %d", calls, len(refs))
	}
}

func TestUnrecognizedPick(t *testing.T) {
	d := build(t)
	var buf bytes.Buffer
	d.Controller.SetLogger(log.New(&buf, "", 0))
	gen := d.Figure.Generation()

	for _, ref := range []figure.ArtistID{LagLineID, StructureID, "nonsense"} {
		ok, err := d.Pick(ref)
		if ok || err != nil {
			t.Errorf("Pick(%s) = %v, %v", ref, ok, err)
		}
	}
	if d.Figure.Generation() != gen {
		t.Error("unrecognized picks must not redraw")
	}
	assertFreeEnergyState(t, d)
	if !strings.Contains(buf.String(), "nonsense") {
		t.Errorf("diagnostic not logged: %q", buf.String())
	}
}

func TestPickAtHitTestsLegendAndCurves(t *testing.T) {
	d := build(t)
	w, h := float64(d.Figure.Width), float64(d.Figure.Height)

	legend, _ := d.Figure.AxesByID(AxesLegend)
	px, py := legend.ToPixel(6, 0.5, w, h)
	ok, err := d.PickAt(px+2, py-2, w, h)
	if !ok || err != nil {
		t.Fatalf("PickAt legend = %v, %v", ok, err)
	}
	if vs := d.ViewState(); vs.Cluster != 6 {
		t.Errorf("cluster = %d, want 6", vs.Cluster)
	}

	ts, _ := d.Figure.AxesByID(AxesTimescales)
	p := d.Dataset.Processes[0]
	px, py = ts.ToPixel(d.Dataset.Lags[2], p.Timescales[2], w, h)
	if ok, _ := d.PickAt(px, py, w, h); !ok {
		t.Fatal("click on process 1 curve was not recognized")
	}
	if vs := d.ViewState(); vs.Process != 1 {
		t.Errorf("process = %d, want 1", vs.Process)
	}
}

func TestPickAtWithin_CellCanvasMarkerRadius(t *testing.T) {
	d := build(t)
	// A terminal canvas, one unit per character cell.
	const w, h = 100.0, 30.0

	legend, _ := d.Figure.AxesByID(AxesLegend)
	mx, my := legend.ToPixel(3, 0.5, w, h)
	if id, ok := d.Figure.HitTestWithin(mx+0.5, my+0.5, w, h, 1); !ok || id != LegendID(3) {
		t.Fatalf("click on marker 3 hit %q, %v", id, ok)
	}

	// Straight below the marker, a few rows into the surface panel.
	sy := (SurfaceRect.Y+0.1*SurfaceRect.H)*h + 0.5
	if sy-my < 3 {
		t.Fatalf("test point too close to the legend: %v vs %v", sy, my)
	}
	if id, ok := d.Figure.HitTestWithin(mx+0.5, sy, w, h, 1); ok {
		t.Errorf("click inside the surface panel hit %q", id)
	}
	if ok, _ := d.PickAtWithin(mx+0.5, sy, w, h, 1); ok {
		t.Error("click inside the surface panel should not pick")
	}
	if vs := d.ViewState(); vs.Cluster != 0 {
		t.Errorf("cluster = %d, want 0", vs.Cluster)
	}
}

func TestPickAtMiss(t *testing.T) {
	d := build(t)
	gen := d.Figure.Generation()
	// Top right corner holds no artist.
	if ok, _ := d.PickAt(float64(d.Figure.Width)-1, 1, float64(d.Figure.Width), float64(d.Figure.Height)); ok {
		t.Error("click on empty space should not pick")
	}
	if d.Figure.Generation() != gen {
		t.Error("a miss must not redraw")
	}
}

func TestSelect(t *testing.T) {
	d := build(t)
	if err := d.Select(3, 5); err != nil {
		t.Fatal(err)
	}
	vs := d.ViewState()
	if vs.Process != 3 || vs.Cluster != 5 || vs.ColorbarLabel != "3rd eigenvector" {
		t.Errorf("view state = %+v", vs)
	}

	if err := d.Select(0, 0); err != nil {
		t.Fatal(err)
	}
	assertFreeEnergyState(t, d)

	if err := d.Select(9, 0); err == nil {
		t.Error("expected error for process 9")
	}
	if err := d.Select(0, 12); err == nil {
		t.Error("expected error for cluster 12")
	}
}

func TestBuildRejectsInvalidDataset(t *testing.T) {
	ds := testutil.SyntheticDataset()
	delete(ds.Images, model.ImageKey(4))
	if _, err := Build(ds, DefaultOptions()); err == nil {
		t.Fatal("expected error for a dataset without cluster 4's image")
	}
}
