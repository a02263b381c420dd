package interact

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// scene records every view mutation the controller performs.
type scene struct {
	mutations     int
	redraws       int
	colorbarOwner string
	colorbarLabel string
	colorbarTicks []float64
	image         model.ImageKey
	missing       map[model.ImageKey]bool
}

func (s *scene) RequestRedraw() { s.redraws++ }

type fakeSurface struct {
	s       *scene
	name    string
	visible bool
}

func (f *fakeSurface) SetVisible(v bool) {
	f.s.mutations++
	f.visible = v
}

func (f *fakeSurface) AttachColorbar(levels []float64, label string) {
	f.s.mutations++
	f.s.colorbarOwner = f.name
	f.s.colorbarLabel = label
	f.s.colorbarTicks = levels
}

type fakeOverlay struct {
	s       *scene
	visible bool
}

func (f *fakeOverlay) SetVisible(v bool) {
	f.s.mutations++
	f.visible = v
}

type fakeMarker struct {
	s     *scene
	width float64
}

func (f *fakeMarker) SetLineWidth(w float64) {
	f.s.mutations++
	f.width = w
}

type fakeImage struct{ s *scene }

func (f *fakeImage) Show(key model.ImageKey) error {
	f.s.mutations++
	if f.s.missing[key] {
		return fmt.Errorf("%w: %s", model.ErrMissingImage, key)
	}
	f.s.image = key
	return nil
}

type harness struct {
	c          *Controller
	s          *scene
	freeEnergy *fakeSurface
	eigen      map[int]*fakeSurface
	markers    map[int]*fakeMarker
	overlays   map[int]*fakeOverlay
	refs       []figure.ArtistID
}

func processRef(p int) figure.ArtistID { return figure.ArtistID(fmt.Sprintf("timescale/%d", p)) }
func clusterRef(k int) figure.ArtistID { return figure.ArtistID(fmt.Sprintf("legend/%d", k)) }

// newHarness wires a controller to recording fakes and applies the initial
// state.
func newHarness() (*harness, error) {
	s := &scene{missing: map[model.ImageKey]bool{}}
	h := &harness{
		s:          s,
		freeEnergy: &fakeSurface{s: s, name: "free-energy"},
		eigen:      map[int]*fakeSurface{},
		markers:    map[int]*fakeMarker{},
		overlays:   map[int]*fakeOverlay{},
	}
	opts := Options{
		FreeEnergy:       h.freeEnergy,
		FreeEnergyLevels: []float64{0, 1, 2, 3},
		Image:            &fakeImage{s: s},
		Canvas:           s,
	}
	for p := 1; p <= model.ProcessCount; p++ {
		h.eigen[p] = &fakeSurface{s: s, name: fmt.Sprintf("eigenvector-%d", p)}
		h.markers[p] = &fakeMarker{s: s}
		opts.Processes = append(opts.Processes, ProcessView{
			ID:      p,
			Surface: h.eigen[p],
			Levels:  []float64{-float64(p), 0, float64(p)},
			Marker:  h.markers[p],
		})
	}
	for k := 1; k <= model.ClusterCount; k++ {
		h.overlays[k] = &fakeOverlay{s: s}
		opts.Clusters = append(opts.Clusters, ClusterView{ID: k, Overlay: h.overlays[k]})
	}

	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	for p := 1; p <= model.ProcessCount; p++ {
		if err := c.Register(processRef(p), Target{Group: GroupProcesses, ID: p}); err != nil {
			return nil, err
		}
		h.refs = append(h.refs, processRef(p))
	}
	for k := 1; k <= model.ClusterCount; k++ {
		if err := c.Register(clusterRef(k), Target{Group: GroupClusters, ID: k}); err != nil {
			return nil, err
		}
		h.refs = append(h.refs, clusterRef(k))
	}
	if err := c.Sync(); err != nil {
		return nil, err
	}
	h.c = c
	return h, nil
}

func mustHarness(t *testing.T) *harness {
	t.Helper()
	h, err := newHarness()
	if err != nil {
		t.Fatalf("newHarness: %v", err)
	}
	return h
}

// checkProcessViews verifies the either/or rule of the main surface for the
// expected picked process (0 = none).
func (h *harness) checkProcessViews(want int) error {
	visibleEigen := 0
	for p, s := range h.eigen {
		if s.visible {
			visibleEigen++
			if p != want {
				return fmt.Errorf("eigenvector %d visible, want %d", p, want)
			}
		}
	}
	for p, m := range h.markers {
		wantWidth := DefaultNormalWidth
		if p == want {
			wantWidth = DefaultEmphasisWidth
		}
		if m.width != wantWidth {
			return fmt.Errorf("marker %d width = %v, want %v", p, m.width, wantWidth)
		}
	}
	if want == 0 {
		if !h.freeEnergy.visible || visibleEigen != 0 {
			return fmt.Errorf("no process picked: free energy visible=%v, eigen visible=%d", h.freeEnergy.visible, visibleEigen)
		}
		if h.s.colorbarOwner != "free-energy" || h.s.colorbarLabel != FreeEnergyLabel {
			return fmt.Errorf("colorbar on %s labelled %q, want free-energy ΔG", h.s.colorbarOwner, h.s.colorbarLabel)
		}
		return nil
	}
	if h.freeEnergy.visible || visibleEigen != 1 {
		return fmt.Errorf("process %d picked: free energy visible=%v, eigen visible=%d", want, h.freeEnergy.visible, visibleEigen)
	}
	if h.s.colorbarOwner != fmt.Sprintf("eigenvector-%d", want) || h.s.colorbarLabel != EigenvectorLabel(want) {
		return fmt.Errorf("colorbar on %s labelled %q", h.s.colorbarOwner, h.s.colorbarLabel)
	}
	return nil
}

// checkClusterViews verifies overlays and image for the expected cluster.
func (h *harness) checkClusterViews(want int) error {
	for k, o := range h.overlays {
		if o.visible != (k == want) {
			return fmt.Errorf("overlay %d visible=%v with cluster %d picked", k, o.visible, want)
		}
	}
	if h.s.image != model.ImageKey(want) {
		return fmt.Errorf("image = %s, want %s", h.s.image, model.ImageKey(want))
	}
	return nil
}

func TestController_InitialState(t *testing.T) {
	h := mustHarness(t)
	if err := h.checkProcessViews(0); err != nil {
		t.Error(err)
	}
	if err := h.checkClusterViews(0); err != nil {
		t.Error(err)
	}
	if h.s.redraws != 1 {
		t.Errorf("redraws after Sync = %d, want 1", h.s.redraws)
	}
}

func TestController_PickClusterTwice(t *testing.T) {
	h := mustHarness(t)

	if ok, err := h.c.OnPick(clusterRef(7)); !ok || err != nil {
		t.Fatalf("OnPick = %v, %v", ok, err)
	}
	if err := h.checkClusterViews(7); err != nil {
		t.Fatal(err)
	}

	h.c.OnPick(clusterRef(7))
	if err := h.checkClusterViews(0); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.c.Clusters().Selected(); ok {
		t.Error("cluster group should be empty after second pick")
	}
}

func TestController_PickProcessThenAnother(t *testing.T) {
	h := mustHarness(t)

	h.c.OnPick(processRef(4))
	if err := h.checkProcessViews(4); err != nil {
		t.Fatal(err)
	}
	if h.s.colorbarLabel != "4th eigenvector" {
		t.Errorf("colorbar label = %q, want %q", h.s.colorbarLabel, "4th eigenvector")
	}
	if len(h.s.colorbarTicks) != 3 || h.s.colorbarTicks[2] != 4 {
		t.Errorf("colorbar ticks = %v, want eigenvector 4 levels", h.s.colorbarTicks)
	}

	h.c.OnPick(processRef(2))
	if err := h.checkProcessViews(2); err != nil {
		t.Fatal(err)
	}
	if h.markers[4].width != DefaultNormalWidth {
		t.Errorf("marker 4 width = %v, want normal", h.markers[4].width)
	}
}

func TestController_GroupsAreIndependent(t *testing.T) {
	h := mustHarness(t)

	h.c.OnPick(processRef(4))
	h.c.OnPick(clusterRef(7))

	if !h.eigen[4].visible || !h.overlays[7].visible {
		t.Fatalf("expected eigenvector 4 and overlay 7 visible together")
	}
	if err := h.checkProcessViews(4); err != nil {
		t.Error(err)
	}
	if err := h.checkClusterViews(7); err != nil {
		t.Error(err)
	}
}

func TestController_ClusterPickDoesNotTouchProcessViews(t *testing.T) {
	h := mustHarness(t)
	h.c.OnPick(processRef(3))

	before := h.s.mutations
	h.c.OnPick(clusterRef(1))
	// 8 overlays + 1 image
	if got := h.s.mutations - before; got != model.ClusterCount+1 {
		t.Errorf("cluster pick mutated %d views, want %d", got, model.ClusterCount+1)
	}
}

func TestController_UnrecognizedPick(t *testing.T) {
	h := mustHarness(t)
	var buf bytes.Buffer
	h.c.SetLogger(log.New(&buf, "", 0))

	h.c.OnPick(processRef(5))
	mutations, redraws := h.s.mutations, h.s.redraws

	ok, err := h.c.OnPick("colorbar")
	if ok || err != nil {
		t.Fatalf("OnPick(unknown) = %v, %v; want false, nil", ok, err)
	}
	if h.s.mutations != mutations || h.s.redraws != redraws {
		t.Errorf("unrecognized pick mutated views (%d -> %d) or redrew (%d -> %d)",
			mutations, h.s.mutations, redraws, h.s.redraws)
	}
	if p, _ := h.c.Processes().Selected(); p != 5 {
		t.Errorf("process selection changed to %d", p)
	}
	if !strings.Contains(buf.String(), "colorbar") {
		t.Errorf("expected diagnostic mentioning the element, got %q", buf.String())
	}
}

func TestController_MissingImageReported(t *testing.T) {
	h := mustHarness(t)
	h.s.missing[model.ImageKey(3)] = true

	ok, err := h.c.OnPick(clusterRef(3))
	if !ok {
		t.Fatal("pick should be recognized")
	}
	if !errors.Is(err, model.ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
	if !h.overlays[3].visible {
		t.Error("overlay should still follow the selection")
	}
}

func TestController_Reset(t *testing.T) {
	h := mustHarness(t)
	h.c.OnPick(processRef(6))
	h.c.OnPick(clusterRef(2))

	if err := h.c.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := h.checkProcessViews(0); err != nil {
		t.Error(err)
	}
	if err := h.checkClusterViews(0); err != nil {
		t.Error(err)
	}
}

func TestController_RegisterRejectsUnknownElements(t *testing.T) {
	h := mustHarness(t)
	if err := h.c.Register("timescale/99", Target{Group: GroupProcesses, ID: 99}); err == nil {
		t.Error("expected error for unknown process")
	}
	if err := h.c.Register(processRef(1), Target{Group: GroupProcesses, ID: 1}); err == nil {
		t.Error("expected error for duplicate ref")
	}
	if ref, ok := h.c.Ref(GroupClusters, 8); !ok || ref != clusterRef(8) {
		t.Errorf("Ref(clusters, 8) = %q, %v", ref, ok)
	}
}

func TestController_ViewState(t *testing.T) {
	h := mustHarness(t)
	h.c.OnPick(processRef(1))
	h.c.OnPick(clusterRef(5))

	vs := h.c.ViewState()
	if vs.FreeEnergyShown || vs.Eigenvector != 1 || vs.ColorbarLabel != "1st eigenvector" {
		t.Errorf("unexpected process part of view state: %+v", vs)
	}
	if vs.Image != model.ImageKey(5) || len(vs.Overlays) != 1 || vs.Overlays[0] != 5 {
		t.Errorf("unexpected cluster part of view state: %+v", vs)
	}
	if !strings.Contains(vs.Summary(), "cluster: 5") {
		t.Errorf("summary %q missing cluster", vs.Summary())
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 7: "7th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 103: "103rd"}
	for n, want := range cases {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

// TestController_PickSequences drives random pick sequences, including
// unrecognized references, against a reference model of the selection.
func TestController_PickSequences(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h, err := newHarness()
		if err != nil {
			t.Fatalf("newHarness: %v", err)
		}
		pool := append(append([]figure.ArtistID(nil), h.refs...), "colorbar", "surface/free-energy")
		refGen := rapid.SampledFrom(pool)

		wantProcess, wantCluster := 0, 0
		wantRedraws := h.s.redraws
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			ref := refGen.Draw(t, "ref")
			before := h.s.mutations

			ok, err := h.c.OnPick(ref)
			if err != nil {
				t.Fatalf("OnPick(%s): %v", ref, err)
			}

			target, known := h.c.Resolve(ref)
			if ok != known {
				t.Fatalf("OnPick(%s) recognized=%v, Resolve=%v", ref, ok, known)
			}
			switch {
			case !known:
				if h.s.mutations != before {
					t.Fatalf("unrecognized %s mutated views", ref)
				}
			case target.Group == GroupProcesses:
				wantRedraws++
				if wantProcess == target.ID {
					wantProcess = 0
				} else {
					wantProcess = target.ID
				}
			case target.Group == GroupClusters:
				wantRedraws++
				if wantCluster == target.ID {
					wantCluster = 0
				} else {
					wantCluster = target.ID
				}
			}

			if n := h.c.Processes().pickedCount(); n > 1 {
				t.Fatalf("%d processes picked", n)
			}
			if n := h.c.Clusters().pickedCount(); n > 1 {
				t.Fatalf("%d clusters picked", n)
			}
			if err := h.checkProcessViews(wantProcess); err != nil {
				t.Fatal(err)
			}
			if err := h.checkClusterViews(wantCluster); err != nil {
				t.Fatal(err)
			}
			if h.s.redraws != wantRedraws {
				t.Fatalf("redraws = %d, want one per recognized pick (%d)", h.s.redraws, wantRedraws)
			}
		}
	})
}
