package figure

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/vanderheijden86/msmview/pkg/model"
)

func rampField(t *testing.T) *model.ScalarField {
	t.Helper()
	// value = x, on a 3x3 grid
	f, err := model.NewScalarField(
		[]float64{0, 1, 2},
		[]float64{0, 1, 2},
		[][]float64{{0, 1, 2}, {0, 1, 2}, {0, 1, 2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFigure_AddRejectsDuplicates(t *testing.T) {
	fig := New(100, 100)
	ax := fig.AddAxes("main", Rect{0, 0, 1, 1})
	if err := fig.Add(NewText("t", ax, 0, 0, "a", color.RGBA{})); err != nil {
		t.Fatal(err)
	}
	err := fig.Add(NewText("t", ax, 0, 0, "b", color.RGBA{}))
	if !errors.Is(err, ErrDuplicateArtist) {
		t.Fatalf("expected ErrDuplicateArtist, got %v", err)
	}
	if got := fig.AddAxes("main", Rect{}); got != ax {
		t.Error("AddAxes with existing id should return the existing axes")
	}
}

func TestFigure_RequestRedrawNotifiesOncePerCall(t *testing.T) {
	fig := New(100, 100)
	var calls []uint64
	fig.OnRedraw(func(gen uint64) { calls = append(calls, gen) })

	fig.RequestRedraw()
	fig.RequestRedraw()

	if fig.Generation() != 2 {
		t.Errorf("generation = %d, want 2", fig.Generation())
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("hook calls = %v, want [1 2]", calls)
	}
}

func TestFigure_HitTestSkipsHiddenAndUnpickable(t *testing.T) {
	fig := New(100, 100)
	ax := fig.AddAxes("legend", Rect{0, 0, 1, 1})
	ax.SetLimits(0, 10, 0, 10)

	m := NewMarker("legend/1", ax, 5, 5, "o", color.RGBA{}, 10, "one")
	_ = fig.Add(m)

	if _, ok := fig.HitTest(50, 50, 100, 100); ok {
		t.Fatal("unpickable marker should not be hit")
	}
	m.SetPickable(true)
	id, ok := fig.HitTest(52, 50, 100, 100)
	if !ok || id != "legend/1" {
		t.Fatalf("HitTest = %q, %v; want legend/1, true", id, ok)
	}
	m.SetVisible(false)
	if _, ok := fig.HitTest(50, 50, 100, 100); ok {
		t.Fatal("hidden marker should not be hit")
	}
}

func TestMarker_RadiusScalesWithCanvas(t *testing.T) {
	fig := New(1000, 500)
	ax := fig.AddAxes("legend", Rect{0, 0, 1, 1})
	ax.SetLimits(0, 10, 0, 10)
	m := NewMarker("legend/1", ax, 5, 5, "o", color.RGBA{}, 20, "one")
	m.SetPickable(true)
	_ = fig.Add(m)

	// Full size: radius 10.
	if d := m.Distance(508, 250, 1000, 500); math.Abs(d+2) > 1e-9 {
		t.Errorf("distance = %v, want -2", d)
	}
	// A 100x25 canvas scales by min(0.1, 0.05): radius 0.5.
	if got := ax.PixelScale(100, 25); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("PixelScale = %v, want 0.05", got)
	}
	if _, ok := fig.HitTestWithin(50, 12.5+4, 100, 25, 1); ok {
		t.Error("four rows below a shrunken marker should miss")
	}
	if id, ok := fig.HitTestWithin(50.5, 12.5, 100, 25, 1); !ok || id != "legend/1" {
		t.Errorf("HitTestWithin = %q, %v; want legend/1", id, ok)
	}
	if s := (&Axes{}).PixelScale(10, 10); s != 1 {
		t.Errorf("detached axes scale = %v, want 1", s)
	}
}

func TestFigure_HitTestPrefersNearest(t *testing.T) {
	fig := New(100, 100)
	ax := fig.AddAxes("its", Rect{0, 0, 1, 1})
	ax.SetLimits(0, 100, 0, 100)

	near := NewLine("its/1", ax, []float64{0, 100}, []float64{50, 50}, color.RGBA{}, 1)
	far := NewLine("its/2", ax, []float64{0, 100}, []float64{53, 53}, color.RGBA{}, 1)
	near.SetPickable(true)
	far.SetPickable(true)
	_ = fig.Add(near)
	_ = fig.Add(far)

	id, ok := fig.HitTest(50, 50, 100, 100)
	if !ok || id != "its/1" {
		t.Fatalf("HitTest = %q, %v; want its/1", id, ok)
	}
	if _, ok := fig.HitTestWithin(50, 40, 100, 100, 1); ok {
		t.Fatal("nothing lies within 1px of (50, 40)")
	}
}

func TestTicks(t *testing.T) {
	got := NiceTicks(0, 1)
	if len(got) < 2 {
		t.Fatalf("NiceTicks = %v, want at least two ticks", got)
	}
	step := got[1] - got[0]
	for i, v := range got {
		if v < 0 || v > 1 {
			t.Errorf("NiceTicks[%d] = %v outside [0, 1]", i, v)
		}
		if i > 0 && math.Abs(v-got[i-1]-step) > 1e-9 {
			t.Errorf("NiceTicks = %v, want evenly spaced", got)
		}
	}
	if NiceTicks(1, 1) != nil || NiceTicks(0, math.Inf(1)) != nil {
		t.Error("degenerate ranges should yield no ticks")
	}

	logs := LogTicks(0.5, 2000)
	if len(logs) != 4 || logs[0] != 1 || logs[3] != 1000 {
		t.Errorf("LogTicks = %v, want [1 10 100 1000]", logs)
	}
	if LogTicks(0, 10) != nil {
		t.Error("log ticks need a positive range")
	}
	if got := FormatTick(2.5e-4); got != "0.00025" {
		t.Errorf("FormatTick = %q", got)
	}
}

func TestLine_DistanceLogAxes(t *testing.T) {
	fig := New(200, 200)
	ax := fig.AddAxes("its", Rect{0, 0, 1, 1})
	ax.SetLimits(0, 10, 1, 100)
	ax.LogY = true

	l := NewLine("its/1", ax, []float64{0, 10}, []float64{10, 10}, color.RGBA{}, 1)
	// y=10 on a 1..100 log axis sits halfway
	if d := l.Distance(100, 100, 200, 200); d > 1e-9 {
		t.Errorf("distance to line = %v, want 0", d)
	}
	if d := l.Distance(100, 80, 200, 200); math.Abs(d-20) > 1e-9 {
		t.Errorf("distance = %v, want 20", d)
	}
}

func TestAxes_PixelRoundTrip(t *testing.T) {
	ax := &Axes{Rect: Rect{0.1, 0.2, 0.5, 0.5}}
	ax.SetLimits(-2, 2, 0, 4)
	px, py := ax.ToPixel(1, 3, 400, 300)
	x, y := ax.FromPixel(px, py, 400, 300)
	if math.Abs(x-1) > 1e-9 || math.Abs(y-3) > 1e-9 {
		t.Errorf("round trip gave (%v, %v), want (1, 3)", x, y)
	}
}

// pathLength sums segment lengths and checks every segment lies on x = at.
func pathLength(t *testing.T, segs []Segment, at float64) float64 {
	t.Helper()
	var total float64
	for _, s := range segs {
		if math.Abs(s.X0-at) > 1e-9 || math.Abs(s.X1-at) > 1e-9 {
			t.Errorf("segment %+v not on x=%v", s, at)
		}
		total += math.Hypot(s.X1-s.X0, s.Y1-s.Y0)
	}
	return total
}

func TestIsolines_VerticalLevel(t *testing.T) {
	segs := Isolines(rampField(t), 0.5)
	if len(segs) == 0 {
		t.Fatal("expected an isoline")
	}
	if l := pathLength(t, segs, 0.5); math.Abs(l-2) > 1e-9 {
		t.Errorf("isoline length = %v, want 2 (full grid height)", l)
	}
}

func TestIsolines_OutOfRangeLevel(t *testing.T) {
	if segs := Isolines(rampField(t), 5); segs != nil {
		t.Errorf("level above the field gave %d segments", len(segs))
	}
	if segs := Isolines(rampField(t), math.NaN()); segs != nil {
		t.Error("NaN level should trace nothing")
	}
}

func TestIsolines_SkipsMaskedCells(t *testing.T) {
	f, _ := model.NewScalarField(
		[]float64{0, 1, 2},
		[]float64{0, 1},
		[][]float64{{0, 1, math.NaN()}, {0, 1, 2}},
	)
	segs := Isolines(f, 0.5)
	if l := pathLength(t, segs, 0.5); math.Abs(l-1) > 1e-9 {
		t.Errorf("isoline length = %v, want 1 (masked cell cut)", l)
	}

	// 1.5 only crosses the masked cell.
	if segs := Isolines(f, 1.5); len(segs) != 0 {
		t.Errorf("masked cell produced %d segments: %+v", len(segs), segs)
	}
}

func TestContourFill_Band(t *testing.T) {
	cf := NewContourFill("fe", nil, rampField(t), []float64{0, 1, 2}, Viridis)
	cases := []struct {
		v    float64
		band int
	}{
		{-1, 0},
		{0.5, 1},
		{1.5, 2},
		{3, 3},
	}
	for _, tc := range cases {
		got, ok := cf.Band(tc.v)
		if !ok || got != tc.band {
			t.Errorf("Band(%v) = %d, %v; want %d", tc.v, got, ok, tc.band)
		}
	}
	if _, ok := cf.Band(math.NaN()); ok {
		t.Error("NaN should not map to a band")
	}
	if cf.BandColor(0) != Viridis.At(0) || cf.BandColor(3) != Viridis.At(1) {
		t.Error("out-of-range bands should clamp to colormap ends")
	}
}

func TestColormap_Endpoints(t *testing.T) {
	lo := Viridis.At(0)
	hi := Viridis.At(1)
	if Hex(lo) != "#440154" {
		t.Errorf("At(0) = %s, want #440154", Hex(lo))
	}
	if Hex(hi) != "#fde725" {
		t.Errorf("At(1) = %s, want #fde725", Hex(hi))
	}
	if ColormapByName("RdBu").Name != "rdbu" {
		t.Error("expected rdbu lookup to be case-insensitive")
	}
}

func TestColormap_Palettes(t *testing.T) {
	cw := ColormapByName("coolwarm")
	if cw.Name != "coolwarm" {
		t.Fatalf("lookup gave %q", cw.Name)
	}
	if blue := cw.At(0); blue.B <= blue.R {
		t.Errorf("coolwarm At(0) = %s, want blue", Hex(blue))
	}
	if red := cw.At(1); red.R <= red.B {
		t.Errorf("coolwarm At(1) = %s, want red", Hex(red))
	}
	if mid := cw.At(math.NaN()); mid != cw.At(0) {
		t.Errorf("NaN should map like 0, got %s", Hex(mid))
	}

	k := ColormapByName("kindlmann")
	if got := Hex(k.At(-1)); got != "#000000" {
		t.Errorf("kindlmann clamps below to black, got %s", got)
	}
	lo, hi := k.At(0.25), k.At(0.75)
	if int(lo.R)+int(lo.G)+int(lo.B) >= int(hi.R)+int(hi.G)+int(hi.B) {
		t.Errorf("kindlmann should brighten: %s then %s", Hex(lo), Hex(hi))
	}
}
