// Package figure is a small retained-mode drawing model: a figure owns axes
// regions and the artists placed on them. Artists only carry what to draw and
// whether it is visible; backends in package render decide how to paint it.
//
// Mutations never paint by themselves. Callers batch any number of changes and
// then call RequestRedraw once, which bumps the figure generation and notifies
// the registered redraw hook.
package figure

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrDuplicateArtist is returned when an artist id is registered twice.
var ErrDuplicateArtist = errors.New("duplicate artist id")

// ArtistID names an artist uniquely within a figure. Pick events carry it.
type ArtistID string

// Colorbar describes the colorbar attached to one filled contour set.
type Colorbar struct {
	Axes   *Axes
	Target *ContourFill
	Ticks  []float64
	Label  string
}

// Figure is the root of the drawing model.
type Figure struct {
	Width  int
	Height int
	Title  string

	mu         sync.Mutex
	axes       []*Axes
	axesByID   map[string]*Axes
	artists    []Artist
	byID       map[ArtistID]Artist
	colorbar   Colorbar
	generation uint64
	onRedraw   func(generation uint64)
}

// New creates an empty figure of the given nominal pixel size.
func New(width, height int) *Figure {
	return &Figure{
		Width:    width,
		Height:   height,
		axesByID: make(map[string]*Axes),
		byID:     make(map[ArtistID]Artist),
	}
}

// AddAxes registers a new axes region. Adding an existing id returns it.
func (f *Figure) AddAxes(id string, r Rect) *Axes {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ax, ok := f.axesByID[id]; ok {
		return ax
	}
	ax := &Axes{ID: id, Rect: r, refW: float64(f.Width), refH: float64(f.Height)}
	f.axes = append(f.axes, ax)
	f.axesByID[id] = ax
	return ax
}

// Axes returns the axes regions in creation order.
func (f *Figure) Axes() []*Axes {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Axes(nil), f.axes...)
}

// AxesByID looks up an axes region.
func (f *Figure) AxesByID(id string) (*Axes, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ax, ok := f.axesByID[id]
	return ax, ok
}

// Add registers an artist. Artists are painted in registration order.
func (f *Figure) Add(a Artist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateArtist, a.ID())
	}
	f.byID[a.ID()] = a
	f.artists = append(f.artists, a)
	return nil
}

// Artist looks up an artist by id.
func (f *Figure) Artist(id ArtistID) (Artist, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	return a, ok
}

// Artists returns all artists in paint order.
func (f *Figure) Artists() []Artist {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Artist(nil), f.artists...)
}

// SetColorbar attaches the colorbar to target with the given ticks and label.
func (f *Figure) SetColorbar(ax *Axes, target *ContourFill, ticks []float64, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colorbar = Colorbar{
		Axes:   ax,
		Target: target,
		Ticks:  append([]float64(nil), ticks...),
		Label:  label,
	}
}

// Colorbar returns the current colorbar attachment.
func (f *Figure) Colorbar() Colorbar {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.colorbar
}

// OnRedraw registers the hook invoked once per RequestRedraw.
func (f *Figure) OnRedraw(fn func(generation uint64)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRedraw = fn
}

// RequestRedraw marks the figure dirty and notifies the redraw hook.
func (f *Figure) RequestRedraw() {
	f.mu.Lock()
	f.generation++
	gen := f.generation
	hook := f.onRedraw
	f.mu.Unlock()

	if hook != nil {
		hook(gen)
	}
}

// Generation counts redraw requests since creation.
func (f *Figure) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// DefaultHitTolerance is the pick radius, in canvas pixels, used by HitTest.
const DefaultHitTolerance = 5.0

// HitTest returns the visible pickable artist under the pixel position
// (px, py), measured in a canvas of width x height pixels.
func (f *Figure) HitTest(px, py float64, width, height float64) (ArtistID, bool) {
	return f.HitTestWithin(px, py, width, height, DefaultHitTolerance)
}

// HitTestWithin is HitTest with an explicit pick radius. The nearest artist
// within tolerance wins; ties go to the one painted last.
func (f *Figure) HitTestWithin(px, py, width, height, tolerance float64) (ArtistID, bool) {
	var (
		best  ArtistID
		bestD = math.Inf(1)
	)
	artists := f.Artists()
	for i := len(artists) - 1; i >= 0; i-- {
		a := artists[i]
		if !a.Visible() {
			continue
		}
		p, ok := a.(Pickable)
		if !ok || !p.Pickable() {
			continue
		}
		if d := p.Distance(px, py, width, height); d <= tolerance && d < bestD {
			best, bestD = a.ID(), d
		}
	}
	return best, !math.IsInf(bestD, 1)
}

// distanceToSegment returns the euclidean distance from p to the segment ab.
func distanceToSegment(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	if dx == 0 && dy == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
