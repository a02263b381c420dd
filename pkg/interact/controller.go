// Package interact keeps the linked views of the figure consistent with what
// the user has picked. Two independent exclusive pick groups exist: the
// implied-timescale curves (one per process) and the legend markers (one per
// cluster). Every pick toggles one group, re-applies that group's views and
// asks the canvas for a single redraw.
package interact

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/vanderheijden86/msmview/pkg/debug"
	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// Default stroke widths of timescale curves.
const (
	DefaultNormalWidth   = 1.5
	DefaultEmphasisWidth = 4.0
)

// FreeEnergyLabel is the colorbar label of the free-energy surface.
const FreeEnergyLabel = "ΔG"

// Group identifies a pick group.
type Group int

const (
	GroupProcesses Group = iota + 1
	GroupClusters
)

// String implements fmt.Stringer.
func (g Group) String() string {
	switch g {
	case GroupProcesses:
		return "processes"
	case GroupClusters:
		return "clusters"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Target is the element a pick reference resolves to.
type Target struct {
	Group Group
	ID    int
}

// Surface is a contour surface in the main panel.
type Surface interface {
	SetVisible(bool)
	AttachColorbar(levels []float64, label string)
}

// Overlay is a cluster outline.
type Overlay interface {
	SetVisible(bool)
}

// ImageView shows representative-structure images.
type ImageView interface {
	Show(key model.ImageKey) error
}

// Marker is a timescale curve whose stroke signals the picked process.
type Marker interface {
	SetLineWidth(float64)
}

// Redrawer batches a repaint of everything mutated so far.
type Redrawer interface {
	RequestRedraw()
}

// ProcessView bundles the views owned by one process.
type ProcessView struct {
	ID      int
	Surface Surface
	Levels  []float64
	Marker  Marker
}

// ClusterView bundles the views owned by one cluster.
type ClusterView struct {
	ID      int
	Overlay Overlay
}

// Options configures a Controller.
type Options struct {
	FreeEnergy       Surface
	FreeEnergyLevels []float64
	Processes        []ProcessView
	Clusters         []ClusterView
	Image            ImageView
	Canvas           Redrawer
	NormalWidth      float64
	EmphasisWidth    float64
}

// Controller owns both pick groups and the views derived from them.
type Controller struct {
	processes *PickGroup
	clusters  *PickGroup

	freeEnergy       Surface
	freeEnergyLevels []float64
	processViews     map[int]ProcessView
	clusterViews     map[int]ClusterView
	image            ImageView
	canvas           Redrawer
	normalWidth      float64
	emphasisWidth    float64

	targets map[figure.ArtistID]Target
	refs    map[Target]figure.ArtistID
	logger  *log.Logger
}

// New builds a controller with nothing picked. Call Sync to push the initial
// state to the views.
func New(opts Options) (*Controller, error) {
	if opts.FreeEnergy == nil {
		return nil, errors.New("free energy surface is required")
	}
	if opts.Image == nil {
		return nil, errors.New("image view is required")
	}
	if opts.Canvas == nil {
		return nil, errors.New("canvas is required")
	}

	c := &Controller{
		freeEnergy:       opts.FreeEnergy,
		freeEnergyLevels: append([]float64(nil), opts.FreeEnergyLevels...),
		processViews:     make(map[int]ProcessView, len(opts.Processes)),
		clusterViews:     make(map[int]ClusterView, len(opts.Clusters)),
		image:            opts.Image,
		canvas:           opts.Canvas,
		normalWidth:      opts.NormalWidth,
		emphasisWidth:    opts.EmphasisWidth,
		targets:          make(map[figure.ArtistID]Target),
		refs:             make(map[Target]figure.ArtistID),
		// Silent unless a caller opts in via SetLogger.
		logger: log.New(io.Discard, "", 0),
	}
	if c.normalWidth <= 0 {
		c.normalWidth = DefaultNormalWidth
	}
	if c.emphasisWidth <= 0 {
		c.emphasisWidth = DefaultEmphasisWidth
	}

	processIDs := make([]int, 0, len(opts.Processes))
	for _, pv := range opts.Processes {
		if pv.Surface == nil || pv.Marker == nil {
			return nil, fmt.Errorf("process %d: surface and marker are required", pv.ID)
		}
		if _, dup := c.processViews[pv.ID]; dup {
			return nil, fmt.Errorf("duplicate process %d", pv.ID)
		}
		c.processViews[pv.ID] = pv
		processIDs = append(processIDs, pv.ID)
	}
	clusterIDs := make([]int, 0, len(opts.Clusters))
	for _, cv := range opts.Clusters {
		if cv.Overlay == nil {
			return nil, fmt.Errorf("cluster %d: overlay is required", cv.ID)
		}
		if _, dup := c.clusterViews[cv.ID]; dup {
			return nil, fmt.Errorf("duplicate cluster %d", cv.ID)
		}
		c.clusterViews[cv.ID] = cv
		clusterIDs = append(clusterIDs, cv.ID)
	}

	c.processes = NewPickGroup(GroupProcesses.String(), processIDs...)
	c.clusters = NewPickGroup(GroupClusters.String(), clusterIDs...)
	return c, nil
}

// SetLogger sets the logger that receives pick diagnostics.
func (c *Controller) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c.logger = logger
}

// Register maps a pickable artist onto a group element.
func (c *Controller) Register(ref figure.ArtistID, t Target) error {
	g := c.group(t.Group)
	if g == nil || !g.Contains(t.ID) {
		return fmt.Errorf("register %s: no element %d in %s", ref, t.ID, t.Group)
	}
	if prev, ok := c.targets[ref]; ok {
		return fmt.Errorf("register %s: already bound to %s %d", ref, prev.Group, prev.ID)
	}
	c.targets[ref] = t
	c.refs[t] = ref
	return nil
}

// Ref returns the artist registered for a group element.
func (c *Controller) Ref(group Group, id int) (figure.ArtistID, bool) {
	ref, ok := c.refs[Target{Group: group, ID: id}]
	return ref, ok
}

// Resolve classifies a pick reference.
func (c *Controller) Resolve(ref figure.ArtistID) (Target, bool) {
	t, ok := c.targets[ref]
	return t, ok
}

// Processes exposes the process pick group for inspection.
func (c *Controller) Processes() *PickGroup { return c.processes }

// Clusters exposes the cluster pick group for inspection.
func (c *Controller) Clusters() *PickGroup { return c.clusters }

// OnPick handles a pick on ref. It reports whether ref belonged to a pick
// group; unknown references leave every view untouched. The returned error
// comes from the image panel and does not undo the pick.
func (c *Controller) OnPick(ref figure.ArtistID) (bool, error) {
	t, ok := c.targets[ref]
	if !ok {
		c.logger.Printf("ignoring pick on unrecognized element %q", ref)
		debug.Log("pick: unrecognized element %q", ref)
		return false, nil
	}

	var err error
	switch t.Group {
	case GroupProcesses:
		c.processes.Toggle(t.ID)
		c.applyProcesses()
	case GroupClusters:
		c.clusters.Toggle(t.ID)
		err = c.applyClusters()
	}
	if err != nil {
		c.logger.Printf("pick %q: %v", ref, err)
	}
	debug.Log("pick: %s %d -> %+v", t.Group, t.ID, c.ViewState())

	c.canvas.RequestRedraw()
	return true, err
}

// Sync pushes the current selection to every view and redraws once. Used to
// establish the initial state.
func (c *Controller) Sync() error {
	c.applyProcesses()
	err := c.applyClusters()
	c.canvas.RequestRedraw()
	return err
}

// Reset clears both groups and returns the views to their defaults.
func (c *Controller) Reset() error {
	c.processes.Clear()
	c.clusters.Clear()
	return c.Sync()
}

// applyProcesses shows either the free-energy surface or the eigenvector
// surface of the picked process, never both and never neither.
func (c *Controller) applyProcesses() {
	picked, ok := c.processes.Selected()

	for _, id := range c.processes.IDs() {
		pv := c.processViews[id]
		sel := ok && id == picked
		pv.Surface.SetVisible(sel)
		if sel {
			pv.Marker.SetLineWidth(c.emphasisWidth)
		} else {
			pv.Marker.SetLineWidth(c.normalWidth)
		}
	}

	if ok {
		pv := c.processViews[picked]
		c.freeEnergy.SetVisible(false)
		pv.Surface.AttachColorbar(pv.Levels, EigenvectorLabel(picked))
		return
	}
	c.freeEnergy.SetVisible(true)
	c.freeEnergy.AttachColorbar(c.freeEnergyLevels, FreeEnergyLabel)
}

// applyClusters shows the outline of the picked cluster only and swaps the
// structure image accordingly.
func (c *Controller) applyClusters() error {
	picked, ok := c.clusters.Selected()
	for _, id := range c.clusters.IDs() {
		c.clusterViews[id].Overlay.SetVisible(ok && id == picked)
	}
	key := model.DefaultImage
	if ok {
		key = model.ImageKey(picked)
	}
	return c.image.Show(key)
}

func (c *Controller) group(g Group) *PickGroup {
	switch g {
	case GroupProcesses:
		return c.processes
	case GroupClusters:
		return c.clusters
	default:
		return nil
	}
}
