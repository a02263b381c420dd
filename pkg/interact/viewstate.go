package interact

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/msmview/pkg/model"
)

// ViewState is the view configuration implied by the current selection.
// It is derived on demand and never stored.
type ViewState struct {
	Process          int            `json:"process,omitempty"` // 0 when no process is picked
	Cluster          int            `json:"cluster,omitempty"` // 0 when no cluster is picked
	FreeEnergyShown  bool           `json:"free_energy_shown"`
	Eigenvector      int            `json:"eigenvector,omitempty"`
	Overlays         []int          `json:"overlays"`
	ColorbarLabel    string         `json:"colorbar_label"`
	ColorbarTicks    []float64      `json:"colorbar_ticks"`
	Image            model.ImageKey `json:"image"`
	EmphasizedMarker int            `json:"emphasized_marker,omitempty"`
}

// ViewState derives the current view configuration.
func (c *Controller) ViewState() ViewState {
	vs := ViewState{
		FreeEnergyShown: true,
		ColorbarLabel:   FreeEnergyLabel,
		ColorbarTicks:   append([]float64(nil), c.freeEnergyLevels...),
		Image:           model.DefaultImage,
		Overlays:        []int{},
	}
	if p, ok := c.processes.Selected(); ok {
		vs.Process = p
		vs.FreeEnergyShown = false
		vs.Eigenvector = p
		vs.EmphasizedMarker = p
		vs.ColorbarLabel = EigenvectorLabel(p)
		vs.ColorbarTicks = append([]float64(nil), c.processViews[p].Levels...)
	}
	if k, ok := c.clusters.Selected(); ok {
		vs.Cluster = k
		vs.Overlays = []int{k}
		vs.Image = model.ImageKey(k)
	}
	return vs
}

// Summary renders the view state as a short human-readable line.
func (vs ViewState) Summary() string {
	var parts []string
	if vs.FreeEnergyShown {
		parts = append(parts, "surface: free energy")
	} else {
		parts = append(parts, fmt.Sprintf("surface: %s", EigenvectorLabel(vs.Eigenvector)))
	}
	if vs.Cluster != 0 {
		parts = append(parts, fmt.Sprintf("cluster: %d", vs.Cluster))
	} else {
		parts = append(parts, "cluster: none")
	}
	parts = append(parts, fmt.Sprintf("image: %s", vs.Image))
	return strings.Join(parts, " | ")
}

// EigenvectorLabel returns the colorbar label of process p, e.g. "4th eigenvector".
func EigenvectorLabel(p int) string {
	return Ordinal(p) + " eigenvector"
}

// Ordinal formats n with its English ordinal suffix.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
