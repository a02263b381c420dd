package dashboard

import (
	"fmt"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/interact"
	"github.com/vanderheijden86/msmview/pkg/metrics"
)

// Pick forwards a pick on ref to the controller.
func (d *Dashboard) Pick(ref figure.ArtistID) (bool, error) {
	defer metrics.Timer(metrics.PickHandling)()
	return d.Controller.OnPick(ref)
}

// PickAt hit-tests the pixel (px, py) in a canvas of width x height and picks
// whatever pickable artist lies there. A miss is not a pick.
func (d *Dashboard) PickAt(px, py, width, height float64) (bool, error) {
	return d.PickAtWithin(px, py, width, height, figure.DefaultHitTolerance)
}

// PickAtWithin is PickAt with an explicit hit tolerance in canvas pixels.
// Coarse canvases such as terminal cells need a tolerance of about one.
func (d *Dashboard) PickAtWithin(px, py, width, height, tolerance float64) (bool, error) {
	ref, ok := d.Figure.HitTestWithin(px, py, width, height, tolerance)
	if !ok {
		return false, nil
	}
	return d.Pick(ref)
}

// Toggle picks the artist registered for element id of group.
func (d *Dashboard) Toggle(group interact.Group, id int) (bool, error) {
	ref, ok := d.Controller.Ref(group, id)
	if !ok {
		return false, nil
	}
	return d.Pick(ref)
}

// Select replays picks so that exactly process and cluster are selected.
// Zero leaves a group cleared.
func (d *Dashboard) Select(process, cluster int) error {
	if err := d.Controller.Reset(); err != nil {
		return err
	}
	if process != 0 {
		ok, err := d.Toggle(interact.GroupProcesses, process)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no process %d (have 1..%d)", process, len(d.Dataset.Processes))
		}
	}
	if cluster != 0 {
		ok, err := d.Toggle(interact.GroupClusters, cluster)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no cluster %d (have 1..%d)", cluster, len(d.Dataset.Clusters))
		}
	}
	return nil
}

// ViewState returns the controller's derived view state.
func (d *Dashboard) ViewState() interact.ViewState {
	return d.Controller.ViewState()
}
