package interact

import "fmt"

// PickGroup tracks exclusive selection over a fixed, ordered set of element
// ids. At most one element is picked at any time.
type PickGroup struct {
	name   string
	ids    []int
	picked map[int]bool
}

// NewPickGroup creates a group over ids with nothing picked.
func NewPickGroup(name string, ids ...int) *PickGroup {
	g := &PickGroup{
		name:   name,
		ids:    append([]int(nil), ids...),
		picked: make(map[int]bool, len(ids)),
	}
	for _, id := range ids {
		g.picked[id] = false
	}
	return g
}

// Name returns the group name.
func (g *PickGroup) Name() string {
	return g.name
}

// IDs returns the element ids in construction order.
func (g *PickGroup) IDs() []int {
	return append([]int(nil), g.ids...)
}

// Toggle picks id, clearing any sibling, or clears id if it was the picked
// element. Toggling an id outside the group is a programming error.
func (g *PickGroup) Toggle(id int) {
	was, ok := g.picked[id]
	if !ok {
		panic(fmt.Sprintf("interact: %s group has no element %d", g.name, id))
	}
	for k := range g.picked {
		g.picked[k] = false
	}
	g.picked[id] = !was
}

// Clear unpicks every element.
func (g *PickGroup) Clear() {
	for k := range g.picked {
		g.picked[k] = false
	}
}

// Selected returns the picked element, if any.
func (g *PickGroup) Selected() (int, bool) {
	for _, id := range g.ids {
		if g.picked[id] {
			return id, true
		}
	}
	return 0, false
}

// IsPicked reports whether id is the picked element.
func (g *PickGroup) IsPicked(id int) bool {
	return g.picked[id]
}

// Contains reports whether id belongs to the group.
func (g *PickGroup) Contains(id int) bool {
	_, ok := g.picked[id]
	return ok
}

// pickedCount is used by tests to check the exclusivity invariant.
func (g *PickGroup) pickedCount() int {
	n := 0
	for _, v := range g.picked {
		if v {
			n++
		}
	}
	return n
}
