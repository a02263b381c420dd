package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# msmview

The left panel shows the **free-energy surface** (colorbar ΔG). Picking a
process swaps it for that process's eigenvector; picking a cluster outlines
its density and shows its representative structure.

## Picking

| Key | Action |
|-----|--------|
| **tab** | switch between processes and clusters |
| **← → ↑ ↓** | move within the focused group |
| **enter** / **space** | pick the highlighted element |
| **1-9** | pick by number in the focused group |
| **mouse click** | pick a time-scale curve or a legend marker |

Picking the selected element again clears it. Processes and clusters are
independent: at most one of each is selected.

## Other keys

| Key | Action |
|-----|--------|
| **r** | clear both selections |
| **y** | copy the view state as JSON |
| **e** | export a PNG snapshot |
| **?** | toggle this help |
| **q** | quit |
`

// renderHelp renders the help text for the given width. Rendering errors
// fall back to the raw markdown.
func renderHelp(width int) string {
	wrap := max(20, min(width-4, 80))
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	// Strip trailing whitespace/newlines that glamour adds
	return strings.TrimRight(out, " \n")
}
