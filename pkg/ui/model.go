// Package ui is the interactive terminal view of a dashboard. The figure is
// rendered into character cells, and picks come from the keyboard or from
// mouse clicks hit-tested in cell coordinates.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/msmview/pkg/config"
	"github.com/vanderheijden86/msmview/pkg/dashboard"
	"github.com/vanderheijden86/msmview/pkg/debug"
	"github.com/vanderheijden86/msmview/pkg/interact"
	"github.com/vanderheijden86/msmview/pkg/model"
	"github.com/vanderheijden86/msmview/pkg/render"
	"github.com/vanderheijden86/msmview/pkg/watcher"
)

const (
	// chromeRows are the rows below the figure: status bar and key help.
	chromeRows = 2
	// mouseTolerance is the pick radius in cells.
	mouseTolerance = 1.0

	defaultCols = 100
	defaultRows = 32
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// DatasetChangedMsg is sent when the dataset changes on disk.
type DatasetChangedMsg struct{}

// DatasetReloadedMsg carries the result of a background reload.
type DatasetReloadedMsg struct {
	Dataset *model.Dataset
	Err     error
}

// LoadFunc loads the dataset the session was started with.
type LoadFunc func(ctx context.Context) (*model.Dataset, error)

// WatchDatasetCmd returns a command that waits for a dataset change and sends
// DatasetChangedMsg.
func WatchDatasetCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return DatasetChangedMsg{}
	}
}

// ReloadCmd loads the dataset again in the background.
func ReloadCmd(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		ds, err := load(context.Background())
		return DatasetReloadedMsg{Dataset: ds, Err: err}
	}
}

// Options configures NewModel.
type Options struct {
	Source  string // shown in the status bar
	Config  config.Config
	Build   dashboard.Options // used when a reload rebuilds the figure
	Watcher *watcher.Watcher  // nil disables live reload
	Load    LoadFunc
	Theme   *Theme
}

// gridCache keeps the last terminal rendering until the figure redraws or
// the window resizes.
type gridCache struct {
	gen        uint64
	cols, rows int
	grid       *render.Grid
}

// Model is the bubbletea model of an interactive session.
type Model struct {
	dash      *dashboard.Dashboard
	source    string
	cfg       config.Config
	buildOpts dashboard.Options
	watcher   *watcher.Watcher
	load      LoadFunc

	theme    Theme
	keys     KeyMap
	help     help.Model
	helpView viewport.Model
	showHelp bool

	width, height int
	focus         interact.Group
	cursor        [3]int // per group, 1-based
	statusMsg     string
	statusIsErr   bool

	cache *gridCache
}

// NewModel wraps a built dashboard.
func NewModel(d *dashboard.Dashboard, opts Options) Model {
	theme := TestTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	m := Model{
		dash:      d,
		source:    opts.Source,
		cfg:       opts.Config,
		buildOpts: opts.Build,
		watcher:   opts.Watcher,
		load:      opts.Load,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		helpView:  viewport.New(defaultCols, defaultRows),
		focus:     interact.GroupProcesses,
		cursor:    [3]int{0, 1, 1},
		cache:     &gridCache{},
	}
	if opts.Config.UI.HelpOnly {
		m.showHelp = true
		m.refreshHelp()
	}
	return m
}

// Dashboard returns the dashboard currently shown.
func (m Model) Dashboard() *dashboard.Dashboard { return m.dash }

// Focus returns the group the keyboard acts on.
func (m Model) Focus() interact.Group { return m.focus }

// Cursor returns the highlighted element of group g.
func (m Model) Cursor(g interact.Group) int { return m.cursor[g] }

// Status returns the status-bar message.
func (m Model) Status() string { return m.statusMsg }

// ShowingHelp reports whether the help overlay is open.
func (m Model) ShowingHelp() bool { return m.showHelp }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil && m.load != nil {
		return WatchDatasetCmd(m.watcher)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.showHelp {
			m.refreshHelp()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case DatasetChangedMsg:
		if m.load == nil {
			return m, nil
		}
		m.setStatus("Dataset changed, reloading…")
		return m, tea.Batch(ReloadCmd(m.load), WatchDatasetCmd(m.watcher))

	case DatasetReloadedMsg:
		m.applyReload(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.String() == "esc":
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.refreshHelp()

	case key.Matches(msg, m.keys.SwitchGroup):
		if m.focus == interact.GroupProcesses {
			m.focus = interact.GroupClusters
		} else {
			m.focus = interact.GroupProcesses
		}

	case key.Matches(msg, m.keys.Next):
		m.cursor[m.focus] = wrapIndex(m.cursor[m.focus], 1, m.groupSize(m.focus))

	case key.Matches(msg, m.keys.Prev):
		m.cursor[m.focus] = wrapIndex(m.cursor[m.focus], -1, m.groupSize(m.focus))

	case key.Matches(msg, m.keys.Pick):
		m.toggle(m.focus, m.cursor[m.focus])

	case key.Matches(msg, m.keys.Direct):
		n := int(msg.String()[0] - '0')
		if n > m.groupSize(m.focus) {
			m.setError(fmt.Sprintf("No %s %d", singular(m.focus), n))
			break
		}
		m.cursor[m.focus] = n
		m.toggle(m.focus, n)

	case key.Matches(msg, m.keys.Reset):
		if err := m.dash.Controller.Reset(); err != nil {
			m.setError(err.Error())
			break
		}
		m.setStatus("Selection cleared")

	case key.Matches(msg, m.keys.Copy):
		m.copyViewState()

	case key.Matches(msg, m.keys.Export):
		m.export()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.cfg.UI.MouseEnabled() || m.showHelp {
		return
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	cols, rows := m.canvasSize()
	if msg.X < 0 || msg.Y < 0 || msg.X >= cols || msg.Y >= rows {
		return
	}
	ok, err := m.dash.PickAtWithin(float64(msg.X)+0.5, float64(msg.Y)+0.5, float64(cols), float64(rows), mouseTolerance)
	switch {
	case err != nil:
		m.setError(err.Error())
	case ok:
		m.syncCursor()
		m.setStatus(m.dash.ViewState().Summary())
	}
}

func (m *Model) toggle(g interact.Group, id int) {
	ok, err := m.dash.Toggle(g, id)
	switch {
	case err != nil:
		m.setError(err.Error())
	case !ok:
		m.setError(fmt.Sprintf("No %s %d", singular(g), id))
	default:
		m.setStatus(m.dash.ViewState().Summary())
	}
}

// syncCursor moves the cursors onto the current selection so keyboard and
// mouse picks agree.
func (m *Model) syncCursor() {
	vs := m.dash.ViewState()
	if vs.Process != 0 {
		m.cursor[interact.GroupProcesses] = vs.Process
	}
	if vs.Cluster != 0 {
		m.cursor[interact.GroupClusters] = vs.Cluster
	}
}

func (m *Model) copyViewState() {
	data, err := json.MarshalIndent(m.dash.ViewState(), "", "  ")
	if err != nil {
		m.setError(fmt.Sprintf("Encode view state: %v", err))
		return
	}
	if err := writeClipboard(string(data)); err != nil {
		m.setError(fmt.Sprintf("Clipboard error: %v", err))
		return
	}
	m.setStatus("📋 Copied view state to clipboard")
}

func (m *Model) export() {
	format := m.cfg.Export.Format
	if format == "" {
		format = render.FormatPNG
	}
	name := m.dash.Dataset.Name
	if name == "" {
		name = "msmview"
	}
	file := fmt.Sprintf("%s-%s.%s", slug(name), time.Now().Format("20060102-150405"), format)
	path, err := render.SaveSnapshot(m.dash.Figure, render.SnapshotOptions{
		Path:   filepath.Join(m.cfg.ExportDir(), file),
		Format: format,
	})
	if err != nil {
		m.setError(fmt.Sprintf("Export failed: %v", err))
		return
	}
	m.setStatus("Exported " + path)
}

// applyReload swaps in a rebuilt dashboard and replays the selection.
func (m *Model) applyReload(msg DatasetReloadedMsg) {
	if msg.Err != nil {
		m.setError(fmt.Sprintf("Reload failed: %v", msg.Err))
		return
	}
	vs := m.dash.ViewState()
	next, err := dashboard.Build(msg.Dataset, m.buildOpts)
	if err != nil {
		m.setError(fmt.Sprintf("Reload failed: %v", err))
		return
	}
	if err := next.Select(vs.Process, vs.Cluster); err != nil {
		debug.Log("ui: selection not restored after reload: %v", err)
	}
	m.dash = next
	m.cache = &gridCache{}
	m.setStatus("Reloaded " + msg.Dataset.Name)
}

func (m *Model) refreshHelp() {
	cols, rows := m.canvasSize()
	m.helpView.Width = cols - 4
	m.helpView.Height = rows - 1
	m.helpView.SetContent(renderHelp(cols))
}

func (m *Model) setStatus(s string) {
	m.statusMsg, m.statusIsErr = s, false
}

func (m *Model) setError(s string) {
	m.statusMsg, m.statusIsErr = s, true
}

func (m Model) groupSize(g interact.Group) int {
	if g == interact.GroupProcesses {
		return len(m.dash.Dataset.Processes)
	}
	return len(m.dash.Dataset.Clusters)
}

// canvasSize returns the cell grid available to the figure.
func (m Model) canvasSize() (cols, rows int) {
	if m.width <= 0 || m.height <= 0 {
		return defaultCols, defaultRows
	}
	return max(m.width, 20), max(m.height-chromeRows, 8)
}

func (m Model) grid() *render.Grid {
	cols, rows := m.canvasSize()
	gen := m.dash.Figure.Generation()
	c := m.cache
	if c.grid == nil || c.gen != gen || c.cols != cols || c.rows != rows {
		c.grid = render.Terminal(m.dash.Figure, cols, rows)
		c.gen, c.cols, c.rows = gen, cols, rows
	}
	return c.grid
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.HelpBox.Render(m.helpView.View()),
			m.theme.MutedText.Render("? or esc to close"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.grid().String(),
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m Model) statusLine() string {
	cols, _ := m.canvasSize()

	badge := m.theme.FocusBadge.
		Background(m.theme.GroupColor(m.focus)).
		Render(fmt.Sprintf("%s ▸ %d", m.focus, m.cursor[m.focus]))

	msg := m.statusMsg
	if msg == "" && m.source != "" {
		msg = m.source
	}
	style := m.theme.StatusBar
	if m.statusIsErr {
		style = m.theme.StatusErr
	}

	right := m.dash.ViewState().Summary()
	avail := cols - lipgloss.Width(badge) - 1
	line := joinStatus(truncateRunesHelper(msg, max(0, avail-lipgloss.Width(right)-1), "…"), right, avail)
	return badge + " " + style.Width(avail).Render(line)
}

func singular(g interact.Group) string {
	if g == interact.GroupProcesses {
		return "process"
	}
	return "cluster"
}

// slug makes a dataset name safe for a file name.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
