package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumipallolabs/walletmap/internal/core"
	"github.com/lumipallolabs/walletmap/internal/logging"
	"github.com/lumipallolabs/walletmap/internal/model"
	"github.com/lumipallolabs/walletmap/internal/render"
)

// Message types for Bubble Tea
type (
	treeLoadedMsg struct {
		root *model.Node
		err  error
	}
	watchStartedMsg struct {
		ch  <-chan core.Event
		err error
	}
	watchEventMsg struct{ event core.Event }
	openedMsg     struct {
		href string
		err  error
	}
)

// opener launches a URL; replaced in tests
var opener = openInBrowser

// App is the terminal preview model
type App struct {
	ctrl *core.Controller

	treemap TreemapPanel
	help    HelpOverlay
	keys    KeyMap
	version string
	watch   bool

	err    error
	status string

	ctx     context.Context
	cancel  context.CancelFunc
	watchCh <-chan core.Event

	width  int
	height int
}

// NewApp creates a preview of the tree document at path. With watch set the
// document is reloaded whenever it changes on disk.
func NewApp(version, path string, opts render.Options, watch bool) App {
	ctx, cancel := context.WithCancel(context.Background())
	return App{
		ctrl:    core.NewController(path),
		treemap: NewTreemapPanel(render.NewChart(opts)),
		help:    NewHelpOverlay(version),
		keys:    DefaultKeyMap(),
		version: version,
		watch:   watch,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.load()}
	if a.watch {
		cmds = append(cmds, a.startWatch())
	}
	return tea.Batch(cmds...)
}

// load reads the document in the background
func (a App) load() tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		root, err := ctrl.Load()
		return treeLoadedMsg{root: root, err: err}
	}
}

func (a App) startWatch() tea.Cmd {
	ctrl, ctx := a.ctrl, a.ctx
	return func() tea.Msg {
		ch, err := ctrl.Watch(ctx)
		return watchStartedMsg{ch: ch, err: err}
	}
}

// listenForWatcherEvents creates a command that listens for reload events
func (a App) listenForWatcherEvents() tea.Cmd {
	if a.watchCh == nil {
		return nil
	}
	eventCh := a.watchCh
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil // Channel closed
		}
		return watchEventMsg{event: event}
	}
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case treeLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.treemap.SetData(msg.root)
		return a, nil

	case watchStartedMsg:
		if msg.err != nil {
			a.err = fmt.Errorf("watch: %w", msg.err)
			return a, nil
		}
		a.watchCh = msg.ch
		return a, a.listenForWatcherEvents()

	case watchEventMsg:
		switch e := msg.event.(type) {
		case core.TreeLoadedEvent:
			a.err = nil
			a.status = "reloaded: " + model.SummarizeChanges(e.Changes)
			a.treemap.SetData(e.Root)
		case core.FileRemovedEvent:
			a.status = "file removed, showing last version"
		case core.ErrorEvent:
			a.err = e.Err
		}
		return a, a.listenForWatcherEvents()

	case openedMsg:
		if msg.err != nil {
			a.err = fmt.Errorf("open %s: %w", msg.href, msg.err)
		} else {
			a.status = "opened " + msg.href
		}
		return a, nil
	}

	return a, nil
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay - any key closes it
	if a.help.IsVisible() {
		a.help.SetVisible(false)
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.cancel()
		a.ctrl.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.Toggle()
		return a, nil

	case key.Matches(msg, a.keys.Up):
		a.treemap.MoveToBlock(0, -1)
	case key.Matches(msg, a.keys.Down):
		a.treemap.MoveToBlock(0, 1)
	case key.Matches(msg, a.keys.Left):
		a.treemap.MoveToBlock(-1, 0)
	case key.Matches(msg, a.keys.Right):
		a.treemap.MoveToBlock(1, 0)
	case key.Matches(msg, a.keys.Top):
		a.treemap.SelectFirst()

	case key.Matches(msg, a.keys.Reload):
		a.status = ""
		return a, a.load()

	case key.Matches(msg, a.keys.Open):
		return a, a.openSelected()
	}

	return a, nil
}

// openSelected opens the selected wallet's explorer page
func (a App) openSelected() tea.Cmd {
	block := a.treemap.Selected()
	if block == nil {
		return nil
	}
	href := block.Leaf.Href
	if href == "" {
		logging.Debug.Printf("[TUI] no explorer link for %s", block.Key())
		return nil
	}
	return func() tea.Msg {
		logging.Debug.Printf("[TUI] opening %s", href)
		return openedMsg{href: href, err: opener(href)}
	}
}

// updateLayout calculates component sizes
func (a *App) updateLayout() {
	headerHeight := 1
	infoBarHeight := 1
	helpBarHeight := 1

	panelHeight := a.height - headerHeight - infoBarHeight - helpBarHeight
	if panelHeight < 1 {
		panelHeight = 1
	}

	a.treemap.SetSize(a.width, panelHeight)
	a.help.SetSize(a.width, a.height)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	if a.help.IsVisible() {
		return a.help.View()
	}

	var sections []string
	sections = append(sections, a.header())

	if a.err != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(ColorDanger).
			Padding(0, 1)
		sections = append(sections, errStyle.Render(fmt.Sprintf("Error: %v", a.err)))
	}

	sections = append(sections, a.treemap.View())
	sections = append(sections, a.infoBar())
	sections = append(sections, HelpBar(a.width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// header shows the document, totals and load state
func (a App) header() string {
	state := a.ctrl.State()
	sep := DimStyle.Render(" │ ")

	parts := []string{TitleStyle.Render("walletmap"), " ", StatsStyle.Render(filepath.Base(state.Path))}
	if state.Root != nil {
		parts = append(parts, sep, StatsStyle.Render(fmt.Sprintf("%d wallets", len(a.treemap.Blocks()))))
		parts = append(parts, sep, StatsStyle.Render("total "+FormatValue(state.Root.TotalValue())))
		if hidden := a.treemap.Hidden(); hidden > 0 {
			parts = append(parts, sep, DimStyle.Render(fmt.Sprintf("%d too small", hidden)))
		}
	}
	if t := FormatTime(state.LoadedAt); t != "" {
		parts = append(parts, sep, DimStyle.Render("loaded "+t))
	}
	if state.Watching {
		parts = append(parts, sep, DimStyle.Render("watching"))
	}
	if a.status != "" {
		parts = append(parts, sep, DimStyle.Render(a.status))
	}

	return HeaderStyle.Width(a.width).MaxHeight(1).Render(strings.Join(parts, ""))
}

// infoBar describes the selected wallet
func (a App) infoBar() string {
	block := a.treemap.Selected()
	if block == nil {
		return DimStyle.Render(" no wallet selected")
	}

	leaf := block.Leaf
	sep := DimStyle.Render(" │ ")
	chain := leaf.Chain
	if chain == "" {
		chain = "unknown chain"
	}

	parts := []string{
		" ",
		lipgloss.NewStyle().Foreground(ChainColor(leaf.Chain)).Render(chain),
		sep,
		StatsStyle.Render("0x" + leaf.Address),
		sep,
		StatsStyle.Render(FormatValue(leaf.Value)),
		sep,
	}
	switch {
	case leaf.Href == "":
		parts = append(parts, DimStyle.Render("no explorer"))
	case !leaf.KnownChain:
		parts = append(parts, DimStyle.Render(leaf.Href+" (fallback)"))
	default:
		parts = append(parts, DimStyle.Render(leaf.Href))
	}

	return lipgloss.NewStyle().MaxWidth(a.width).Render(strings.Join(parts, ""))
}
