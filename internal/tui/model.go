// Package tui provides the Bubble Tea page viewer.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/countup/internal/counter"
	"github.com/verte-zerg/countup/internal/page"
	"github.com/verte-zerg/countup/internal/stats"
	"github.com/verte-zerg/countup/internal/store"
)

// ElementChangedMsg tells the model that an element's text changed.
type ElementChangedMsg struct {
	Key string
}

// redrawInterval bounds how often element changes trigger a relayout.
const redrawInterval = time.Second / 60

type redrawMsg struct{}

type counterDoneMsg struct {
	index int
	err   error
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.PageDown, k.Top, k.Bottom, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.PageUp, k.PageDown}, {k.Top, k.Bottom, k.Quit}}
}

var defaultKeys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea page viewer.
type Model struct {
	doc      *page.Document
	counters []*counter.Counter
	observer *Observer
	store    *store.Store

	ctx    context.Context
	cancel context.CancelFunc

	viewport viewport.Model
	keys     keyMap
	help     help.Model
	layout   page.Layout

	width  int
	height int
	ready  bool
	dirty  bool

	done   int
	errMsg string
}

// NewModel constructs a viewer for doc. The store may be nil to skip
// recording finished runs.
func NewModel(ctx context.Context, doc *page.Document, counters []*counter.Counter, observer *Observer, st *store.Store) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		doc:      doc,
		counters: counters,
		observer: observer,
		store:    st,
		ctx:      ctx,
		cancel:   cancel,
		viewport: viewport.New(0, 0),
		keys:     defaultKeys,
		help:     help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.counters))
	for i, c := range m.counters {
		cmds = append(cmds, runCounter(m.ctx, i, c))
	}
	return tea.Batch(cmds...)
}

func runCounter(ctx context.Context, index int, c *counter.Counter) tea.Cmd {
	return func() tea.Msg {
		return counterDoneMsg{index: index, err: c.Run(ctx)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = maxInt(1, msg.Height-2)
		m.ready = true
		m.relayout()
		return m, nil
	case ElementChangedMsg:
		if m.dirty {
			return m, nil
		}
		m.dirty = true
		return m, tea.Tick(redrawInterval, func(time.Time) tea.Msg { return redrawMsg{} })
	case redrawMsg:
		m.dirty = false
		if m.ready {
			m.relayout()
		}
		return m, nil
	case counterDoneMsg:
		m.handleDone(msg)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			m.notify()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			m.notify()
			return m, nil
		}
	}
	var cmd tea.Cmd
	offset := m.viewport.YOffset
	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.YOffset != offset {
		m.notify()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return ""
	}
	header := titleStyle.Render(truncate(m.title(), m.width))
	return strings.Join([]string{header, m.viewport.View(), m.renderFooter()}, "\n")
}

func (m *Model) title() string {
	if m.doc.Title != "" {
		return m.doc.Title
	}
	if m.doc.Path != "" {
		return m.doc.Path
	}
	return "countup"
}

func (m *Model) relayout() {
	m.layout = m.doc.Layout(m.width)
	m.viewport.SetContent(m.layout.Content())
	m.notify()
}

func (m *Model) notify() {
	if m.observer == nil || !m.ready {
		return
	}
	m.observer.Update(m.layout, m.viewport.YOffset, m.viewport.Height)
}

func (m *Model) renderFooter() string {
	progress := fmt.Sprintf("Counters %d/%d", m.done, len(m.counters))
	line := footerStyle.Render(progress) + "  " + m.help.View(m.keys)
	if m.errMsg != "" {
		line = errorStyle.Render(truncate(m.errMsg, m.width))
	}
	return line
}

func (m *Model) handleDone(msg counterDoneMsg) {
	if msg.err != nil {
		return
	}
	m.done++
	if m.store == nil || msg.index < 0 || msg.index >= len(m.counters) {
		return
	}
	c := m.counters[msg.index]
	report, ok := c.Report()
	if !ok {
		return
	}
	key := ""
	if el, ok := c.Element().(*page.Element); ok {
		key = el.Key()
	}
	run := stats.FromReport(m.doc.Path, key, report)
	if _, err := m.store.InsertRun(context.Background(), run); err != nil {
		m.errMsg = fmt.Sprintf("failed to save run: %v", err)
		logErrf("failed to save run: %v\n", err)
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
