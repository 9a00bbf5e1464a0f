package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/countup/internal/counter"
	"github.com/verte-zerg/countup/internal/page"
)

const scrollPage = `<html><head><title>Stats</title></head><body>
<p>one</p><p>two</p><p>three</p><p>four</p><p>five</p>
<div><span id="total" data-counter data-target="42">0</span></div>
</body></html>`

func newTestModel(t *testing.T) (*Model, *Observer, *page.Element) {
	t.Helper()
	doc, err := page.Parse(strings.NewReader(scrollPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	obs := NewObserver()
	counters, err := page.InitAll(doc, page.InitOptions{}, counter.WithObserver(obs))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(counters) != 1 {
		t.Fatalf("expected 1 counter, got %d", len(counters))
	}
	el := counters[0].Element().(*page.Element)
	return NewModel(context.Background(), doc, counters, obs, nil), obs, el
}

func TestModelNotifiesObserverOnResizeAndScroll(t *testing.T) {
	m, obs, el := newTestModel(t)
	sub, err := obs.Observe(el, 0.1)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	defer sub.Close()

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 6})
	if m.viewport.Height != 4 {
		t.Fatalf("expected viewport height 4, got %d", m.viewport.Height)
	}
	if e := nextEntry(t, sub); e.Ratio != 0 {
		t.Fatalf("expected counter below the fold, got ratio %v", e.Ratio)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	if e := nextEntry(t, sub); e.Ratio <= 0 {
		t.Fatalf("expected counter in view after scrolling, got ratio %v", e.Ratio)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	if e := nextEntry(t, sub); e.Ratio != 0 {
		t.Fatalf("expected counter out of view at top, got ratio %v", e.Ratio)
	}
}

func TestModelViewShowsTitleAndProgress(t *testing.T) {
	m, _, el := newTestModel(t)
	if m.View() != "" {
		t.Fatalf("expected empty view before the first resize")
	}
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	view := m.View()
	for _, want := range []string{"Stats", "Counters 0/1", "one"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	el.SetText("42")
	m.Update(ElementChangedMsg{Key: el.Key()})
	m.Update(redrawMsg{})
	if !strings.Contains(m.View(), "42") {
		t.Fatalf("view must reflect element text:\n%s", m.View())
	}
}

func TestModelCoalescesElementChanges(t *testing.T) {
	m, _, el := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})

	el.SetText("7")
	_, first := m.Update(ElementChangedMsg{Key: el.Key()})
	if first == nil {
		t.Fatalf("expected a redraw to be scheduled")
	}
	el.SetText("8")
	_, second := m.Update(ElementChangedMsg{Key: el.Key()})
	if second != nil {
		t.Fatalf("expected pending redraw to absorb later changes")
	}
	if strings.Contains(m.View(), "8") {
		t.Fatalf("layout must wait for the scheduled redraw:\n%s", m.View())
	}

	m.Update(redrawMsg{})
	if !strings.Contains(m.View(), "8") {
		t.Fatalf("redraw must show the latest text:\n%s", m.View())
	}
	_, next := m.Update(ElementChangedMsg{Key: el.Key()})
	if next == nil {
		t.Fatalf("expected a new redraw after the previous one ran")
	}
}

func TestModelCountsFinishedCounters(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})

	m.Update(counterDoneMsg{index: 0, err: context.Canceled})
	if m.done != 0 {
		t.Fatalf("cancelled counters must not count as done")
	}
	m.Update(counterDoneMsg{index: 0})
	if m.done != 1 {
		t.Fatalf("expected 1 done counter, got %d", m.done)
	}
	if !strings.Contains(m.renderFooter(), "Counters 1/1") {
		t.Fatalf("unexpected footer: %s", m.renderFooter())
	}
}

func TestModelQuitCancelsCounters(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if !errors.Is(m.ctx.Err(), context.Canceled) {
		t.Fatalf("expected model context to be cancelled")
	}
}
