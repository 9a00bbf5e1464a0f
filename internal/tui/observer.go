package tui

import (
	"sync"

	"github.com/verte-zerg/countup/internal/counter"
	"github.com/verte-zerg/countup/internal/page"
)

// Observer reports how much of each subscribed page element is inside the
// viewport. It implements counter.Observer.
type Observer struct {
	mu     sync.Mutex
	subs   map[*subscription]struct{}
	layout page.Layout
	top    int
	height int
	known  bool
}

// NewObserver returns an observer with no viewport geometry yet.
func NewObserver() *Observer {
	return &Observer{subs: map[*subscription]struct{}{}}
}

// Observe implements counter.Observer. Only page elements can be observed.
func (o *Observer) Observe(el counter.Element, _ float64) (counter.Subscription, error) {
	pel, ok := el.(*page.Element)
	if !ok {
		return nil, counter.ErrObserveUnsupported
	}
	sub := &subscription{
		obs:  o,
		el:   pel,
		ch:   make(chan counter.Entry, 1),
		last: -1,
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs[sub] = struct{}{}
	if o.known {
		sub.deliver(o.ratio(pel))
	}
	return sub, nil
}

// Update records the current layout and viewport window and notifies every
// subscription whose ratio changed.
func (o *Observer) Update(layout page.Layout, top, height int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.layout = layout
	o.top = top
	o.height = height
	o.known = true
	for sub := range o.subs {
		sub.deliver(o.ratio(sub.el))
	}
}

// Active returns the number of live subscriptions.
func (o *Observer) Active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

func (o *Observer) ratio(el *page.Element) float64 {
	span, ok := o.layout.Span(el)
	if !ok {
		return 0
	}
	return span.Ratio(o.top, o.height)
}

func (o *Observer) remove(sub *subscription) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.subs, sub)
}

type subscription struct {
	obs  *Observer
	el   *page.Element
	ch   chan counter.Entry
	last float64
	once sync.Once
}

func (s *subscription) C() <-chan counter.Entry {
	return s.ch
}

func (s *subscription) Close() {
	s.once.Do(func() { s.obs.remove(s) })
}

// deliver keeps only the latest entry in the channel. Callers hold obs.mu.
func (s *subscription) deliver(ratio float64) {
	if ratio == s.last {
		return
	}
	s.last = ratio
	entry := counter.Entry{Ratio: ratio}
	select {
	case s.ch <- entry:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- entry:
	default:
	}
}
