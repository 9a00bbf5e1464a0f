package counter

import (
	"sync"
	"time"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	timers  chan *fakeTimer
	tickers chan *fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{
		now:     now,
		timers:  make(chan *fakeTimer, 4),
		tickers: make(chan *fakeTicker, 4),
	}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTimer(d time.Duration) Timer {
	t := &fakeTimer{d: d, c: make(chan time.Time, 1)}
	f.timers <- t
	return t
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{d: d, c: make(chan time.Time), stopped: make(chan struct{})}
	f.tickers <- t
	return t
}

type fakeTimer struct {
	d time.Duration
	c chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }
func (t *fakeTimer) Stop() bool          { return true }

type fakeTicker struct {
	d       time.Duration
	c       chan time.Time
	once    sync.Once
	stopped chan struct{}
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

type fakeElement struct {
	writes chan string
}

func newFakeElement() *fakeElement {
	return &fakeElement{writes: make(chan string, 64)}
}

func (e *fakeElement) SetText(text string) {
	e.writes <- text
}

type fakeObserver struct {
	subs chan *fakeSub
	err  error
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{subs: make(chan *fakeSub, 1)}
}

func (o *fakeObserver) Observe(_ Element, _ float64) (Subscription, error) {
	if o.err != nil {
		return nil, o.err
	}
	s := &fakeSub{ch: make(chan Entry), closed: make(chan struct{})}
	o.subs <- s
	return s, nil
}

type fakeSub struct {
	ch     chan Entry
	closes int
	mu     sync.Mutex
	closed chan struct{}
}

func (s *fakeSub) C() <-chan Entry { return s.ch }

func (s *fakeSub) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.closes == 1 {
		close(s.closed)
	}
}

func (s *fakeSub) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}
