// Package counter animates a numeric display from zero to a target value
// once its element becomes visible.
package counter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFrameInterval is the tick period of the frame loop.
const DefaultFrameInterval = time.Second / 60

// ErrObserveUnsupported is returned by observers that cannot watch an
// element. Counters fall back to starting after the delay.
var ErrObserveUnsupported = errors.New("visibility observation unsupported")

// Element is the display region a counter writes to.
type Element interface {
	SetText(text string)
}

// Entry is a visibility notification for an observed element.
type Entry struct {
	// Ratio is the fraction of the element's area inside the viewport.
	Ratio float64
}

// Observer delivers visibility changes of elements.
type Observer interface {
	Observe(el Element, threshold float64) (Subscription, error)
}

// Subscription is a live observation. Close releases it and must be called
// exactly once by the owner.
type Subscription interface {
	C() <-chan Entry
	Close()
}

// Report describes a finished animation.
type Report struct {
	Config    Config
	Final     string
	Frames    int
	StartedAt time.Time
	EndedAt   time.Time
}

// Option customizes a Counter.
type Option func(*Counter)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Counter) { c.clock = clock }
}

// WithObserver sets the visibility observer. Without one, counters start
// after their delay regardless of visibility.
func WithObserver(obs Observer) Option {
	return func(c *Counter) { c.observer = obs }
}

// WithFrameInterval sets the tick period of the frame loop.
func WithFrameInterval(d time.Duration) Option {
	return func(c *Counter) {
		if d > 0 {
			c.frame = d
		}
	}
}

// Counter is a visibility-triggered animated number.
type Counter struct {
	el       Element
	cfg      Config
	clock    Clock
	observer Observer
	frame    time.Duration

	driver  *Driver
	fired   atomic.Bool
	running atomic.Bool

	mu     sync.Mutex
	report Report
	ended  bool
}

// New resolves the configuration for el and builds an idle counter.
func New(el Element, attrs Attributes, opts Options, options ...Option) (*Counter, error) {
	if el == nil {
		return nil, fmt.Errorf("counter element is nil")
	}
	cfg, err := ResolveConfig(attrs, opts)
	if err != nil {
		return nil, err
	}
	c := &Counter{
		el:     el,
		cfg:    cfg,
		clock:  SystemClock(),
		frame:  DefaultFrameInterval,
		driver: NewDriver(cfg),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Config returns the resolved configuration.
func (c *Counter) Config() Config {
	return c.cfg
}

// Element returns the element the counter writes to.
func (c *Counter) Element() Element {
	return c.el
}

// Running reports whether the frame loop is active.
func (c *Counter) Running() bool {
	return c.running.Load()
}

// Report returns the result of the finished animation, if any.
func (c *Counter) Report() (Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report, c.ended
}

// Run waits for the element to become visible, waits out the delay and then
// animates. Only the first call does anything; later calls return nil. The
// only error is the context's.
func (c *Counter) Run(ctx context.Context) error {
	if !c.fired.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.waitVisible(ctx); err != nil {
		return err
	}
	if err := c.sleep(ctx, c.cfg.Delay); err != nil {
		return err
	}
	return c.Animate(ctx)
}

func (c *Counter) waitVisible(ctx context.Context) error {
	if c.observer == nil {
		return nil
	}
	sub, err := c.observer.Observe(c.el, c.cfg.Threshold)
	if err != nil || sub == nil {
		return nil
	}
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-sub.C():
			if !ok {
				return nil
			}
			if c.visible(entry) {
				return nil
			}
		}
	}
}

func (c *Counter) visible(e Entry) bool {
	return e.Ratio > 0 && e.Ratio >= c.cfg.Threshold
}

func (c *Counter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// Animate runs the frame loop to completion. It is a no-op while another
// call is running.
func (c *Counter) Animate(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}
	defer c.running.Store(false)

	ticker := c.clock.NewTicker(c.frame)
	defer ticker.Stop()

	startedAt := c.clock.Now()
	c.driver.Start(startedAt)
	frames := 0
	for {
		select {
		case <-ctx.Done():
			c.driver.running = false
			return ctx.Err()
		case now := <-ticker.C():
			text, done := c.driver.Frame(now)
			c.el.SetText(text)
			frames++
			if done {
				c.finish(startedAt, now, text, frames)
				return nil
			}
		}
	}
}

func (c *Counter) finish(startedAt, endedAt time.Time, final string, frames int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = Report{
		Config:    c.cfg,
		Final:     final,
		Frames:    frames,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}
	c.ended = true
}
