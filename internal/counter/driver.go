package counter

import (
	"time"

	"github.com/verte-zerg/countup/internal/easing"
	"github.com/verte-zerg/countup/internal/numfmt"
)

// Driver is the animation state of one counter. It is not safe for
// concurrent use; a Counter owns exactly one.
type Driver struct {
	startValue float64
	target     float64
	duration   time.Duration
	ease       easing.Func
	format     numfmt.Format

	startTime time.Time
	running   bool
}

// NewDriver builds an idle driver that animates from 0 to cfg.Target.
func NewDriver(cfg Config) *Driver {
	return &Driver{
		target:   cfg.Target,
		duration: cfg.Duration,
		ease:     cfg.Easing.Func(),
		format:   cfg.Format,
	}
}

// Start records now as the reference time. It reports false and leaves the
// state untouched when an animation is already running.
func (d *Driver) Start(now time.Time) bool {
	if d.running {
		return false
	}
	d.running = true
	d.startTime = now
	return true
}

// Running reports whether an animation is in progress.
func (d *Driver) Running() bool {
	return d.running
}

// StartTime returns the reference time of the current or last run.
func (d *Driver) StartTime() time.Time {
	return d.startTime
}

// Progress returns the clamped fraction of the duration elapsed at now.
func (d *Driver) Progress(now time.Time) float64 {
	if d.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(d.startTime)) / float64(d.duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Value returns the interpolated value at the given progress. Overshooting
// curves are passed through unclamped.
func (d *Driver) Value(progress float64) float64 {
	return d.startValue + (d.target-d.startValue)*d.ease(progress)
}

// Frame samples the animation at now. On the final frame it returns the
// formatted exact target, reports done and clears the running flag. Calling
// Frame on an idle driver reports done with no text.
func (d *Driver) Frame(now time.Time) (text string, done bool) {
	if !d.running {
		return "", true
	}
	progress := d.Progress(now)
	if progress >= 1 {
		d.running = false
		return d.Final(), true
	}
	return d.format.Format(d.Value(progress)), false
}

// Final returns the formatted exact target.
func (d *Driver) Final() string {
	return d.format.Format(d.target)
}
