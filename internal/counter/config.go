package counter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/countup/internal/easing"
	"github.com/verte-zerg/countup/internal/numfmt"
)

// Defaults applied when neither an option nor a data attribute is set.
const (
	DefaultTarget    = 100.0
	DefaultDuration  = 1000 * time.Millisecond
	DefaultDelay     = time.Duration(0)
	DefaultDecimals  = 0
	DefaultThreshold = 0.1

	// MaxDecimals bounds the fractional digits a counter may render.
	MaxDecimals = 20
)

var (
	// ErrUnknownEasing reports an easing name that is not registered.
	ErrUnknownEasing = errors.New("unknown easing")
	// ErrInvalidOption reports an explicit option outside its allowed range.
	ErrInvalidOption = errors.New("invalid option")
)

// Config is the resolved, immutable configuration of one counter.
type Config struct {
	Target    float64
	Duration  time.Duration
	Delay     time.Duration
	Format    numfmt.Format
	Easing    easing.Kind
	Threshold float64
}

// Options are explicit construction options. A nil field is read from the
// element's data attributes, then from the package defaults.
type Options struct {
	Target    *float64
	Duration  *time.Duration
	Delay     *time.Duration
	Decimals  *int
	Prefix    *string
	Suffix    *string
	Separator *string
	Easing    *string
	Threshold *float64
}

// Attributes exposes the per-element data attributes, keyed without the
// "data-" prefix.
type Attributes interface {
	Data(key string) (string, bool)
}

// AttrMap is an Attributes backed by a plain map.
type AttrMap map[string]string

// Data implements Attributes.
func (m AttrMap) Data(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ResolveConfig merges explicit options, data attributes and defaults.
// Explicit options are validated strictly; malformed attributes fall back to
// the defaults. Unknown easing names are rejected from either source.
func ResolveConfig(attrs Attributes, opts Options) (Config, error) {
	if attrs == nil {
		attrs = AttrMap(nil)
	}
	cfg := Config{
		Target:    attrFloat(attrs, "target", DefaultTarget, finite),
		Duration:  attrMillis(attrs, "duration", DefaultDuration, positive),
		Delay:     attrMillis(attrs, "delay", DefaultDelay, nonNegative),
		Threshold: attrFloat(attrs, "threshold", DefaultThreshold, unit),
		Easing:    easing.Default,
		Format: numfmt.Format{
			Decimals:  int(attrFloat(attrs, "decimals", DefaultDecimals, decimalsRange)),
			Prefix:    attrString(attrs, "prefix"),
			Suffix:    attrString(attrs, "suffix"),
			Separator: attrString(attrs, "separator"),
		},
	}

	if name, ok := attrs.Data("easing"); ok && strings.TrimSpace(name) != "" {
		kind, err := easing.Parse(strings.TrimSpace(name))
		if err != nil {
			return Config{}, fmt.Errorf("%w: data-easing %q", ErrUnknownEasing, name)
		}
		cfg.Easing = kind
	}

	if opts.Target != nil {
		if !finite(*opts.Target) {
			return Config{}, fmt.Errorf("%w: target must be finite", ErrInvalidOption)
		}
		cfg.Target = *opts.Target
	}
	if opts.Duration != nil {
		if *opts.Duration <= 0 {
			return Config{}, fmt.Errorf("%w: duration must be > 0", ErrInvalidOption)
		}
		cfg.Duration = *opts.Duration
	}
	if opts.Delay != nil {
		if *opts.Delay < 0 {
			return Config{}, fmt.Errorf("%w: delay must be >= 0", ErrInvalidOption)
		}
		cfg.Delay = *opts.Delay
	}
	if opts.Decimals != nil {
		if *opts.Decimals < 0 || *opts.Decimals > MaxDecimals {
			return Config{}, fmt.Errorf("%w: decimals must be between 0 and %d", ErrInvalidOption, MaxDecimals)
		}
		cfg.Format.Decimals = *opts.Decimals
	}
	if opts.Prefix != nil {
		cfg.Format.Prefix = *opts.Prefix
	}
	if opts.Suffix != nil {
		cfg.Format.Suffix = *opts.Suffix
	}
	if opts.Separator != nil {
		cfg.Format.Separator = *opts.Separator
	}
	if opts.Easing != nil {
		kind, err := easing.Parse(*opts.Easing)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %q", ErrUnknownEasing, *opts.Easing)
		}
		cfg.Easing = kind
	}
	if opts.Threshold != nil {
		if !unit(*opts.Threshold) {
			return Config{}, fmt.Errorf("%w: threshold must be between 0 and 1", ErrInvalidOption)
		}
		cfg.Threshold = *opts.Threshold
	}
	return cfg, nil
}

func attrString(attrs Attributes, key string) string {
	v, _ := attrs.Data(key)
	return v
}

func attrFloat(attrs Attributes, key string, def float64, valid func(float64) bool) float64 {
	raw, ok := attrs.Data(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !valid(v) {
		return def
	}
	return v
}

// attrMillis reads a whole number of milliseconds; fractions are truncated.
func attrMillis(attrs Attributes, key string, def time.Duration, valid func(float64) bool) time.Duration {
	ms := math.Trunc(attrFloat(attrs, key, -1, finite))
	if !valid(ms) {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func nonNegative(v float64) bool {
	return finite(v) && v >= 0
}

func decimalsRange(v float64) bool {
	return nonNegative(v) && v <= MaxDecimals
}

func unit(v float64) bool {
	return finite(v) && v >= 0 && v <= 1
}
