// Package easing provides named easing curves for counter animations.
package easing

import (
	"errors"
	"fmt"
)

// Func maps normalized time progress to normalized animation progress.
type Func func(t float64) float64

// Kind names an easing curve.
type Kind string

// Supported easing curves.
const (
	Linear         Kind = "linear"
	EaseInQuad     Kind = "easeInQuad"
	EaseOutQuad    Kind = "easeOutQuad"
	EaseInOutQuad  Kind = "easeInOutQuad"
	EaseInCubic    Kind = "easeInCubic"
	EaseOutCubic   Kind = "easeOutCubic"
	EaseInOutCubic Kind = "easeInOutCubic"
	EaseInQuart    Kind = "easeInQuart"
	EaseOutQuart   Kind = "easeOutQuart"
	EaseInOutQuart Kind = "easeInOutQuart"
	EaseInQuint    Kind = "easeInQuint"
	EaseOutQuint   Kind = "easeOutQuint"
	EaseInOutQuint Kind = "easeInOutQuint"
)

// Default is used when no easing is configured.
const Default = EaseOutQuad

// ErrUnknown is returned for easing names that are not registered.
var ErrUnknown = errors.New("unknown easing")

var order = []Kind{
	Linear,
	EaseInQuad, EaseOutQuad, EaseInOutQuad,
	EaseInCubic, EaseOutCubic, EaseInOutCubic,
	EaseInQuart, EaseOutQuart, EaseInOutQuart,
	EaseInQuint, EaseOutQuint, EaseInOutQuint,
}

var funcs = map[Kind]Func{
	Linear:         func(t float64) float64 { return t },
	EaseInQuad:     func(t float64) float64 { return t * t },
	EaseOutQuad:    func(t float64) float64 { return t * (2 - t) },
	EaseInOutQuad:  inOut(2),
	EaseInCubic:    in(3),
	EaseOutCubic:   out(3),
	EaseInOutCubic: inOut(3),
	EaseInQuart:    in(4),
	EaseOutQuart:   out(4),
	EaseInOutQuart: inOut(4),
	EaseInQuint:    in(5),
	EaseOutQuint:   out(5),
	EaseInOutQuint: inOut(5),
}

// Kinds returns all supported easing names in a stable order.
func Kinds() []Kind {
	return append([]Kind(nil), order...)
}

// Parse validates an easing name.
func Parse(name string) (Kind, error) {
	k := Kind(name)
	if _, ok := funcs[k]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return k, nil
}

// Func returns the curve for k. Unknown kinds fall back to linear; use Parse
// to reject them up front.
func (k Kind) Func() Func {
	if f, ok := funcs[k]; ok {
		return f
	}
	return funcs[Linear]
}

func in(n int) Func {
	return func(t float64) float64 { return pow(t, n) }
}

func out(n int) Func {
	return func(t float64) float64 { return 1 - pow(1-t, n) }
}

// inOut blends the in and out halves at t=0.5.
func inOut(n int) Func {
	scale := float64(int(1) << (n - 1))
	return func(t float64) float64 {
		if t < 0.5 {
			return scale * pow(t, n)
		}
		return 1 - scale*pow(1-t, n)
	}
}

// pow multiplies in a loop so that 0 and 1 stay exact.
func pow(x float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= x
	}
	return r
}
