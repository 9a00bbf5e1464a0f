package easing

import (
	"errors"
	"math"
	"testing"
)

func TestBoundariesAreExact(t *testing.T) {
	for _, k := range Kinds() {
		f := k.Func()
		if got := f(0); got != 0 {
			t.Fatalf("%s(0) = %v, want 0", k, got)
		}
		if got := f(1); got != 1 {
			t.Fatalf("%s(1) = %v, want 1", k, got)
		}
	}
}

func TestMidpoints(t *testing.T) {
	cases := []struct {
		kind Kind
		t    float64
		want float64
	}{
		{Linear, 0.25, 0.25},
		{EaseInQuad, 0.5, 0.25},
		{EaseOutQuad, 0.5, 0.75},
		{EaseInOutQuad, 0.25, 0.125},
		{EaseInOutQuad, 0.75, 0.875},
		{EaseInCubic, 0.5, 0.125},
		{EaseOutCubic, 0.5, 0.875},
		{EaseInOutCubic, 0.5, 0.5},
		{EaseInQuart, 0.5, 0.0625},
		{EaseOutQuart, 0.5, 0.9375},
		{EaseInOutQuart, 0.25, 0.03125},
		{EaseInQuint, 0.5, 0.03125},
		{EaseOutQuint, 0.5, 0.96875},
		{EaseInOutQuint, 0.75, 0.984375},
	}
	for _, tc := range cases {
		got := tc.kind.Func()(tc.t)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("%s(%v) = %v, want %v", tc.kind, tc.t, got, tc.want)
		}
	}
}

func TestInOutIsContinuousAtHalf(t *testing.T) {
	for _, k := range []Kind{EaseInOutQuad, EaseInOutCubic, EaseInOutQuart, EaseInOutQuint} {
		f := k.Func()
		below := f(0.5 - 1e-9)
		at := f(0.5)
		if math.Abs(at-below) > 1e-6 {
			t.Fatalf("%s jumps at 0.5: %v vs %v", k, below, at)
		}
	}
}

func TestMonotonicOnUnitInterval(t *testing.T) {
	for _, k := range Kinds() {
		f := k.Func()
		prev := f(0)
		for i := 1; i <= 100; i++ {
			v := f(float64(i) / 100)
			if v < prev {
				t.Fatalf("%s decreases at step %d: %v < %v", k, i, v, prev)
			}
			prev = v
		}
	}
}

func TestParse(t *testing.T) {
	k, err := Parse("easeInOutCubic")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k != EaseInOutCubic {
		t.Fatalf("unexpected kind %q", k)
	}
	if _, err := Parse("bounce"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	if _, err := Parse(""); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown for empty name, got %v", err)
	}
}

func TestKindsListsEveryCurve(t *testing.T) {
	if len(Kinds()) != len(funcs) {
		t.Fatalf("expected %d kinds, got %d", len(funcs), len(Kinds()))
	}
	if Default != EaseOutQuad {
		t.Fatalf("unexpected default %q", Default)
	}
}
