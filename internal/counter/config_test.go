package counter

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/countup/internal/easing"
)

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := ResolveConfig(nil, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Target != DefaultTarget || cfg.Duration != DefaultDuration || cfg.Delay != 0 {
		t.Fatalf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.Format.Decimals != 0 || cfg.Format.Prefix != "" || cfg.Format.Suffix != "" || cfg.Format.Separator != "" {
		t.Fatalf("unexpected format defaults: %+v", cfg.Format)
	}
	if cfg.Easing != easing.EaseOutQuad || cfg.Threshold != 0.1 {
		t.Fatalf("unexpected easing/threshold defaults: %q %v", cfg.Easing, cfg.Threshold)
	}
}

func TestResolveConfigReadsAttributes(t *testing.T) {
	attrs := AttrMap{
		"target":    "1234.5",
		"duration":  "2500",
		"delay":     "300",
		"decimals":  "2",
		"prefix":    "$",
		"suffix":    "k",
		"separator": ",",
		"easing":    "easeInCubic",
		"threshold": "0.5",
	}
	cfg, err := ResolveConfig(attrs, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Target != 1234.5 || cfg.Duration != 2500*time.Millisecond || cfg.Delay != 300*time.Millisecond {
		t.Fatalf("unexpected numbers: %+v", cfg)
	}
	if cfg.Format.Decimals != 2 || cfg.Format.Prefix != "$" || cfg.Format.Suffix != "k" || cfg.Format.Separator != "," {
		t.Fatalf("unexpected format: %+v", cfg.Format)
	}
	if cfg.Easing != easing.EaseInCubic || cfg.Threshold != 0.5 {
		t.Fatalf("unexpected easing/threshold: %q %v", cfg.Easing, cfg.Threshold)
	}
}

func TestResolveConfigKeepsZeroTarget(t *testing.T) {
	cfg, err := ResolveConfig(AttrMap{"target": "0"}, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Target != 0 {
		t.Fatalf("expected target 0, got %v", cfg.Target)
	}
}

func TestResolveConfigMalformedAttributesUseDefaults(t *testing.T) {
	attrs := AttrMap{
		"target":    "lots",
		"duration":  "-5",
		"delay":     "soon",
		"decimals":  "-1",
		"threshold": "2",
	}
	cfg, err := ResolveConfig(attrs, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Target != DefaultTarget || cfg.Duration != DefaultDuration || cfg.Delay != DefaultDelay {
		t.Fatalf("expected numeric defaults, got %+v", cfg)
	}
	if cfg.Format.Decimals != DefaultDecimals || cfg.Threshold != DefaultThreshold {
		t.Fatalf("expected decimals/threshold defaults, got %+v", cfg)
	}

	cfg, err = ResolveConfig(AttrMap{"duration": "1500.9", "decimals": "3.7", "target": " 42 "}, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Duration != 1500*time.Millisecond || cfg.Format.Decimals != 3 || cfg.Target != 42 {
		t.Fatalf("expected truncated values, got %+v", cfg)
	}
}

func TestResolveConfigOptionsOverrideAttributes(t *testing.T) {
	attrs := AttrMap{"target": "10", "prefix": "a", "easing": "linear"}
	opts := Options{
		Target:    ptr(0.0),
		Prefix:    ptr(""),
		Easing:    ptr("easeOutQuint"),
		Duration:  ptr(3 * time.Second),
		Threshold: ptr(1.0),
	}
	cfg, err := ResolveConfig(attrs, opts)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Target != 0 || cfg.Format.Prefix != "" || cfg.Easing != easing.EaseOutQuint {
		t.Fatalf("options did not win: %+v", cfg)
	}
	if cfg.Duration != 3*time.Second || cfg.Threshold != 1 {
		t.Fatalf("unexpected duration/threshold: %+v", cfg)
	}
}

func TestResolveConfigRejectsUnknownEasing(t *testing.T) {
	if _, err := ResolveConfig(AttrMap{"easing": "elastic"}, Options{}); !errors.Is(err, ErrUnknownEasing) {
		t.Fatalf("expected ErrUnknownEasing from attribute, got %v", err)
	}
	if _, err := ResolveConfig(nil, Options{Easing: ptr("spring")}); !errors.Is(err, ErrUnknownEasing) {
		t.Fatalf("expected ErrUnknownEasing from option, got %v", err)
	}
}

func TestResolveConfigRejectsInvalidOptions(t *testing.T) {
	cases := []Options{
		{Duration: ptr(time.Duration(0))},
		{Delay: ptr(-time.Millisecond)},
		{Decimals: ptr(-1)},
		{Decimals: ptr(MaxDecimals + 1)},
		{Threshold: ptr(1.5)},
	}
	for i, opts := range cases {
		if _, err := ResolveConfig(nil, opts); !errors.Is(err, ErrInvalidOption) {
			t.Fatalf("case %d: expected ErrInvalidOption, got %v", i, err)
		}
	}
}
