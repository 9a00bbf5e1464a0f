// Package model defines shared data structures.
package model

import "time"

// PlayConfig defines settings for animating a page.
type PlayConfig struct {
	Page       string
	Selector   string
	Easing     string
	Threshold  float64
	FPS        int
	Plain      bool
	Trace      bool
	HTML       bool
	NoObserver bool
	NoHistory  bool
}

// HistoryConfig defines filters for the run history.
type HistoryConfig struct {
	Page string
	Last int
}

// RunStats captures one completed counter animation.
type RunStats struct {
	ID         int64
	StartedAt  time.Time
	EndedAt    time.Time
	Page       string
	Element    string
	Target     float64
	Final      string
	Easing     string
	DurationMs int64
	DelayMs    int64
	Frames     int
}
