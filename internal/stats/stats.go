// Package stats contains run metrics and history reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/countup/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics computes the measured frame rate and how late a run finished
// relative to its configured duration.
func RunMetrics(run model.RunStats) (fps float64, lagMs int64) {
	elapsed := run.EndedAt.Sub(run.StartedAt)
	if elapsed <= 0 {
		return 0, 0
	}
	fps = float64(run.Frames) / elapsed.Seconds()
	lagMs = elapsed.Milliseconds() - run.DurationMs
	return fps, lagMs
}

// Summary aggregates metrics over a set of runs.
type Summary struct {
	Runs     int
	AvgFPS   float64
	AvgLagMs float64
	MaxLagMs int64
}

// Summarize aggregates run metrics.
func Summarize(runs []model.RunStats) Summary {
	s := Summary{Runs: len(runs)}
	if len(runs) == 0 {
		return s
	}
	var totalFPS, totalLag float64
	for i, run := range runs {
		fps, lag := RunMetrics(run)
		totalFPS += fps
		totalLag += float64(lag)
		if i == 0 || lag > s.MaxLagMs {
			s.MaxLagMs = lag
		}
	}
	count := float64(len(runs))
	s.AvgFPS = totalFPS / count
	s.AvgLagMs = totalLag / count
	return s
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints aggregate metrics for runs.
func RenderSummary(w io.Writer, runs []model.RunStats) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	s := Summarize(runs)
	fpsSeries := make([]float64, len(runs))
	for i, run := range runs {
		fpsSeries[i], _ = RunMetrics(run)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", s.Runs),
		fmt.Sprintf("Avg FPS: %.1f", s.AvgFPS),
		fmt.Sprintf("Avg lag: %.1f ms", s.AvgLagMs),
		fmt.Sprintf("Max lag: %d ms", s.MaxLagMs),
		fmt.Sprintf("FPS trend: [%s]", Sparkline(fpsSeries)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
