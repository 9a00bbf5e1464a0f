package stats

import (
	"context"
	"io"
	"time"

	"github.com/verte-zerg/countup/internal/counter"
	"github.com/verte-zerg/countup/internal/model"
	"github.com/verte-zerg/countup/internal/store"
)

// History contains the runs selected for a history report.
type History struct {
	Runs    []model.RunStats
	Summary Summary
}

// BuildHistory loads the runs matching cfg.
func BuildHistory(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (History, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return History{}, err
	}
	return History{Runs: runs, Summary: Summarize(runs)}, nil
}

// RenderReport prints the summary followed by the run table.
func RenderReport(w io.Writer, h History, now time.Time) error {
	if err := RenderSummary(w, h.Runs); err != nil {
		return err
	}
	if len(h.Runs) == 0 {
		return nil
	}
	return RenderHistory(w, h.Runs, now)
}

// FromReport converts a finished counter report into a history record.
func FromReport(page, element string, r counter.Report) model.RunStats {
	return model.RunStats{
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		Page:       page,
		Element:    element,
		Target:     r.Config.Target,
		Final:      r.Final,
		Easing:     string(r.Config.Easing),
		DurationMs: r.Config.Duration.Milliseconds(),
		DelayMs:    r.Config.Delay.Milliseconds(),
		Frames:     r.Frames,
	}
}
