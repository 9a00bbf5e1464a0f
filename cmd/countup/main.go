// Package main provides the CLI entrypoint for countup.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/countup/internal/config"
	"github.com/verte-zerg/countup/internal/counter"
	"github.com/verte-zerg/countup/internal/easing"
	"github.com/verte-zerg/countup/internal/model"
	"github.com/verte-zerg/countup/internal/page"
	"github.com/verte-zerg/countup/internal/stats"
	"github.com/verte-zerg/countup/internal/store"
	"github.com/verte-zerg/countup/internal/tui"
)

const (
	defaultFPS         = 60
	defaultHistoryLast = 20
)

var (
	playSelector   string
	playEasing     string
	playThreshold  float64
	playFPS        int
	playPlain      bool
	playTrace      bool
	playHTML       bool
	playNoObserver bool
	playNoHistory  bool

	historyPage string
	historyLast int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "countup [page.html]",
		Short:         "Animated number counters for HTML pages in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runPlayCmd(cmd, args)
		},
	}
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newEasingsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play page.html",
		Short: "Animate the counters of a page as they scroll into view",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlayCmd,
	}
	addPlayFlags(cmd)
	return cmd
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&playSelector, "selector", page.DefaultSelector, "CSS selector for counter elements")
	cmd.Flags().StringVar(&playEasing, "easing", "", "easing for every counter (default: data-easing or easeOutQuad)")
	cmd.Flags().Float64Var(&playThreshold, "threshold", counter.DefaultThreshold, "visible fraction that starts a counter (0-1)")
	cmd.Flags().IntVar(&playFPS, "fps", defaultFPS, "frames per second")
	cmd.Flags().BoolVar(&playPlain, "plain", false, "run without the TUI and print final values")
	cmd.Flags().BoolVar(&playTrace, "trace", false, "in plain mode, print every write")
	cmd.Flags().BoolVar(&playHTML, "html", false, "in plain mode, print the final HTML document")
	cmd.Flags().BoolVar(&playNoObserver, "no-observer", false, "start counters without waiting for visibility")
	cmd.Flags().BoolVar(&playNoHistory, "no-history", false, "do not record finished runs")
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "selector", &playSelector, fileCfg.Play.Selector)
	applyStringConfig(cmd, "easing", &playEasing, fileCfg.Play.Easing)
	applyFloatConfig(cmd, "threshold", &playThreshold, fileCfg.Play.Threshold)
	applyIntConfig(cmd, "fps", &playFPS, fileCfg.Play.FPS)
	applyBoolConfig(cmd, "plain", &playPlain, fileCfg.Play.Plain)
	applyBoolConfig(cmd, "no-observer", &playNoObserver, fileCfg.Play.NoObserver)
	applyBoolConfig(cmd, "no-history", &playNoHistory, fileCfg.Play.NoHistory)

	cfg := model.PlayConfig{
		Page:       args[0],
		Selector:   playSelector,
		Easing:     playEasing,
		Threshold:  playThreshold,
		FPS:        playFPS,
		Plain:      playPlain || !term.IsTerminal(int(os.Stdout.Fd())),
		Trace:      playTrace,
		HTML:       playHTML,
		NoObserver: playNoObserver,
		NoHistory:  playNoHistory,
	}
	if err := validatePlayConfig(cfg); err != nil {
		return err
	}
	thresholdSet := cmd.Flags().Changed("threshold") || fileCfg.Play.Threshold != nil

	doc, err := page.Load(cfg.Page)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	if abs, err := filepath.Abs(cfg.Page); err == nil {
		doc.Path = abs
	}

	var st *store.Store
	if !cfg.NoHistory {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	initOpts := page.InitOptions{Selector: cfg.Selector}
	if cfg.Easing != "" {
		initOpts.Options.Easing = &cfg.Easing
	}
	if thresholdSet {
		initOpts.Options.Threshold = &cfg.Threshold
	}
	frame := time.Second / time.Duration(cfg.FPS)

	if cfg.Plain {
		counters, err := page.InitAll(doc, initOpts, counter.WithFrameInterval(frame))
		if err != nil {
			return err
		}
		return runPlain(ctx, cmd.OutOrStdout(), doc, counters, cfg, st)
	}

	observer := tui.NewObserver()
	var obs counter.Observer = observer
	if cfg.NoObserver {
		obs = nil
	}
	counters, err := page.InitAll(doc, initOpts, counter.WithObserver(obs), counter.WithFrameInterval(frame))
	if err != nil {
		return err
	}
	if len(counters) == 0 {
		logErrf("no elements match %q\n", cfg.Selector)
	}

	m := tui.NewModel(ctx, doc, counters, observer, st)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	doc.OnChange(func(el *page.Element) {
		program.Send(tui.ElementChangedMsg{Key: el.Key()})
	})
	if _, err := program.Run(); err != nil && !isInterrupt(err) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// runPlain animates every counter without a viewport, so each one takes the
// unconditional start path.
func runPlain(ctx context.Context, w io.Writer, doc *page.Document, counters []*counter.Counter, cfg model.PlayConfig, st *store.Store) error {
	started := time.Now()
	if cfg.Trace {
		var mu sync.Mutex
		doc.OnChange(func(el *page.Element) {
			mu.Lock()
			defer mu.Unlock()
			if _, err := fmt.Fprintf(w, "%6d %s %s\n", time.Since(started).Milliseconds(), el.Key(), el.Text()); err != nil {
				// Best-effort trace output.
				_ = err
			}
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			return c.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("counters interrupted: %w", err)
	}
	doc.OnChange(nil)

	if st != nil {
		runs := make([]model.RunStats, 0, len(counters))
		for _, c := range counters {
			report, ok := c.Report()
			if !ok {
				continue
			}
			key := ""
			if el, ok := c.Element().(*page.Element); ok {
				key = el.Key()
			}
			runs = append(runs, stats.FromReport(doc.Path, key, report))
		}
		if err := st.InsertRuns(context.Background(), runs); err != nil {
			logErrf("failed to save runs: %v\n", err)
		}
	}

	if cfg.HTML {
		if err := doc.WriteHTML(w); err != nil {
			return fmt.Errorf("failed to write html: %w", err)
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	for _, el := range doc.Elements() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", el.Label(), el.Text()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newEasingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "easings",
		Short: "List easing curves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, k := range easing.Kinds() {
				line := string(k)
				if k == easing.Default {
					line += " (default)"
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded counter runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyPage, "page", "", "page filter")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	cfg := model.HistoryConfig{Page: historyPage, Last: historyLast}
	if cfg.Page != "" {
		if abs, err := filepath.Abs(cfg.Page); err == nil {
			cfg.Page = abs
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	history, err := stats.BuildHistory(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return stats.RenderReport(cmd.OutOrStdout(), history, time.Now())
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# countup configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# selector = %q   # CSS selector for counter elements
# easing = %q           # Easing for every counter
# threshold = %.1f             # Visible fraction that starts a counter (0-1)
# fps = %d                     # Frames per second
# plain = false                # Run without the TUI
# no-observer = false          # Start counters without waiting for visibility
# no-history = false           # Do not record finished runs
`,
		page.DefaultSelector,
		easing.Default,
		counter.DefaultThreshold,
		defaultFPS,
	)
}

func validatePlayConfig(cfg model.PlayConfig) error {
	if strings.TrimSpace(cfg.Page) == "" {
		return fmt.Errorf("page path must not be empty")
	}
	if strings.TrimSpace(cfg.Selector) == "" {
		return fmt.Errorf("--selector must not be empty")
	}
	if cfg.Easing != "" {
		if _, err := easing.Parse(cfg.Easing); err != nil {
			return fmt.Errorf("--easing: %w (see: countup easings)", err)
		}
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return fmt.Errorf("--threshold must be between 0 and 1")
	}
	if cfg.FPS <= 0 || cfg.FPS > 1000 {
		return fmt.Errorf("--fps must be between 1 and 1000")
	}
	if (cfg.Trace || cfg.HTML) && !cfg.Plain {
		return fmt.Errorf("--trace and --html require --plain")
	}
	return nil
}

func isInterrupt(err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
