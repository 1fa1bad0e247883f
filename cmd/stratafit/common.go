package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/dataset"
	"github.com/spboyer/stratafit/internal/history"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/projectconfig"
	"github.com/spboyer/stratafit/internal/watch"
	"github.com/spboyer/stratafit/internal/wizard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loadProject loads .stratafit.yaml from the working directory or a parent.
func loadProject() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return cfg, nil
}

// catalogPath resolves the catalog location: the --catalog flag wins over
// catalog.dir. Empty means the built-in catalog.
func catalogPath(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) string {
	if f := cmd.Flag("catalog"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return cfg.Catalog.Dir
}

func loadSnapshot(path string) (*catalog.Snapshot, error) {
	snap, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	slog.Debug("catalog loaded", "source", snap.Meta().Source, "frameworks", snap.Len())
	return snap, nil
}

// servingCatalog loads the catalog into a store for the long-running
// servers. When watching is on, the returned watcher reloads the store on
// file changes; it is nil otherwise.
func servingCatalog(path string, watchDir bool, opts ...watch.Option) (*catalog.Store, *watch.Watcher, error) {
	snap, err := loadSnapshot(path)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewStore(snap)
	if !watchDir {
		return store, nil, nil
	}
	info, err := os.Stat(path)
	if path == "" || err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("--watch needs a catalog directory, got %q", displayPath(path))
	}
	return store, watch.New(store, path, opts...), nil
}

// openHistory opens the history store when recording is enabled by config
// or by --record. It returns nil when recording is off.
func openHistory(cfg *projectconfig.ProjectConfig, record bool) (*history.Store, error) {
	if !record && !cfg.HistoryEnabled() {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

// --- selection options ---

type selectionFlags struct {
	maxResults   int
	diversityCap int
	relaxStage   bool
	noDerive     bool
	weights      []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.maxResults, "max-results", 0, "Maximum frameworks to return (default: selection.max_results)")
	fs.IntVar(&f.diversityCap, "diversity-cap", 0, "Maximum frameworks per category (default: selection.diversity_cap)")
	fs.BoolVar(&f.relaxStage, "relax-stage", false, "Skip the stage-window constraint; stage fit only affects the score")
	fs.BoolVar(&f.noDerive, "no-derive", false, "Do not derive challenges from metrics")
	fs.StringArrayVar(&f.weights, "weight", nil, "Factor weight override as factor=value (can be repeated)")
}

// options overlays the flags the user set onto the configured defaults.
func (f *selectionFlags) options(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) (models.SelectionOptions, error) {
	opts := cfg.SelectionOptions()
	flags := cmd.Flags()
	if flags.Changed("max-results") {
		opts.MaxResults = f.maxResults
	}
	if flags.Changed("diversity-cap") {
		opts.DiversityCap = f.diversityCap
	}
	if f.relaxStage {
		opts.RelaxStage = true
	}
	if f.noDerive {
		derive := false
		opts.DeriveChallenges = &derive
	}
	if len(f.weights) > 0 {
		overrides, err := parseAssignments(f.weights)
		if err != nil {
			return opts, fmt.Errorf("--weight: %w", err)
		}
		// flags refine the configured weights rather than replacing them
		merged := make(map[string]float64, len(opts.Weights)+len(overrides))
		for k, v := range opts.Weights {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		opts.Weights = merged
	}
	return opts, nil
}

// --- startup context ---

type contextFlags struct {
	file        string
	name        string
	stage       string
	industry    string
	teamSize    int
	challenges  []string
	crisis      bool
	fundraising bool
	timeline    int
	metrics     []string
	interactive bool
}

func (f *contextFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "YAML file holding one startup context")
	fs.StringVar(&f.name, "name", "", "Company name")
	fs.StringVar(&f.stage, "stage", "", "Company stage (e.g. seed, series_a, traction)")
	fs.StringVar(&f.industry, "industry", "", "Industry (e.g. saas, fintech)")
	fs.IntVar(&f.teamSize, "team-size", 0, "Number of people on the team")
	fs.StringArrayVar(&f.challenges, "challenge", nil, "Challenge to address (can be repeated)")
	fs.BoolVar(&f.crisis, "crisis", false, "The company is in crisis")
	fs.BoolVar(&f.fundraising, "fundraising", false, "The company is raising money now")
	fs.IntVar(&f.timeline, "timeline", 0, "Days until results are needed")
	fs.StringArrayVar(&f.metrics, "metric", nil, "Metric as name=value, e.g. runway_months=9 (can be repeated)")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "Fill in the context with an interactive form")
}

// resolve builds the startup context from --file, then flags, then the
// interactive form when requested.
func (f *contextFlags) resolve(cmd *cobra.Command) (models.StartupContext, error) {
	var c models.StartupContext
	if f.file != "" {
		entries, err := dataset.Load(f.file)
		if err != nil {
			return c, err
		}
		if len(entries) != 1 {
			return c, fmt.Errorf("%s holds %d contexts; use 'stratafit batch' for more than one", f.file, len(entries))
		}
		c = entries[0].Context
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		c.Name = f.name
	}
	if flags.Changed("stage") {
		c.Stage = f.stage
	}
	if flags.Changed("industry") {
		c.Industry = f.industry
	}
	if flags.Changed("team-size") {
		c.TeamSize = f.teamSize
	}
	if len(f.challenges) > 0 {
		c.Challenges = append(c.Challenges, f.challenges...)
	}
	if f.crisis {
		c.Crisis = true
	}
	if f.fundraising {
		c.Fundraising = true
	}
	if flags.Changed("timeline") {
		days := f.timeline
		c.TimelineDays = &days
	}
	if len(f.metrics) > 0 {
		values, err := parseAssignments(f.metrics)
		if err != nil {
			return c, fmt.Errorf("--metric: %w", err)
		}
		for _, name := range sortedKeys(values) {
			if !c.Metrics.Set(models.MetricName(name), values[name]) {
				return c, fmt.Errorf("--metric: unknown metric %q", name)
			}
		}
	}

	if f.interactive {
		got, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), c)
		if err != nil {
			return c, err
		}
		c = *got
	}
	return c, nil
}

// parseAssignments parses name=value pairs with numeric values.
func parseAssignments(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%q is not name=value", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", name, raw)
		}
		out[name] = v
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- output ---

// writeOutput writes content to path, or to the command's stdout when path
// is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Output written to: %s\n", path)
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// truncate shortens s to maxLen display columns, adding an ellipsis.
func truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	return runewidth.Truncate(s, maxLen, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// printTable writes rows under a header with columns padded to the widest
// cell.
func printTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(padRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	line(header)
	sep := make([]string, len(header))
	for i := range header {
		sep[i] = strings.Repeat("-", widths[i])
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

// resultError maps a selection outcome onto the CLI's exit codes: invalid
// input is an error, an empty shortlist is NoResultsError.
func resultError(status models.SelectionStatus, message string) error {
	switch status {
	case models.StatusOK:
		return nil
	case models.StatusInvalidInput:
		return fmt.Errorf("invalid context: %s", message)
	default:
		return &NoResultsError{Message: message}
	}
}
