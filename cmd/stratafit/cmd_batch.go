package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spboyer/stratafit/internal/batch"
	"github.com/spboyer/stratafit/internal/dataset"
	"github.com/spboyer/stratafit/internal/history"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/recommend"
	"github.com/spboyer/stratafit/internal/reporting"
	"github.com/spboyer/stratafit/internal/spinner"
	"github.com/spf13/cobra"
)

func newBatchCommand() *cobra.Command {
	var (
		selFlags  selectionFlags
		workers   int
		rangeSpec string
		format    string
		output    string
		junitPath string
		verbose   bool
		record    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <contexts.csv|contexts.yaml>",
		Short: "Recommend frameworks for many startup contexts at once",
		Long: `Recommend frameworks for many startup contexts at once.

The input is a CSV file with a header row (name, stage, industry, team_size,
challenges separated by ';', crisis, fundraising, timeline_days and any metric
column) or a YAML file holding a list or a stream of contexts. Contexts are
processed concurrently against one catalog snapshot and reported in input
order.

Exit code 1 means at least one context got no recommendation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			if format != formatText && format != formatJSON {
				return fmt.Errorf("unknown format %q; use text or json", format)
			}

			entries, err := loadEntries(args[0], rangeSpec)
			if err != nil {
				return err
			}
			opts, err := selFlags.options(cmd, cfg)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(catalogPath(cmd, cfg))
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}
			runner := batch.NewRunner(recommend.NewEngine(slog.Default()), workers, slog.Default())
			stopProgress := func() {}
			switch {
			case verbose:
				runner.OnProgress(func(ev batch.ProgressEvent) {
					if ev.EventType == batch.EventItemComplete {
						fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: %s\n", ev.Num, ev.Total, ev.Name, ev.Status)
					}
				})
			case isTerminal(cmd.ErrOrStderr()):
				spin := spinner.Start(cmd.ErrOrStderr(), fmt.Sprintf("Selecting for %d contexts", len(entries)))
				stopProgress = spin.Stop
				runner.OnProgress(func(ev batch.ProgressEvent) {
					if ev.EventType == batch.EventItemComplete {
						spin.Update(fmt.Sprintf("Selecting [%d/%d] %s", ev.Num, ev.Total, truncate(ev.Name, 30)))
					}
				})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			started := time.Now()
			items, err := runner.Run(ctx, snap, entries, opts)
			stopProgress()
			if err != nil {
				return err
			}
			stats := batch.Summarize(items)

			if junitPath != "" {
				if err := writeJUnit(junitPath, args[0], snap.Meta().Version, items, started); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "JUnit report written to: %s\n", junitPath)
			}

			store, err := openHistory(cfg, record)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close() //nolint:errcheck
				if err := recordBatch(cmd, store, snap.Meta().Version, entries, items, stats); err != nil {
					return err
				}
			}

			var content string
			if format == formatJSON {
				data, err := json.MarshalIndent(struct {
					Stats batch.Stats  `json:"stats"`
					Items []batch.Item `json:"items"`
				}{stats, items}, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding batch: %w", err)
				}
				content = string(data) + "\n"
			} else {
				content = formatBatchText(items, stats)
			}
			if err := writeOutput(cmd, output, content); err != nil {
				return err
			}

			if missed := stats.Total - stats.OK; missed > 0 {
				return &NoResultsError{Message: fmt.Sprintf("%d of %d contexts got no recommendation", missed, stats.Total)}
			}
			return nil
		},
	}

	selFlags.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", batch.DefaultWorkers, "Number of concurrent workers (default: batch.workers)")
	cmd.Flags().StringVar(&rangeSpec, "range", "", "Only process rows start-end (1-based, inclusive), e.g. 10-20")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write results to a file instead of stdout")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Also write a JUnit XML report to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print progress as contexts complete")
	cmd.Flags().BoolVar(&record, "record", false, "Record the batch in the history database (default: history.enabled)")

	return cmd
}

func loadEntries(path, rangeSpec string) ([]dataset.Entry, error) {
	if rangeSpec == "" {
		return dataset.Load(path)
	}
	start, end, err := parseRange(rangeSpec)
	if err != nil {
		return nil, err
	}
	return dataset.LoadRange(path, start, end)
}

// parseRange parses "start-end" or a single row number.
func parseRange(spec string) (int, int, error) {
	lo, hi, found := strings.Cut(spec, "-")
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("--range %q: start is not a number", spec)
	}
	if !found {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("--range %q: end is not a number", spec)
	}
	return start, end, nil
}

func writeJUnit(path, input, catalogVersion string, items []batch.Item, at time.Time) error {
	cases := make([]reporting.Case, len(items))
	for i, it := range items {
		cases[i] = reporting.Case{Name: it.Name, Result: it.Result, Duration: it.Duration}
	}
	suite := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating JUnit directory: %w", err)
		}
	}
	if err := reporting.WriteJUnitXML(reporting.ConvertToJUnit(suite, catalogVersion, cases, at), path); err != nil {
		return fmt.Errorf("writing JUnit report: %w", err)
	}
	return nil
}

func recordBatch(cmd *cobra.Command, store *history.Store, catalogVersion string, entries []dataset.Entry, items []batch.Item, stats batch.Stats) error {
	contexts := make([]models.StartupContext, len(entries))
	for i, e := range entries {
		contexts[i] = e.Context
	}
	status := string(models.StatusOK)
	if stats.OK < stats.Total {
		status = "partial"
	}
	run, err := history.NewRun(history.KindBatch, "cli", catalogVersion, status, "", contexts, items)
	if err != nil {
		return fmt.Errorf("recording batch: %w", err)
	}
	if err := store.Record(cmd.Context(), run); err != nil {
		return fmt.Errorf("recording batch: %w", err)
	}
	return nil
}

func formatBatchText(items []batch.Item, stats batch.Stats) string {
	var b strings.Builder
	rows := make([][]string, len(items))
	for i, it := range items {
		top, score := "-", "-"
		if len(it.Result.Frameworks) > 0 {
			top = it.Result.Frameworks[0].ID
			score = fmt.Sprintf("%.3f", it.Result.Frameworks[0].Score)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncate(it.Name, 30),
			string(it.Result.Status),
			strconv.Itoa(len(it.Result.Frameworks)),
			top,
			score,
		}
	}
	printTable(&b, []string{"#", "CONTEXT", "STATUS", "FRAMEWORKS", "TOP", "SCORE"}, rows)
	fmt.Fprintf(&b, "\n%d contexts: %d ok, %d no eligible framework, %d invalid", stats.Total, stats.OK, stats.NoEligible, stats.Invalid)
	if stats.EmptyCatalog > 0 {
		fmt.Fprintf(&b, ", %d empty catalog", stats.EmptyCatalog)
	}
	b.WriteString("\n")
	return b.String()
}
