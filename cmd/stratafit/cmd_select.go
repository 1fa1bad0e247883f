package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spboyer/stratafit/internal/history"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/recommend"
	"github.com/spboyer/stratafit/internal/reporting"
	"github.com/spf13/cobra"
)

// Output formats shared by select and journey.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

func newSelectCommand() *cobra.Command {
	var (
		ctxFlags contextFlags
		selFlags selectionFlags
		format   string
		output   string
		record   bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Recommend frameworks for one startup context",
		Long: `Recommend frameworks for one startup context.

The context comes from --file, from flags, or from an interactive form (-i).
Flags override values read from the file. Selection options default to
.stratafit.yaml and can be overridden per run.

Exit code 0 means at least one framework was recommended, 1 means none
applies, and 2 means the input or catalog could not be used.`,
		Example: `  stratafit select --stage seed --industry saas --team-size 8 --challenge competition
  stratafit select -f acme.yaml --metric runway_months=5 --format markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			raw, err := ctxFlags.resolve(cmd)
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

			res := recommend.NewEngine(slog.Default()).Select(snap, raw, opts)

			content, err := renderSelection(res, format)
			if err != nil {
				return err
			}

			store, err := openHistory(cfg, record)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close() //nolint:errcheck
				run, err := history.FromSelection("cli", snap.Meta().Version, raw, res)
				if err == nil {
					err = store.Record(cmd.Context(), run)
				}
				if err != nil {
					return fmt.Errorf("recording run: %w", err)
				}
				slog.Debug("selection recorded", "id", run.ID)
			}

			if err := writeOutput(cmd, output, content); err != nil {
				return err
			}
			return resultError(res.Status, res.Message)
		},
	}

	ctxFlags.register(cmd)
	selFlags.register(cmd)
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json, markdown, html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in the history database (default: history.enabled)")

	return cmd
}

func renderSelection(res *models.SelectionResult, format string) (string, error) {
	switch format {
	case formatText, "":
		return reporting.FormatSummary(res), nil
	case formatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding result: %w", err)
		}
		return string(data) + "\n", nil
	case formatMarkdown:
		return reporting.Markdown(res, reporting.MarkdownOptions{Date: time.Now()}), nil
	case formatHTML:
		return reporting.HTML(reporting.Markdown(res, reporting.MarkdownOptions{Date: time.Now()}))
	default:
		return "", fmt.Errorf("unknown format %q; use text, json, markdown or html", format)
	}
}
