package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spboyer/stratafit/internal/history"
	"github.com/spboyer/stratafit/internal/journey"
	"github.com/spboyer/stratafit/internal/recommend"
	"github.com/spboyer/stratafit/internal/reporting"
	"github.com/spf13/cobra"
)

func newJourneyCommand() *cobra.Command {
	var (
		ctxFlags contextFlags
		selFlags selectionFlags
		format   string
		output   string
		record   bool
	)

	cmd := &cobra.Command{
		Use:   "journey",
		Short: "Plan a phased framework journey for one startup context",
		Long: `Plan a phased framework journey for one startup context.

Runs a wide selection and places each framework in a phase by what it is for:
diagnostic frameworks first, prescriptive ones next, predictive and evaluative
ones later, and enterprise-grade frameworks last. A critical urgency (runway
under six months or --crisis) pulls more into the immediate phase.`,
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

			j := journey.Build(recommend.NewEngine(slog.Default()), snap, raw, opts)

			content, err := renderJourney(j, format)
			if err != nil {
				return err
			}

			store, err := openHistory(cfg, record)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close() //nolint:errcheck
				run, err := history.FromJourney("cli", snap.Meta().Version, raw, j)
				if err == nil {
					err = store.Record(cmd.Context(), run)
				}
				if err != nil {
					return fmt.Errorf("recording run: %w", err)
				}
			}

			if err := writeOutput(cmd, output, content); err != nil {
				return err
			}
			return resultError(j.Status, j.Message)
		},
	}

	ctxFlags.register(cmd)
	selFlags.register(cmd)
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json, markdown, html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the plan to a file instead of stdout")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in the history database (default: history.enabled)")

	return cmd
}

func renderJourney(j *journey.Journey, format string) (string, error) {
	switch format {
	case formatText, "":
		return formatJourneyText(j), nil
	case formatJSON:
		data, err := json.MarshalIndent(j, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding journey: %w", err)
		}
		return string(data) + "\n", nil
	case formatMarkdown:
		return reporting.JourneyMarkdown(j, reporting.MarkdownOptions{Date: time.Now()}), nil
	case formatHTML:
		return reporting.HTML(reporting.JourneyMarkdown(j, reporting.MarkdownOptions{Date: time.Now()}))
	default:
		return "", fmt.Errorf("unknown format %q; use text, json, markdown or html", format)
	}
}

func formatJourneyText(j *journey.Journey) string {
	var b strings.Builder
	b.WriteString("=== Framework Journey ===\n\n")
	if !j.Success || j.TotalFrameworks == 0 {
		fmt.Fprintf(&b, "Status:  %s %s\n", j.Status, reporting.InterpretStatus(j.Status))
		if j.Message != "" {
			fmt.Fprintf(&b, "Message: %s\n", j.Message)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Urgency:    %s\n", j.Urgency)
	fmt.Fprintf(&b, "Frameworks: %d over about %d days\n", j.TotalFrameworks, j.EstimatedDays)
	if len(j.CriticalPath) > 0 {
		fmt.Fprintf(&b, "Critical path: %s\n", strings.Join(j.CriticalPath, " -> "))
	}

	for _, p := range j.Phases {
		if len(p.Steps) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%s)\n", strings.ReplaceAll(string(p.Phase), "_", " "), p.Window)
		rows := make([][]string, len(p.Steps))
		for i, s := range p.Steps {
			rows[i] = []string{
				strconv.Itoa(s.Framework.Rank),
				truncate(s.Framework.Name, 40),
				string(s.Framework.Category),
				fmt.Sprintf("%.3f", s.Framework.Score),
				strconv.Itoa(s.EstimatedDays),
			}
		}
		printTable(&b, []string{"RANK", "FRAMEWORK", "CATEGORY", "SCORE", "DAYS"}, rows)
	}
	return b.String()
}
