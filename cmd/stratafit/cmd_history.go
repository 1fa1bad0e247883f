package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spboyer/stratafit/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded selection runs",
		Long: `Browse recorded selection runs.

Runs are recorded when history.enabled is set in .stratafit.yaml or when a
command is given --record.`,
	}
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openHistoryForRead()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					shortID(r.ID),
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					string(r.Kind),
					r.Source,
					r.Status,
					orDash(r.Top),
				}
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "WHEN", "KIND", "SOURCE", "STATUS", "TOP"}, rows)

			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			if total > len(runs) {
				fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d runs\n", len(runs), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run",
		Long: `Show a recorded run with its input context and result as JSON.

Any unique prefix of the run ID is accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForRead()
			if err != nil {
				return err
			}
			defer store.Close() //nolint:errcheck

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run:      %s\n", run.ID)
			fmt.Fprintf(w, "When:     %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Kind:     %s (%s)\n", run.Kind, run.Source)
			fmt.Fprintf(w, "Catalog:  %s\n", orDash(run.CatalogVersion))
			fmt.Fprintf(w, "Status:   %s\n", run.Status)
			if run.Top != "" {
				fmt.Fprintf(w, "Top:      %s\n", run.Top)
			}
			fmt.Fprintf(w, "\nContext:\n%s\n", indentJSON(run.ContextJSON))
			fmt.Fprintf(w, "\nResult:\n%s\n", indentJSON(run.ResultJSON))
			return nil
		},
	}
}

// openHistoryForRead opens the configured history database whether or not
// recording is enabled.
func openHistoryForRead() (*history.Store, error) {
	cfg, err := loadProject()
	if err != nil {
		return nil, err
	}
	return openHistory(cfg, true)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func indentJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return strconv.Quote(raw)
	}
	return buf.String()
}
