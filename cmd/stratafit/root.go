package main

import (
	"log/slog"

	"github.com/spboyer/stratafit/internal/webapi"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stratafit",
		Short: "Stratafit - recommend business frameworks for a startup",
		Long: `Stratafit recommends business frameworks for a startup.

Given a company's stage, industry, team size, challenges and metrics it
filters a framework catalog down to what is eligible, scores every candidate
for fit and returns a short, diverse, explained shortlist. It can also phase
that shortlist into a journey, process many contexts at once, and serve the
engine over HTTP or JSON-RPC.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("catalog", "", "Catalog directory, YAML file or bundle (default: catalog.dir from .stratafit.yaml, else built-in)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newSelectCommand())
	cmd.AddCommand(newJourneyCommand())
	cmd.AddCommand(newBatchCommand())
	cmd.AddCommand(newCatalogCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newWebCommand())

	return cmd
}

func execute() error {
	webapi.Version = version
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
