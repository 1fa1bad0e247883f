package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spboyer/stratafit/internal/webserver"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWebCommand() *cobra.Command {
	var (
		port         int
		watchCatalog bool
		record       bool
		origins      []string
	)

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the selection REST API over HTTP",
		Long: `Serve the selection REST API over HTTP on 127.0.0.1.

Endpoints:
  GET  /api/health
  GET  /api/frameworks[?category=...]
  GET  /api/frameworks/{id}
  POST /api/select[?format=json|markdown|html]
  POST /api/journey[?format=json|markdown|html]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}

			store, watcher, err := servingCatalog(catalogPath(cmd, cfg), watchCatalog || cfg.WatchCatalog())
			if err != nil {
				return err
			}
			scfg := webserver.Config{
				Port:           port,
				Source:         store,
				Defaults:       cfg.SelectionOptions(),
				AllowedOrigins: origins,
				Logger:         slog.Default(),
			}
			hist, err := openHistory(cfg, record)
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close() //nolint:errcheck
				scfg.Recorder = hist
			}

			srv, err := webserver.New(scfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)
			if watcher != nil {
				g.Go(func() error { return watcher.Run(ctx) })
			}
			g.Go(func() error {
				defer stop()
				return srv.ListenAndServe(ctx)
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Addr())
			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&port, "port", webserver.DefaultPort, "Port to listen on (default: server.port)")
	cmd.Flags().BoolVar(&watchCatalog, "watch", false, "Reload the catalog directory when its files change (default: catalog.watch)")
	cmd.Flags().BoolVar(&record, "record", false, "Record every selection and journey (default: history.enabled)")
	cmd.Flags().StringSliceVar(&origins, "cors", nil, "Origins allowed to call the API from a browser (can be repeated)")

	return cmd
}
