package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/jsonrpc"
	"github.com/spboyer/stratafit/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	var (
		tcpAddr        string
		tcpAllowRemote bool
		watchCatalog   bool
		record         bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a JSON-RPC 2.0 server for editor and tool integration",
		Long: `Start a JSON-RPC 2.0 server for editor and tool integration.

By default, the server communicates over stdin/stdout using newline-delimited JSON.

Use --tcp to start a TCP server instead (or set server.rpc_addr).
TCP defaults to loopback (127.0.0.1) for security. Use --tcp-allow-remote to bind
to all interfaces.

Supported methods:
  catalog.list      List frameworks, optionally by category
  catalog.get       Get a framework with its profile and effectiveness data
  catalog.validate  Check a catalog path for problems
  select.run        Recommend frameworks for a startup context
  journey.build     Phase a recommendation into a journey
  history.list      List recorded runs (when history is enabled)
  history.get       Get a recorded run (when history is enabled)

With --watch on stdio, the server sends a catalog.reloaded notification after
each reload attempt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			logger := slog.Default()

			if tcpAddr == "" {
				tcpAddr = cfg.Server.RPCAddr
			}
			// Only a stdio session has a single client to tell about reloads.
			var stdio *jsonrpc.Transport
			if tcpAddr == "" {
				stdio = jsonrpc.NewTransport(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			var store *catalog.Store
			notify := watch.OnReload(func(_ *catalog.Snapshot, err error) {
				if stdio == nil {
					return
				}
				if werr := stdio.WriteNotification(jsonrpc.CatalogReloaded(store.Current(), err)); werr != nil {
					logger.Debug("reload notification failed", "error", werr)
				}
			})
			store, watcher, err := servingCatalog(catalogPath(cmd, cfg), watchCatalog || cfg.WatchCatalog(), notify)
			if err != nil {
				return err
			}
			hcfg := jsonrpc.HandlerConfig{
				Source:   store,
				Defaults: cfg.SelectionOptions(),
				Logger:   logger,
			}
			hist, err := openHistory(cfg, record)
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close() //nolint:errcheck
				hcfg.History = hist
			}

			registry := jsonrpc.NewMethodRegistry()
			jsonrpc.RegisterHandlers(registry, jsonrpc.NewHandlerContext(hcfg))
			server := jsonrpc.NewServer(registry, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)
			if watcher != nil {
				g.Go(func() error { return watcher.Run(ctx) })
			}

			if stdio == nil {
				tcpAddr = resolveTCPAddr(tcpAddr, tcpAllowRemote, logger)

				listener, err := jsonrpc.NewTCPListener(tcpAddr, server)
				if err != nil {
					return fmt.Errorf("failed to start TCP server: %w", err)
				}
				defer listener.Close() //nolint:errcheck
				fmt.Fprintf(cmd.ErrOrStderr(), "JSON-RPC server listening on %s\n", listener.Addr())
				g.Go(func() error {
					defer stop()
					return listener.Serve(ctx)
				})
				return g.Wait()
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "JSON-RPC server running on stdio")
			// A blocked stdin read does not see ctx, so the session is not
			// waited on after a signal.
			go func() {
				defer stop()
				server.ServeTransport(ctx, stdio)
			}()
			<-ctx.Done()
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP address to listen on, e.g. :9000 (default: server.rpc_addr)")
	cmd.Flags().BoolVar(&tcpAllowRemote, "tcp-allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the server to the network with no authentication)")
	cmd.Flags().BoolVar(&watchCatalog, "watch", false, "Reload the catalog directory when its files change (default: catalog.watch)")
	cmd.Flags().BoolVar(&record, "record", false, "Record selections and enable the history methods (default: history.enabled)")

	return cmd
}

// resolveTCPAddr ensures TCP addresses default to loopback unless --tcp-allow-remote is set.
func resolveTCPAddr(addr string, allowRemote bool, logger *slog.Logger) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Likely just a port like "9000"; treat as ":9000".
		host = ""
		port = addr
	}

	if allowRemote {
		logger.Warn("TCP server binding to all interfaces; no authentication is provided",
			"address", addr)
		return addr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		logger.Info("JSON-RPC server listening on TCP (local only)")
		return net.JoinHostPort("127.0.0.1", port)
	}

	return addr
}
