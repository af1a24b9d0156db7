package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spboyer/arena/internal/projectconfig"
	"github.com/spboyer/arena/internal/webapi"
	"github.com/spboyer/arena/internal/webserver"
	"github.com/spboyer/arena/internal/workflow"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var port int
	var host string
	var storage storageFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long: `Start the dashboard API server.

Settings come from .arena.yaml (searched upward from the working directory)
and are overridden by flags. With --results-dir the server is read-only: it
serves evaluations and comparisons from exported JSON files. With the default
sqlite driver it also manages test runs, personas, and criteria, and triggers
the workflow engine when workflow.base_url is configured.

The server runs until interrupted (SIGINT/SIGTERM).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			storage.apply(&cfg.Storage)

			srv, closeStore, err := buildServer(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard API listening on %s\n", serverAddress(cfg.Server)) //nolint:errcheck
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", projectconfig.DefaultServerPort, "Port to listen on")
	cmd.Flags().StringVar(&host, "host", "", "Interface to bind (default 127.0.0.1)")
	storage.register(cmd)

	return cmd
}

// buildServer wires storage, the workflow client, and comparison settings
// into a dashboard server.
func buildServer(cfg *projectconfig.ProjectConfig, logger *slog.Logger) (*webserver.Server, func(), error) {
	reader, sqlStore, closeStore, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	api := webapi.Config{
		Reader:         reader,
		Logger:         logger,
		Comparison:     comparisonOptions(cfg.Comparison),
		PublicURL:      cfg.Server.PublicURL,
		CallbackSecret: cfg.Workflow.Secret,
	}
	if sqlStore != nil {
		api.Store = sqlStore
		api.Workflow = workflow.New(workflow.Config{
			BaseURL: cfg.Workflow.BaseURL,
			Secret:  cfg.Workflow.Secret,
			Timeout: cfg.Workflow.Timeout(),
		}, workflow.WithLogger(logger))
	}
	if api.PublicURL == "" {
		api.PublicURL = "http://" + serverAddress(cfg.Server)
	}
	if cfg.Workflow.BaseURL == "" {
		logger.Debug("workflow engine not configured; triggers will be skipped")
	}

	srv, err := webserver.New(webserver.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		API:            api,
		Logger:         logger,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return srv, closeStore, nil
}

func serverAddress(s projectconfig.ServerConfig) string {
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}
