package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/mcp"
)

// newMCPCmd returns the mcp command.
func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start Model Context Protocol (MCP) server",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP).
This allows AI agents (e.g., Claude Desktop, Cursor) to analyze scans,
scan this machine and explain bottlenecks through pcdiag.

Communication happens over standard input/output (stdio).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cpus, gpus, err := loadCatalogs(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcp.NewServer(version, cpus, gpus)
			return srv.Start(ctx)
		},
	}
}
