package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/lobug/internal/transport/mcp"
	"github.com/sandevgo/lobug/pkg/srv"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the memory as MCP tools over stdio",
	Long: `Exposes memory_retrieve, memory_base and memory_remember to an MCP client.
Logs go to stderr; stdout carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		server := mcp.NewServer(a.memory, a.store)
		err = server.Start(ctx)
		stop()
		srv.ShutdownServices(ctx, shutdownTimeout, append(a.cleanups, server)...)
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
