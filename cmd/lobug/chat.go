package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/lobug/internal/transport/cli"
	"github.com/sandevgo/lobug/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Lo-Bug in the terminal",
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

		ag, err := a.newAgent(ctx)
		if err != nil {
			a.close(ctx)
			return err
		}

		repl, err := cli.NewReadLine(a.appCfg, ag, a.commands, stop)
		if err != nil {
			a.close(ctx)
			return err
		}

		services := append(a.cleanups, a.worker, repl)
		srv.StartServices(ctx, stop, services...)
		srv.ShutdownServices(ctx, shutdownTimeout, services...)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
