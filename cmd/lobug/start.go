package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/transport/telegram"
	"github.com/sandevgo/lobug/pkg/log"
	"github.com/sandevgo/lobug/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run Lo-Bug as a Telegram bot",
	Long:  `Starts the Telegram transport and the background memory worker, and runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Str("version", core.AppVersion).Msg("starting lobug")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		if !a.appCfg.EnableTelegram {
			a.close(ctx)
			return errors.New("no transport enabled: set LOBUG_ENABLE_TELEGRAM=true or use `lobug chat`")
		}

		ag, err := a.newAgent(ctx)
		if err != nil {
			a.close(ctx)
			return err
		}

		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, ag, a.commands)
		if err != nil {
			a.close(ctx)
			return err
		}

		services := append(a.cleanups, a.worker, bot)
		srv.StartServices(ctx, stop, services...)
		srv.ShutdownServices(ctx, shutdownTimeout, services...)

		logger.Info().Msg("lobug has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
