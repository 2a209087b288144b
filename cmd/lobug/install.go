package main

import (
	"fmt"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/service/installer"
	"github.com/sandevgo/lobug/internal/service/ui"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Interactive first-run setup",
	Long:  `Asks for the chat provider, embedding endpoint and optional Telegram bot, then writes .env and memory.yaml into the runtime directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime := config.GetRuntimePath()

		state, err := installer.RunWizard(runtime)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("Lo-Bug is configured"))
		fmt.Fprintf(out, "runtime   %s\n", state.Runtime)
		fmt.Fprintf(out, "provider  %s\n", state.EnvVars["LOBUG_LLM_PROVIDER"])
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.UsageStyle.Render("lobug chat")+"   talk in the terminal")
		if state.EnvVars["LOBUG_ENABLE_TELEGRAM"] == "true" {
			fmt.Fprintln(out, ui.UsageStyle.Render("lobug start")+"  run the Telegram bot")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
