package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/pkg/env"
	"github.com/spf13/cobra"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the runtime configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write .env and memory.yaml with the current settings",
	Long: `Writes <runtime>/.env with the provider settings and <runtime>/memory.yaml
with the memory tunables, taking defaults plus anything already set in the
environment. Existing files are kept unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime := config.GetRuntimePath()
		out := cmd.OutOrStdout()

		if err := os.MkdirAll(runtime, 0o755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}
		if err := config.LoadDotEnv(runtime); err != nil {
			return err
		}

		appCfg, err := config.ParseAppConfig(runtime)
		if err != nil {
			return err
		}
		llmCfg, err := config.ParseLLMConfig()
		if err != nil {
			return err
		}
		embCfg, err := config.ParseEmbedderConfig()
		if err != nil {
			return err
		}
		memCfg, err := config.LoadMemoryConfig(runtime)
		if err != nil {
			return err
		}

		envPath := config.EnvFilePath(runtime)
		if ok, err := writable(envPath); err != nil {
			return err
		} else if ok {
			content, err := env.MarshalEnv(appCfg, llmCfg, embCfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
				return err
			}
			fmt.Fprintln(out, "wrote", envPath)
		} else {
			fmt.Fprintln(out, "kept", envPath)
		}

		memPath := config.MemoryFilePath(runtime)
		if ok, err := writable(memPath); err != nil {
			return err
		} else if ok {
			if err := config.WriteMemoryFile(runtime, memCfg); err != nil {
				return err
			}
			fmt.Fprintln(out, "wrote", memPath)
		} else {
			fmt.Fprintln(out, "kept", memPath)
		}
		return nil
	},
}

func writable(path string) (bool, error) {
	if forceInit {
		return true, nil
	}
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite existing files")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
