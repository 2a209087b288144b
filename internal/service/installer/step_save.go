package installer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sandevgo/lobug/internal/config"
)

// SaveStep writes .env and a default memory.yaml into the runtime directory.
// An existing .env is never overwritten.
type SaveStep struct {
	err   error
	saved bool
}

func NewSaveStep() Step {
	return &SaveStep{}
}

func (s *SaveStep) Init() tea.Cmd {
	return next
}

func (s *SaveStep) Update(_ tea.Msg, state *InstallState, _, _ int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := Save(state); err != nil {
		s.err = err
		return s, func() tea.Msg { return errMsg(err) }
	}
	s.saved = true
	return nil, nil
}

func (s *SaveStep) View(*InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved.\n"
	}
	return "Saving configuration...\n"
}

// Save derives the remaining variables and writes the runtime files.
func Save(state *InstallState) error {
	if err := os.MkdirAll(state.Runtime, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := config.EnvFilePath(state.Runtime)
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	state.EnvVars["LOBUG_ENABLE_TELEGRAM"] = fmt.Sprint(state.EnvVars["TELEGRAM_TOKEN"] != "")

	if err := godotenv.Write(state.EnvVars, envPath); err != nil {
		return fmt.Errorf("write %s: %w", envPath, err)
	}
	if err := os.Chmod(envPath, 0o600); err != nil {
		return err
	}

	if _, err := os.Stat(config.MemoryFilePath(state.Runtime)); errors.Is(err, fs.ErrNotExist) {
		return config.WriteMemoryFile(state.Runtime, config.DefaultMemoryConfig(state.Runtime))
	}
	return nil
}
