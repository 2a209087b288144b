package installer

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/lobug/internal/config"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step is one screen of the setup wizard. Returning a nil Step from Update
// moves the wizard on.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

type errMsg error

// nextMsg wakes a step up right after Init so it can decide to skip itself.
type nextMsg struct{}

func next() tea.Msg { return nextMsg{} }

func providerIs(names ...string) func(*InstallState) bool {
	return func(s *InstallState) bool {
		for _, n := range names {
			if s.provider() == n {
				return true
			}
		}
		return false
	}
}

func getSteps() []Step {
	return []Step{
		NewSelectStep("Which chat model provider should Lo-Bug use?", "LOBUG_LLM_PROVIDER", []option{
			{config.ProviderOllama, "Ollama (local)"},
			{config.ProviderOpenAI, "OpenAI"},
			{config.ProviderOpenRouter, "OpenRouter"},
			{config.ProviderAnthropic, "Anthropic"},
			{config.ProviderStub, "None, canned replies for testing"},
		}),
		&InputStep{Title: "Ollama base URL", Key: "LOBUG_LLM_BASE_URL", Default: "http://localhost:11434/v1", When: providerIs(config.ProviderOllama)},
		&InputStep{Title: "OpenAI API key", Key: "OPENAI_API_KEY", Placeholder: "sk-...", Secret: true, When: providerIs(config.ProviderOpenAI)},
		&InputStep{Title: "OpenRouter API key", Key: "OPENROUTER_API_KEY", Placeholder: "sk-or-v1-...", Secret: true, When: providerIs(config.ProviderOpenRouter)},
		&InputStep{Title: "Anthropic API key", Key: "ANTHROPIC_API_KEY", Placeholder: "sk-ant-...", Secret: true, When: providerIs(config.ProviderAnthropic)},
		NewModelStep(),
		NewSelectStep("How should memories be embedded?", "LOBUG_EMBEDDING_PROVIDER", []option{
			{config.EmbedderOpenAI, "OpenAI-compatible endpoint (Ollama nomic-embed-text by default)"},
			{config.EmbedderHash, "Offline word hashing, no model needed"},
		}),
		&InputStep{
			Title:   "Embedding endpoint base URL",
			Key:     "LOBUG_EMBEDDING_BASE_URL",
			Default: "http://localhost:11434/v1",
			When:    func(s *InstallState) bool { return s.EnvVars["LOBUG_EMBEDDING_PROVIDER"] == config.EmbedderOpenAI },
		},
		&InputStep{Title: "Telegram bot token", Key: "TELEGRAM_TOKEN", Placeholder: "123456789:ABCDEF...", Secret: true, Optional: true},
		&InputStep{
			Title:       "Your Telegram user ID (only this user can talk to the bot)",
			Key:         "TELEGRAM_OWNER_ID",
			Placeholder: "123456789",
			When:        func(s *InstallState) bool { return s.EnvVars["TELEGRAM_TOKEN"] != "" },
			Validate: func(v string) error {
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					return fmt.Errorf("%q is not a numeric user id", v)
				}
				return nil
			},
		},
		NewSaveStep(),
	}
}

type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	err         error
	width       int
	height      int
}

func initialModel(runtime string) model {
	return model{
		steps: getSteps(),
		state: NewInstallState(runtime),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case errMsg:
		m.err = msg
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if nextStep == nil {
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.currentStep].Init()
	}

	m.steps[m.currentStep] = nextStep
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if m.currentStep >= len(m.steps) {
		return "Setup complete.\n"
	}

	return titleStyle.Render("Setting up Lo-Bug 🐞") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard walks the user through provider and transport settings and
// writes them into runtime.
func RunWizard(runtime string) (*InstallState, error) {
	p := tea.NewProgram(initialModel(runtime), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := m.(model)
	if final.quitting {
		return nil, fmt.Errorf("setup interrupted")
	}
	if final.err != nil {
		return nil, final.err
	}
	return final.state, nil
}
