package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep asks for one free-text value.
type InputStep struct {
	Title       string
	Key         string
	Placeholder string
	Default     string
	Secret      bool
	Optional    bool

	// When reports whether the step applies; nil means always.
	When     func(*InstallState) bool
	Validate func(string) error

	input   textinput.Model
	ready   bool
	invalid error
}

func (s *InputStep) Init() tea.Cmd {
	s.input = textinput.New()
	s.input.Focus()
	s.input.CharLimit = 255
	s.input.Width = 50
	s.input.Placeholder = s.Placeholder
	if s.Default != "" && s.Placeholder == "" {
		s.input.Placeholder = s.Default
	}
	if s.Secret {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
	s.ready = true
	return tea.Batch(next, textinput.Blink)
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, _, _ int) (Step, tea.Cmd) {
	if s.When != nil && !s.When(state) {
		return nil, nil
	}
	if !s.ready {
		return s, s.Init()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			val = s.Default
		}
		if val == "" && !s.Optional {
			s.invalid = fmt.Errorf("a value is required")
			return s, cmd
		}
		if val != "" && s.Validate != nil {
			if err := s.Validate(val); err != nil {
				s.invalid = err
				return s, cmd
			}
		}
		if val != "" {
			state.EnvVars[s.Key] = val
		}
		return nil, nil
	}

	s.invalid = nil
	return s, cmd
}

func (s *InputStep) View(*InstallState) string {
	hint := ""
	switch {
	case s.Optional:
		hint = " (optional, press enter to skip)"
	case s.Default != "":
		hint = fmt.Sprintf(" (enter keeps %s)", s.Default)
	}

	view := fmt.Sprintf("%s%s:\n\n%s\n\n", s.Title, hint, s.input.View())
	if s.invalid != nil {
		view += errorStyle.Render(s.invalid.Error()) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
