package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type option struct {
	value string
	label string
}

// SelectStep picks one value from a fixed list.
type SelectStep struct {
	title   string
	key     string
	choices []option
	cursor  int
}

func NewSelectStep(title, key string, choices []option) *SelectStep {
	return &SelectStep{title: title, key: key, choices: choices}
}

func (s *SelectStep) Init() tea.Cmd {
	return nil
}

func (s *SelectStep) Update(msg tea.Msg, state *InstallState, _, _ int) (Step, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.key] = s.choices[s.cursor].value
			return nil, nil
		}
	}
	return s, nil
}

func (s *SelectStep) View(*InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", choice.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", choice.label)) + "\n")
		}
	}
	b.WriteString("\n(↑/↓ to move, enter to choose, ctrl+c to quit)\n")
	return b.String()
}
