package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/lobug/internal/config"
)

type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

// suggestedModels are starting points; any name can be set later with
// /model or LOBUG_CHAT_MODEL.
var suggestedModels = map[string][]item{
	config.ProviderOllama: {
		{id: "llama3.1", title: "llama3.1", desc: "Default, 8B, runs on most laptops"},
		{id: "qwen2.5:7b", title: "qwen2.5:7b", desc: "Good at following output formats"},
		{id: "mistral", title: "mistral", desc: "Small and quick"},
	},
	config.ProviderOpenAI: {
		{id: "gpt-4o-mini", title: "gpt-4o-mini", desc: "Cheap and fast"},
		{id: "gpt-4o", title: "gpt-4o", desc: "Stronger, pricier"},
	},
	config.ProviderOpenRouter: {
		{id: "meta-llama/llama-3.1-8b-instruct", title: "Llama 3.1 8B", desc: "meta-llama/llama-3.1-8b-instruct"},
		{id: "openai/gpt-4o-mini", title: "GPT-4o mini", desc: "openai/gpt-4o-mini"},
		{id: "anthropic/claude-3.5-haiku", title: "Claude 3.5 Haiku", desc: "anthropic/claude-3.5-haiku"},
	},
	config.ProviderAnthropic: {
		{id: "claude-3-5-haiku-latest", title: "Claude 3.5 Haiku", desc: "Fast, cheap"},
		{id: "claude-sonnet-4-0", title: "Claude Sonnet 4", desc: "Stronger replies and summaries"},
	},
}

// ModelStep picks the chat model from a filterable list of suggestions.
type ModelStep struct {
	list  list.Model
	ready bool
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select chat model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return next
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.ready {
		models, ok := suggestedModels[state.provider()]
		if !ok {
			return nil, nil
		}
		items := make([]list.Item, len(models))
		for i, m := range models {
			items[i] = m
		}
		s.list.SetItems(items)
		s.ready = true
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		wasFiltering := s.list.FilterState() == list.Filtering
		s.list, cmd = s.list.Update(msg)
		if wasFiltering || s.list.FilterState() == list.Filtering {
			return s, cmd
		}

		if i, ok := s.list.SelectedItem().(item); ok {
			state.EnvVars["LOBUG_CHAT_MODEL"] = i.id
			return nil, nil
		}
		return s, cmd
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(*InstallState) string {
	if !s.ready {
		return "Loading models...\n"
	}
	return s.list.View()
}
