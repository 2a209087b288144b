package ui

import "github.com/charmbracelet/lipgloss"

// ANSI base colors only, so the output follows the terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	ReplyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	ReactStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Italic(true)
	IgnoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Bug prefixes assistant lines in the chat REPL.
const Bug = "lo-bug›"
