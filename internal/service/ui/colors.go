package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette so the styles degrade nicely on any terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// Chat REPL accents.
	PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	ToolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
