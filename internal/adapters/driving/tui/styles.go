package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the chat view.
type Styles struct {
	Title     lipgloss.Style
	Question  lipgloss.Style
	Answer    lipgloss.Style
	Reasoning lipgloss.Style
	Source    lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	InputBar  lipgloss.Style
}

// DefaultStyles returns the default chat styling.
func DefaultStyles() *Styles {
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Question:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Answer:    lipgloss.NewStyle(),
		Reasoning: lipgloss.NewStyle().Faint(true).Italic(true),
		Source:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Status:    lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		InputBar:  lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true),
	}
}
