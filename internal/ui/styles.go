package ui

import (
	"github.com/charmbracelet/lipgloss"

	"depscan/internal/osv"
)

// This file centralizes the lipgloss styles used across the TUI.

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666")).
			MarginTop(1)

	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("112"))
	unknownStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// SeverityStyle picks the display style for one severity label.
func SeverityStyle(s string) lipgloss.Style {
	switch s {
	case osv.SeverityCritical:
		return criticalStyle
	case osv.SeverityHigh:
		return highStyle
	case osv.SeverityMedium:
		return mediumStyle
	case osv.SeverityLow:
		return lowStyle
	default:
		return unknownStyle
	}
}
