package main

import "github.com/charmbracelet/lipgloss"

var (
	headStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	fatalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
)
