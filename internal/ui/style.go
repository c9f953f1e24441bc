package ui

import "github.com/charmbracelet/lipgloss"

var TitleStyle = lipgloss.NewStyle().Inline(true).Bold(true).Foreground(lipgloss.Color("252")).Render
var HelpStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("241")).Render
var ValueStyle = lipgloss.NewStyle().Inline(true).Bold(true).Foreground(lipgloss.Color("81")).Render
var GoodStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("77")).Render
var BadStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("203")).Render
