package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/docportal/internal/executor"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
	colorPurple = lipgloss.AdaptiveColor{Light: "#6a0dad", Dark: "#d787ff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleFolder = lipgloss.NewStyle().
			Bold(true)

	styleTab = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(colorGray)

	styleActiveTab = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(colorCyan).
			Underline(true)
)

// methodStyle colours an HTTP method badge
func methodStyle(method string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch method {
	case "GET":
		return style.Foreground(colorGreen)
	case "POST":
		return style.Foreground(colorYellow)
	case "PUT", "PATCH":
		return style.Foreground(colorBlue)
	case "DELETE":
		return style.Foreground(colorRed)
	}
	return style.Foreground(colorPurple)
}

// statusStyle colours an HTTP status code
func statusStyle(status int) lipgloss.Style {
	switch {
	case executor.IsSuccessStatus(status):
		return styleSuccess
	case executor.IsClientErrorStatus(status), executor.IsServerErrorStatus(status):
		return styleError
	}
	return styleWarning
}
