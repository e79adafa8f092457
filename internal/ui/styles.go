package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette
var (
	PrimaryColor = lipgloss.Color("#2E9CCA") // headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // success, good battery
	ErrorColor   = lipgloss.Color("#FF5555") // errors, low battery
	WarningColor = lipgloss.Color("#FFA500") // warnings, write commands
	MutedColor   = lipgloss.Color("#7A7A7A") // labels, absent values
	TextColor    = lipgloss.Color("#F2F2F2") // values
)

// Rendered content is clamped to this range of columns
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	HeaderTitleStyle   = fg(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle = fg(MutedColor).PaddingLeft(2)
	HeaderKeyStyle     = fg(MutedColor).PaddingLeft(2)
	HeaderValueStyle   = fg(TextColor)

	SuccessTitleStyle = fg(SuccessColor).Bold(true)
	ErrorTitleStyle   = fg(ErrorColor).Bold(true)
	WarningTitleStyle = fg(WarningColor).Bold(true)
	ErrorMessageStyle = fg(ErrorColor)

	// Detail rows inside result boxes
	ResultKeyStyle   = fg(MutedColor).Width(22)
	ResultValueStyle = fg(TextColor)

	TipTitleStyle = fg(MutedColor).Bold(true)
	TipStyle      = fg(MutedColor)

	SectionTitleStyle     = fg(PrimaryColor).Bold(true).PaddingLeft(2)
	ObservationNameStyle  = fg(MutedColor)
	ObservationValueStyle = fg(TextColor).Bold(true)
	MissingValueStyle     = fg(MutedColor).Italic(true)
	StatusLineStyle       = fg(MutedColor).PaddingLeft(2)
)

// Markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
	MissingValue  = "n/a"
)

// GetTerminalWidth returns the width of stdout clamped to the content range,
// or MinTerminalWidth when stdout is not a terminal
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

func clampWidth(width int) int {
	return min(max(width, MinTerminalWidth), MaxContentWidth)
}

// HeaderBorderStyle is the rounded frame around command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// ResultBoxStyle is the double frame around result boxes
func ResultBoxStyle(width int, color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width-2).
		Padding(0, 2)
}

// Divider renders a horizontal rule in the primary color
func Divider(width int) string {
	return fg(PrimaryColor).Render(strings.Repeat("─", width))
}
