package ui

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the box printed above a command's output: the title in capitals,
// the command line, and the parameters it ran with.
type Header struct {
	Title   string
	Command string
	Params  map[string]string
	Width   int
}

// NewHeader creates a header sized to the terminal
func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{Title: title, Command: command, Params: params, Width: GetTerminalWidth()}
}

// SetWidth overrides the terminal width
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header
func (h *Header) Render() string {
	width := clampWidth(h.Width)
	lines := []string{
		HeaderTitleStyle.Render(strings.ToUpper(h.Title)),
		HeaderCommandStyle.Render(h.Command),
	}
	if len(h.Params) > 0 {
		lines = append(lines, "  "+Divider(width-8))
		lines = append(lines, keyValueLines(h.Params, HeaderKeyStyle, HeaderValueStyle, ":")...)
	}
	return HeaderBorderStyle(width).Render(strings.Join(lines, "\n"))
}

func (h *Header) String() string {
	return h.Render()
}

// keyValueLines renders m as one "key value" line per entry, sorted by key
func keyValueLines(m map[string]string, key, value lipgloss.Style, suffix string) []string {
	lines := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		lines = append(lines, key.Render(k+suffix)+" "+value.Render(m[k]))
	}
	return lines
}
