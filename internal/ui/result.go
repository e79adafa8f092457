package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType selects the color and label of a result box
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

type resultLook struct {
	label  string
	marker string
	color  lipgloss.Color
	title  lipgloss.Style
}

var resultLooks = map[ResultType]resultLook{
	ResultSuccess: {"SUCCESS", SuccessMarker, SuccessColor, SuccessTitleStyle},
	ResultFailure: {"FAILED", FailureMarker, ErrorColor, ErrorTitleStyle},
	ResultWarning: {"WARNING", WarningMarker, WarningColor, WarningTitleStyle},
}

func (l resultLook) heading(title string) string {
	return l.title.Render("   " + l.marker + "  " + l.label + "  ─  " + title)
}

// Result is the box printed after a gateway operation
type Result struct {
	Type            ResultType
	Title           string
	Details         map[string]string // rendered sorted by key
	Error           error
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success box
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure box with optional troubleshooting tips
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning box
func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth overrides the terminal width
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail adds one detail row
func (r *Result) AddDetail(key, value string) *Result {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
	return r
}

// Render returns the styled box
func (r *Result) Render() string {
	width := clampWidth(r.Width)
	look := resultLooks[r.Type]

	lines := []string{"", look.heading(r.Title), ""}
	if len(r.Details) > 0 {
		lines = append(lines, keyValueLines(r.Details, ResultKeyStyle.PaddingLeft(3), ResultValueStyle, ":")...)
		lines = append(lines, "")
	}
	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}
	if len(r.Troubleshooting) > 0 {
		lines = append(lines, tipBox(r.Troubleshooting, width), "")
	}
	return ResultBoxStyle(width, look.color).Render(strings.Join(lines, "\n"))
}

func (r *Result) String() string {
	return r.Render()
}

func tipBox(tips []string, width int) string {
	lines := []string{TipTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range tips {
		lines = append(lines, TipStyle.Render("  • "+tip))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// ConnectionTroubleshooting lists the usual causes of a gateway not answering
var ConnectionTroubleshooting = []string{
	"Check the gateway IP address in the WS View app or your router",
	"The API listens on TCP port 45000 unless changed",
	"Make sure the gateway and this machine are on the same network",
	"Only one client can talk to the gateway at a time",
}
