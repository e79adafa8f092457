package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// Printer writes styled output at a fixed width. Commands print through a
// Printer so tests can capture the output and pin the width.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer for w (stdout when nil) sized to the terminal
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = clampWidth(width)
	return p
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// PrintHeader prints the command banner
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintSuccess prints a success box with sorted details
func (p *Printer) PrintSuccess(title string, details map[string]string) {
	p.println(NewSuccessResult(title, details).SetWidth(p.width).Render())
}

// PrintWarning prints a warning box with sorted details
func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.println(NewWarningResult(title, details).SetWidth(p.width).Render())
}

// PrintError prints a failure box; troubleshooting may be nil
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintObservations prints observations as a multi-column table
func (p *Printer) PrintObservations(obs protocol.Observations) {
	p.println(RenderObservations(obs, p.width))
}

// PrintSensors prints the sensor slot table
func (p *Printer) PrintSensors(states []sensors.State) {
	p.println(RenderSensors(states))
}
