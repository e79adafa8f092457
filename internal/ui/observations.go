package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

// maxSignal is the top of the gateway's 0 to 4 signal scale
const maxSignal = 4

// FormatValue renders an observation value for display.
// Absent values render as MissingValue.
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return MissingValue
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		return fmt.Sprint(n)
	}
}

// RenderObservations lays observations out in as many name/value columns as
// fit width, in natural name order running down each column
func RenderObservations(obs protocol.Observations, width int) string {
	names := protocol.SortedKeys(obs)
	if len(names) == 0 {
		return StatusLineStyle.Render("No observations")
	}

	values := make([]string, len(names))
	nameWidth, valueWidth := 0, 0
	for i, name := range names {
		values[i] = FormatValue(obs[name])
		nameWidth = max(nameWidth, lipgloss.Width(name))
		valueWidth = max(valueWidth, lipgloss.Width(values[i]))
	}

	cellWidth := 2 + nameWidth + 1 + valueWidth + 2
	cols := max(1, (clampWidth(width)-2)/cellWidth)
	rows := (len(names) + cols - 1) / cols

	nameStyle := ObservationNameStyle.Width(nameWidth)
	lines := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(names) {
				break
			}
			valueStyle := ObservationValueStyle
			if obs[names[i]] == nil {
				valueStyle = MissingValueStyle
			}
			b.WriteString("  ")
			b.WriteString(nameStyle.Render(names[i]))
			b.WriteString(" ")
			b.WriteString(valueStyle.Width(valueWidth).Align(lipgloss.Right).Render(values[i]))
			b.WriteString("  ")
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// SignalBars renders a 0 to 4 signal level as filled and empty bars
func SignalBars(signal int) string {
	signal = min(max(signal, 0), maxSignal)
	return strings.Repeat("▮", signal) + strings.Repeat("▯", maxSignal-signal)
}

// RenderSensors renders one line per sensor slot with its device id,
// battery state and signal
func RenderSensors(states []sensors.State) string {
	if len(states) == 0 {
		return StatusLineStyle.Render("No sensors")
	}

	lines := []string{SectionTitleStyle.Render("Sensors")}
	for _, st := range states {
		name := fmt.Sprintf("0x%02X", st.Address)
		if sensor, ok := st.Sensor(); ok {
			name = sensor.LongName
		}

		var battery string
		switch st.ID {
		case sensors.IDSearching:
			battery = MissingValueStyle.Render("searching")
		case sensors.IDDisabled:
			battery = MissingValueStyle.Render("disabled")
		default:
			desc := sensors.BatteryDesc(st.Address, st.Battery)
			style := ObservationValueStyle
			if desc == sensors.BatteryLow {
				style = ErrorMessageStyle
			}
			battery = style.Render(fmt.Sprintf("%s (%s)", desc, FormatValue(st.Battery)))
		}

		lines = append(lines, fmt.Sprintf("  %s %s %s  %s",
			ObservationNameStyle.Width(12).Render(name),
			ResultValueStyle.Width(9).Render(st.ID),
			SignalBars(st.Signal),
			battery,
		))
	}
	return strings.Join(lines, "\n")
}
