// Package ui provides terminal UI components for the gw1000 CLI.
//
// This package uses Lipgloss to render styled one-shot output and Bubble Tea
// for the interactive watch view. One-shot commands follow a "print and
// exit" pattern: a header box, then a table or result box.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Result: Success, failure and warning boxes with details and tips
//   - RenderObservations: Multi-column observation table in natural order
//   - RenderSensors: Sensor slots with device id, signal bars and battery
//   - Countdown: Progress bar showing time to the next poll
//   - WatchModel: Live view that polls on an interval (gw1000 watch)
//   - Confirm: Typed confirmation before writing gateway settings
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Live data", "gw1000 poll", map[string]string{"Gateway": addr})
//	p.PrintObservations(obs)
//
// # Logging Integration
//
// This package expects logging to be controlled via the GW1000_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
