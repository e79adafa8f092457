package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
	"github.com/muurk/gw1000/internal/ui"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func (a *app) format() (string, error) {
	switch f := a.v.GetString("format"); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", f)
	}
}

// render writes v in the selected format. In table format observations and
// sensor states get styled tables; anything else is written as YAML.
func (a *app) render(cmd *cobra.Command, v any) error {
	format, err := a.format()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if format == formatTable {
		p := ui.NewPrinter(out)
		switch val := v.(type) {
		case protocol.Observations:
			p.PrintObservations(val)
			return nil
		case []sensors.State:
			p.PrintSensors(val)
			return nil
		}
		format = formatYAML
	}
	return writeValue(out, format, v)
}

func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
