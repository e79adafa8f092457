package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/gw1000/internal/collector"
	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/sensors"
)

func newDecodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [hex...]",
		Short: "Decode a captured response frame",
		Long: `Decode a gateway response frame given as hex, without talking to a gateway.

The frame is validated (header, command, size and checksum) before the
payload is decoded with the parser for --command. When no hex is given on
the command line it is read from stdin.`,
		Example: `  # Decode a firmware version response
  gw1000 decode --command CMD_READ_FIRMWARE_VERSION FF FF 50 11 0D 47 57 31 30 30 30 5F 56 31 2E 36 2E 31 76

  # Decode a live data capture from a file as JSON
  gw1000 decode -o json < livedata.hex

  # Stamp the datetime field with a fixed time
  gw1000 decode --at 1599021263 < livedata.hex`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, args)
		},
	}
	cmd.Flags().StringP("command", "c", "CMD_GW1000_LIVEDATA", "API command the frame answers")
	cmd.Flags().Int64("at", 0, "Unix time to stamp live data with (default now)")
	return cmd
}

func (a *app) runDecode(cmd *cobra.Command, args []string) error {
	code, err := protocol.LookupCommand(a.v.GetString("command"))
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")
	if input == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read frame from stdin: %w", err)
		}
		input = string(data)
	}

	frame, err := protocol.ParseHex(strings.Join(strings.Fields(input), ""))
	if err != nil {
		return err
	}

	at := time.Now()
	if unix := a.v.GetInt64("at"); unix != 0 {
		at = time.Unix(unix, 0)
	}

	decoded, err := collector.DecodeResponse(code, frame, at)
	if err != nil {
		return err
	}
	return a.render(cmd, decoded)
}

// builtFrame is the structured form of the build command's output
type builtFrame struct {
	Command string `json:"command" yaml:"command"`
	Code    string `json:"code" yaml:"code"`
	Frame   string `json:"frame" yaml:"frame"`
}

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build <command> [payload-hex]",
		Short: "Build a request frame",
		Long: `Build the request frame for an API command and print it as hex.

The optional payload is given as hex and is framed as is.`,
		Example: `  gw1000 build CMD_READ_FIRMWARE_VERSION
  gw1000 build CMD_WRITE_SSSS 00 00 5F 4E 2A 1B 00 01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := protocol.ParseHex(strings.Join(args[1:], ""))
			if err != nil {
				return err
			}
			frame, err := protocol.BuildFrame(args[0], payload)
			if err != nil {
				return err
			}

			format, err := a.format()
			if err != nil {
				return err
			}
			hex := protocol.BytesToHex(frame, " ", true)
			if format == formatTable {
				fmt.Fprintln(cmd.OutOrStdout(), hex)
				return nil
			}
			return writeValue(cmd.OutOrStdout(), format, builtFrame{
				Command: args[0],
				Code:    fmt.Sprintf("0x%02X", frame[protocol.CodeOffset]),
				Frame:   hex,
			})
		},
	}
}

// commandRow is one line of the commands listing
type commandRow struct {
	Code      string `json:"code" yaml:"code"`
	Name      string `json:"name" yaml:"name"`
	SizeWidth int    `json:"size_width" yaml:"size_width"`
}

func newCommandsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the API command catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			commands := protocol.Commands()
			rows := make([]commandRow, 0, len(commands))
			for _, c := range commands {
				rows = append(rows, commandRow{
					Code:      fmt.Sprintf("0x%02X", byte(c.Code)),
					Name:      c.Name,
					SizeWidth: c.Code.SizeWidth(),
				})
			}

			format, err := a.format()
			if err != nil {
				return err
			}
			if format != formatTable {
				return writeValue(cmd.OutOrStdout(), format, rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-28s  %d byte size\n", r.Code, r.Name, r.SizeWidth)
			}
			return nil
		},
	}
}

// fieldRow is one line of the fields listing
type fieldRow struct {
	Code    string   `json:"code" yaml:"code"`
	Decoder string   `json:"decoder" yaml:"decoder"`
	Size    int      `json:"size" yaml:"size"`
	Names   []string `json:"names" yaml:"names"`
}

func newFieldsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the live data field table",
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := protocol.FieldCodes()
			rows := make([]fieldRow, 0, len(codes))
			for _, code := range codes {
				f, _ := protocol.LookupField(code)
				rows = append(rows, fieldRow{
					Code:    fmt.Sprintf("0x%02X", code),
					Decoder: f.Decoder.String(),
					Size:    f.Size,
					Names:   f.Names,
				})
			}

			format, err := a.format()
			if err != nil {
				return err
			}
			if format != formatTable {
				return writeValue(cmd.OutOrStdout(), format, rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %3d  %s\n", r.Code, r.Decoder, r.Size, strings.Join(r.Names, ", "))
			}
			return nil
		},
	}
}

// sensorRow is one line of the sensor table listing
type sensorRow struct {
	Address  string `json:"address" yaml:"address"`
	Name     string `json:"name" yaml:"name"`
	LongName string `json:"long_name" yaml:"long_name"`
	Battery  string `json:"battery" yaml:"battery"`
}

func printSensorTable(a *app, cmd *cobra.Command) error {
	all := sensors.All()
	rows := make([]sensorRow, 0, len(all))
	for _, s := range all {
		rows = append(rows, sensorRow{
			Address:  fmt.Sprintf("0x%02X", s.Address),
			Name:     s.Name,
			LongName: s.LongName,
			Battery:  s.Battery.String(),
		})
	}

	format, err := a.format()
	if err != nil {
		return err
	}
	if format != formatTable {
		return writeValue(cmd.OutOrStdout(), format, rows)
	}
	for _, r := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-10s %s\n", r.Address, r.Name, r.LongName, r.Battery)
	}
	return nil
}
