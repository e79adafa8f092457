package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/archive"
	"github.com/muurk/gw1000/internal/collector"
	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/protocol"
	"github.com/muurk/gw1000/internal/station"
	"github.com/muurk/gw1000/internal/ui"
)

// errReported is returned after a failure box was already shown
var errReported = errors.New("failure reported")

func (a *app) gatewayAddr() (string, error) {
	return a.registry.ResolveGateway(a.v.GetString("gateway"), a.v.GetInt("port"))
}

func (a *app) timeout() time.Duration {
	if d := a.v.GetDuration("timeout"); d > 0 {
		return d
	}
	return time.Duration(a.registry.Preferences.Timeout) * time.Second
}

func (a *app) pollInterval() time.Duration {
	if d := a.v.GetDuration("interval"); d > 0 {
		return d
	}
	return time.Duration(a.registry.Preferences.PollInterval) * time.Second
}

func (a *app) newCollector() (*collector.Collector, string, error) {
	addr, err := a.gatewayAddr()
	if err != nil {
		return nil, "", err
	}
	return collector.New(station.NewClient(addr, a.timeout())), addr, nil
}

// fail shows a failure box in table format and returns errReported, or
// returns err unchanged for machine readable formats
func (a *app) fail(cmd *cobra.Command, title string, err error) error {
	if format, _ := a.format(); format != formatTable {
		return err
	}
	ui.NewPrinter(cmd.ErrOrStderr()).PrintError(title, err, troubleshootingFor(err))
	return errReported
}

func troubleshootingFor(err error) []string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return ui.ConnectionTroubleshooting
	case protocol.IsRetryable(err):
		return []string{"The gateway sent a corrupt or unexpected answer; try again"}
	default:
		return nil
	}
}

func newPollCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Read live data once",
		Long: `Read live data from the gateway once and print it.

Sensor battery and signal observations from the sensor ID command are
merged in. With --archive the observations are also stored in a SQLite
archive.`,
		Example: `  gw1000 poll --gateway 192.168.2.20
  gw1000 poll -g garden -o json
  gw1000 poll --archive ~/weather.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, addr, err := a.newCollector()
			if err != nil {
				return err
			}

			obs, err := coll.LiveData(cmd.Context())
			if err != nil {
				return a.fail(cmd, "Poll "+addr, err)
			}

			if path := a.v.GetString("archive"); path != "" {
				store, err := archive.Open(path)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(cmd.Context(), time.Now(), obs); err != nil {
					return err
				}
			}

			return a.render(cmd, obs)
		},
	}
	cmd.Flags().String("archive", "", "Also store the observations in this SQLite archive")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show live data in a continuously updated view",
		Example: `  gw1000 watch -g garden
  gw1000 watch --interval 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, addr, err := a.newCollector()
			if err != nil {
				return err
			}
			return ui.RunWatch(cmd.Context(), ui.WatchConfig{
				Gateway:  addr,
				Interval: a.pollInterval(),
				Fetch:    coll.LiveData,
				Sensors:  coll.Registry().Connected,
			})
		},
	}
	cmd.Flags().Duration("interval", 0, "Time between polls (default from config, 20s)")
	return cmd
}

func newSensorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensors",
		Short: "Show sensor slots with battery and signal state",
		Long: `Show the gateway's sensor slots with device id, signal and battery state.

By default only slots with a paired sensor are shown. --table prints the
built-in sensor table instead and does not contact a gateway.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.v.GetBool("table") {
				return printSensorTable(a, cmd)
			}

			coll, addr, err := a.newCollector()
			if err != nil {
				return err
			}
			states, err := coll.SensorStates(cmd.Context())
			if err != nil {
				return a.fail(cmd, "Read sensors from "+addr, err)
			}

			if !a.v.GetBool("all") {
				paired := states[:0]
				for _, st := range states {
					if st.Registered() {
						paired = append(paired, st)
					}
				}
				states = paired
			}
			return a.render(cmd, states)
		},
	}
	cmd.Flags().Bool("all", false, "Include searching and disabled slots")
	cmd.Flags().Bool("table", false, "Print the built-in sensor table")
	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show gateway firmware, MAC and system settings",
		Long: `Show the gateway's firmware version, MAC address and system parameters,
and remember the gateway in the configuration file.

--all also reads upload service settings, rain totals, calibration and
sensor offsets. Passwords and keys are masked unless --show-secrets is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(cmd)
		},
	}
	cmd.Flags().Bool("all", false, "Read every setting the gateway exposes")
	cmd.Flags().Bool("show-secrets", false, "Do not mask passwords and keys")
	return cmd
}

// gatewayInfo is the structured form of the info command's output
type gatewayInfo struct {
	Gateway  string                `json:"gateway" yaml:"gateway"`
	Firmware string                `json:"firmware" yaml:"firmware"`
	MAC      string                `json:"mac" yaml:"mac"`
	System   protocol.SystemParams `json:"system" yaml:"system"`
	Settings map[string]any        `json:"settings,omitempty" yaml:"settings,omitempty"`
}

func (a *app) runInfo(cmd *cobra.Command) error {
	coll, addr, err := a.newCollector()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	info := gatewayInfo{Gateway: addr}
	if info.Firmware, err = coll.Firmware(ctx); err != nil {
		return a.fail(cmd, "Read gateway info from "+addr, err)
	}
	if info.MAC, err = coll.StationMAC(ctx); err != nil {
		return a.fail(cmd, "Read gateway info from "+addr, err)
	}
	if info.System, err = coll.SystemParams(ctx); err != nil {
		return a.fail(cmd, "Read gateway info from "+addr, err)
	}
	if a.v.GetBool("all") {
		info.Settings = readSettings(ctx, coll, !a.v.GetBool("show-secrets"))
	}

	host, _, _ := net.SplitHostPort(addr)
	a.registry.UpdateGatewaySeen(info.MAC, host, info.Firmware)
	if err := a.saveRegistry(); err != nil {
		logging.Warn("Failed to save configuration", zap.Error(err))
	}

	format, err := a.format()
	if err != nil {
		return err
	}
	if format != formatTable {
		return writeValue(cmd.OutOrStdout(), format, info)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Gateway info", "gw1000 info", map[string]string{"Gateway": addr})
	p.PrintSuccess("Gateway reachable", map[string]string{
		"Firmware":    info.Firmware,
		"MAC":         info.MAC,
		"Frequency":   info.System.FrequencyName(),
		"Sensor type": fmt.Sprintf("%d", info.System.SensorType),
		"Gateway UTC": time.Unix(int64(info.System.UTC), 0).UTC().Format(time.RFC3339),
		"Timezone":    fmt.Sprintf("index %d, DST %t", info.System.TimezoneIndex, info.System.DSTStatus),
	})
	if info.Settings == nil {
		return nil
	}
	failed := make(map[string]string)
	for name, v := range info.Settings {
		if e, ok := v.(map[string]string); ok {
			failed[name] = e["error"]
		}
	}
	if len(failed) > 0 {
		p.PrintWarning("Some settings could not be read", failed)
	}
	return writeValue(cmd.OutOrStdout(), formatYAML, info.Settings)
}

// readSettings reads every settings command. A command the firmware does
// not support is recorded as an error entry rather than failing the lot.
func readSettings(ctx context.Context, coll *collector.Collector, mask bool) map[string]any {
	settings := make(map[string]any)
	record := func(name string, v any, err error) {
		if err != nil {
			logging.Warn("Failed to read setting", zap.String("setting", name), zap.Error(err))
			settings[name] = map[string]string{"error": err.Error()}
			return
		}
		settings[name] = v
	}
	secret := func(s string) string {
		if mask {
			return protocol.Obfuscate(s)
		}
		return s
	}

	ecowitt, err := coll.Ecowitt(ctx)
	record("ecowitt", ecowitt, err)

	wu, err := coll.Wunderground(ctx)
	wu.Password = secret(wu.Password)
	record("wunderground", wu, err)

	wow, err := coll.WOW(ctx)
	wow.Password = secret(wow.Password)
	record("wow", wow, err)

	wc, err := coll.Weathercloud(ctx)
	wc.Key = secret(wc.Key)
	record("weathercloud", wc, err)

	custom, err := coll.Customized(ctx)
	custom.Password = secret(custom.Password)
	record("customized", custom, err)

	paths, err := coll.UserPath(ctx)
	record("user_path", paths, err)

	rain, err := coll.RainData(ctx)
	record("rain", rain, err)

	calib, err := coll.Calibration(ctx)
	record("calibration", calib, err)

	gain, err := coll.Gain(ctx)
	record("gain", gain, err)

	mulch, err := coll.MulchOffsets(ctx)
	record("mulch_offsets", mulch, err)

	pm25, err := coll.PM25Offsets(ctx)
	record("pm25_offsets", pm25, err)

	co2, err := coll.CO2Offset(ctx)
	record("co2_offset", co2, err)

	soil, err := coll.SoilCalibration(ctx)
	record("soil_calibration", soil, err)
	return settings
}

// isWriteCommand reports whether a command changes gateway state
func isWriteCommand(name string) bool {
	for _, marker := range []string{"_WRITE_", "_SET_", "_REBOOT", "_RESET"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// sentFrame is the structured form of the send command's output
type sentFrame struct {
	Command string `json:"command" yaml:"command"`
	Payload string `json:"payload" yaml:"payload"`
	Decoded any    `json:"decoded,omitempty" yaml:"decoded,omitempty"`
}

func newSendCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <command> [payload-hex]",
		Short: "Send any API command and print the response",
		Long: `Send an API command with an optional hex payload and print the response
payload. Commands that change gateway settings ask for confirmation unless
--yes is given.`,
		Example: `  gw1000 send CMD_READ_RAINDATA
  gw1000 send CMD_WRITE_SSSS 00 00 5F 4E 2A 1B 00 01 --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			code, err := protocol.LookupCommand(name)
			if err != nil {
				return err
			}
			payload, err := protocol.ParseHex(strings.Join(args[1:], ""))
			if err != nil {
				return err
			}

			if isWriteCommand(name) && !a.v.GetBool("yes") {
				if !ui.ConfirmWrite(cmd.InOrStdin(), cmd.ErrOrStderr(), name) {
					return nil
				}
			}

			coll, addr, err := a.newCollector()
			if err != nil {
				return err
			}
			resp, err := coll.Send(cmd.Context(), code, payload)
			if err != nil {
				return a.fail(cmd, fmt.Sprintf("Send %s to %s", name, addr), err)
			}

			out := sentFrame{Command: name, Payload: protocol.BytesToHex(resp, " ", true)}
			format, err := a.format()
			if err != nil {
				return err
			}
			if format == formatTable {
				fmt.Fprintln(cmd.OutOrStdout(), out.Payload)
				return nil
			}
			if frame, err := protocol.BuildFrameCode(code, resp); err == nil {
				if decoded, err := collector.DecodeResponse(code, frame, time.Now()); err == nil {
					out.Decoded = decoded
				}
			}
			return writeValue(cmd.OutOrStdout(), format, out)
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask before sending write commands")
	return cmd
}
