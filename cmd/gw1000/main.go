// Gw1000 is a command line client for Ecowitt GW1000 family weather gateways.
//
// It speaks the gateway's binary TCP API to read live sensor data, sensor
// battery and signal states and gateway settings, and can decode or build
// API frames offline for debugging.
//
// Usage:
//
//	gw1000 [command] [flags]
//
// Every flag can also be set through a GW1000_* environment variable, for
// example GW1000_GATEWAY=192.168.2.20 or GW1000_LOG_LEVEL=debug.
// See 'gw1000 --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/muurk/gw1000/internal/config"
	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app holds state shared by every subcommand
type app struct {
	v        *viper.Viper
	registry *config.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "gw1000",
		Short: "GW1000 weather gateway client",
		Long: `A command line client for Ecowitt GW1000, GW1100 and compatible gateways.

Reads live observations, sensor states and settings over the gateway's
binary TCP API (port 45000), and decodes or builds API frames offline.

Flags can also be set with GW1000_* environment variables, and the
gateway may be given by nickname from the configuration file.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringP("gateway", "g", "", "Gateway host, host:port, nickname or MAC (default from config)")
	flags.Int("port", config.DefaultPort, "Gateway API port when --gateway has none")
	flags.Duration("timeout", 0, "Socket timeout (default from config, 2s)")
	flags.StringP("format", "o", formatTable, "Output format (table, json, yaml)")
	flags.String("log-level", "", "Log level (debug, info, warn, error); silent when empty")
	flags.String("config", "", "Configuration file (default $XDG_CONFIG_HOME/gw1000/config.yaml)")

	rootCmd.AddCommand(
		newDecodeCmd(a),
		newBuildCmd(a),
		newCommandsCmd(a),
		newFieldsCmd(a),
		newSensorsCmd(a),
		newPollCmd(a),
		newWatchCmd(a),
		newInfoCmd(a),
		newSendCmd(a),
		newPublishCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// init binds flags and GW1000_* variables, starts logging and loads the
// configuration file
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("GW1000")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := logging.Initialize(a.v.GetString("log-level")); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	var err error
	if path := a.v.GetString("config"); path != "" {
		a.registry, err = config.LoadRegistryFrom(path)
	} else {
		a.registry, err = config.LoadRegistry()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}

// saveRegistry writes the configuration back where it was loaded from
func (a *app) saveRegistry() error {
	if path := a.v.GetString("config"); path != "" {
		return a.registry.SaveTo(path)
	}
	return a.registry.Save()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gw1000 %s\n", version.Full())
		},
	}
}
