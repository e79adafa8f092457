// Gw1000-server polls a GW1000 weather gateway and relays its observations.
//
// Every poll is served as JSON on /api/latest, pushed to websocket clients on
// /ws, and optionally published to MQTT and stored in a SQLite archive.
// Sensor battery and signal states are served on /api/sensors.
//
// Usage:
//
//	gw1000-server server [flags]
//
// Flags can also be set through GW1000_* environment variables.
// See 'gw1000-server server --help' for available options.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/archive"
	"github.com/muurk/gw1000/internal/collector"
	"github.com/muurk/gw1000/internal/config"
	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/publish"
	"github.com/muurk/gw1000/internal/sensors"
	"github.com/muurk/gw1000/internal/server"
	"github.com/muurk/gw1000/internal/station"
	"github.com/muurk/gw1000/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Sync()
}

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "gw1000-server",
	Short: "GW1000 observation relay",
	Long: `A standalone server that polls a GW1000 weather gateway and relays its
observations over HTTP, websocket and MQTT.

For one-off reads and gateway settings use the 'gw1000' client.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the relay server",
	Long: `Start polling the gateway and serving its observations.

Endpoints:
  GET /api/latest    latest poll as JSON
  GET /api/sensors   sensor slots with battery and signal state
  GET /healthz       poll status and version
  GET /ws            websocket stream, one message per poll

Gateway, interval, listen address, MQTT and archive settings default to the
configuration file shared with the 'gw1000' client. The MQTT password is read
from GW1000_MQTT_PASSWORD.`,
	Example: `  # Poll the default gateway from the config file
  gw1000-server server

  # Poll a gateway by address every 30 seconds
  gw1000-server server --gateway 192.168.2.20 --interval 30s

  # Publish to MQTT and keep an archive
  gw1000-server server --broker tcp://localhost:1883 --archive /var/lib/gw1000/archive.db

  # Serve over TLS
  gw1000-server server --listen :8443 --cert cert.pem --key key.pem`,
	RunE: runServer,
}

func init() {
	f := serverCmd.Flags()
	f.String("listen", "", "Listen address (default from config, :8080)")
	f.StringP("gateway", "g", "", "Gateway host, host:port, nickname or MAC (default from config)")
	f.Int("port", config.DefaultPort, "Gateway API port when --gateway has none")
	f.Duration("interval", 0, "Time between polls (default from config, 20s)")
	f.Duration("timeout", 0, "Gateway socket timeout (default from config, 2s)")
	f.String("broker", "", "MQTT broker URL, empty to disable (default from config)")
	f.String("topic", "", "MQTT topic prefix (default from config)")
	f.Bool("per-field", false, "Also publish one retained MQTT message per observation")
	f.String("archive", "", "SQLite archive path, empty to disable (default from config)")
	f.String("cert", "", "Path to TLS certificate file (optional)")
	f.String("key", "", "Path to TLS private key file (optional)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("config", "", "Configuration file (default $XDG_CONFIG_HOME/gw1000/config.yaml)")
}

func runServer(cmd *cobra.Command, args []string) error {
	v.SetEnvPrefix("GW1000")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := logging.Initialize(v.GetString("log-level")); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	var (
		registry *config.Registry
		err      error
	)
	if path := v.GetString("config"); path != "" {
		registry, err = config.LoadRegistryFrom(path)
	} else {
		registry, err = config.LoadRegistry()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	prefs := registry.Preferences

	addr, err := registry.ResolveGateway(v.GetString("gateway"), v.GetInt("port"))
	if err != nil {
		return err
	}

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		timeout = time.Duration(prefs.Timeout) * time.Second
	}
	interval := v.GetDuration("interval")
	if interval <= 0 {
		interval = time.Duration(prefs.PollInterval) * time.Second
	}

	sensorRegistry := sensors.NewRegistry()
	cfg := &server.Config{
		ListenAddr:   firstNonEmpty(v.GetString("listen"), prefs.ListenAddr, config.DefaultListenAddr),
		PollInterval: interval,
		CertPath:     v.GetString("cert"),
		KeyPath:      v.GetString("key"),
		Poller:       collector.New(station.NewClient(addr, timeout), collector.WithRegistry(sensorRegistry)),
		Sensors:      sensorRegistry,
	}

	if broker := firstNonEmpty(v.GetString("broker"), prefs.MQTT.Broker); broker != "" {
		pub, err := publish.Connect(publish.Config{
			Broker:   broker,
			ClientID: prefs.MQTT.ClientID,
			Username: prefs.MQTT.Username,
			Password: v.GetString("mqtt-password"),
			Topic:    firstNonEmpty(v.GetString("topic"), prefs.MQTT.Topic),
			PerField: prefs.MQTT.PerField || v.GetBool("per-field"),
		})
		if err != nil {
			return err
		}
		defer pub.Close()
		cfg.Publisher = pub
	}

	if path := firstNonEmpty(v.GetString("archive"), prefs.ArchivePath); path != "" {
		store, err := archive.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Archive = store
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logging.Info("Relay configured",
		zap.String("gateway", addr),
		zap.String("listen", cfg.ListenAddr),
		zap.Duration("interval", interval),
		zap.Bool("mqtt", cfg.Publisher != nil),
		zap.Bool("archive", cfg.Archive != nil),
	)

	return srv.Start()
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if s != "" {
			return s
		}
	}
	return ""
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gw1000-server %s\n", version.Full())
	},
}
