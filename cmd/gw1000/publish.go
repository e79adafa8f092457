package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/archive"
	"github.com/muurk/gw1000/internal/collector"
	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/publish"
)

func newPublishCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Poll the gateway and publish observations to MQTT",
		Long: `Poll live data on an interval and publish every poll to an MQTT broker.

Each poll is sent as a JSON document to <topic>/loop. With --per-field each
observation is also published as a retained message to <topic>/<name>.
Broker settings default to the mqtt section of the configuration file. The
broker password is read from GW1000_MQTT_PASSWORD and is never stored.`,
		Example: `  gw1000 publish --broker tcp://localhost:1883
  gw1000 publish -g garden --topic home/weather --per-field
  gw1000 publish --once`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPublish(cmd)
		},
	}
	cmd.Flags().String("broker", "", "MQTT broker URL (default from config)")
	cmd.Flags().String("topic", "", "Topic prefix (default from config, weather/gw1000)")
	cmd.Flags().String("client-id", "", "MQTT client id (default gw1000-<hostname>)")
	cmd.Flags().String("username", "", "MQTT username")
	cmd.Flags().Bool("per-field", false, "Also publish one retained message per observation")
	cmd.Flags().Duration("interval", 0, "Time between polls (default from config, 20s)")
	cmd.Flags().Bool("once", false, "Publish a single poll and exit")
	cmd.Flags().String("archive", "", "Also store every poll in this SQLite archive (default from config)")
	return cmd
}

// publishConfig merges flags over the mqtt preferences
func (a *app) publishConfig() publish.Config {
	prefs := a.registry.Preferences.MQTT
	cfg := publish.Config{
		Broker:   prefs.Broker,
		ClientID: prefs.ClientID,
		Username: prefs.Username,
		Password: a.v.GetString("mqtt-password"),
		Topic:    prefs.Topic,
		PerField: prefs.PerField || a.v.GetBool("per-field"),
		Timeout:  a.timeout(),
	}
	if s := a.v.GetString("broker"); s != "" {
		cfg.Broker = s
	}
	if s := a.v.GetString("topic"); s != "" {
		cfg.Topic = s
	}
	if s := a.v.GetString("client-id"); s != "" {
		cfg.ClientID = s
	}
	if s := a.v.GetString("username"); s != "" {
		cfg.Username = s
	}
	return cfg
}

func (a *app) runPublish(cmd *cobra.Command) error {
	coll, addr, err := a.newCollector()
	if err != nil {
		return err
	}

	cfg := a.publishConfig()
	pub, err := publish.Connect(cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	var store *archive.Store
	path := a.v.GetString("archive")
	if path == "" {
		path = a.registry.Preferences.ArchivePath
	}
	if path != "" {
		if store, err = archive.Open(path); err != nil {
			return err
		}
		defer store.Close()
	}

	ctx := cmd.Context()
	if a.v.GetBool("once") {
		return publishOnce(ctx, coll, pub, store)
	}

	interval := a.pollInterval()
	fmt.Fprintf(cmd.ErrOrStderr(), "Publishing %s to %s/%s every %s (Ctrl+C to stop)\n",
		addr, cfg.Broker, cfg.Topic, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := publishOnce(ctx, coll, pub, store); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logging.Warn("Publish failed", zap.String("gateway", addr), zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s  %v\n", time.Now().Format(time.TimeOnly), err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func publishOnce(ctx context.Context, coll *collector.Collector, pub *publish.Publisher, store *archive.Store) error {
	obs, err := coll.LiveData(ctx)
	if err != nil {
		return err
	}
	if err := pub.Publish(ctx, obs); err != nil {
		return err
	}
	if store != nil {
		return store.Save(ctx, time.Now(), obs)
	}
	return nil
}
