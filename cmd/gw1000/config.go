package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/gw1000/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage known gateways and preferences in the configuration file.

Gateways are remembered by MAC address whenever 'gw1000 info' reaches them,
and can be given a nickname to use with --gateway.`,
	}
	cmd.AddCommand(
		newConfigInitCmd(a),
		newConfigShowCmd(a),
		newConfigPathCmd(a),
		newConfigDefaultCmd(a),
		newConfigNameCmd(a),
	)
	return cmd
}

func (a *app) configPath() (string, error) {
	if path := a.v.GetString("config"); path != "" {
		return path, nil
	}
	return config.GetConfigPath()
}

func newConfigInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(a.v.GetString("config")); err != nil {
				return err
			}
			path, err := a.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			if format == formatTable {
				format = formatYAML
			}
			return writeValue(cmd.OutOrStdout(), format, a.registry)
		},
	}
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <mac|nickname>",
		Short: "Choose the gateway used when --gateway is not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, gw := a.registry.FindGateway(args[0]); gw == nil {
				return fmt.Errorf("unknown gateway %q; run 'gw1000 info -g <host>' first", args[0])
			}
			a.registry.Preferences.DefaultGateway = args[0]
			return a.saveRegistry()
		},
	}
}

func newConfigNameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "name <mac> <nickname>",
		Short: "Give a known gateway a nickname",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mac, gw := a.registry.FindGateway(args[0])
			if gw == nil {
				return fmt.Errorf("unknown gateway %q", args[0])
			}
			if other, _ := a.registry.FindGateway(args[1]); other != "" && other != mac {
				return fmt.Errorf("nickname %q is already used by %s", args[1], other)
			}
			a.registry.SetGatewayNickname(mac, args[1])
			return a.saveRegistry()
		},
	}
}
