// Package config provides user configuration management for the gw1000 tools.
//
// This package manages a YAML-based configuration file that stores the
// gateways the tools have talked to (keyed by station MAC address) and
// application preferences such as the poll interval, MQTT publisher and
// SQLite archive settings. Command line flags and GW1000_* environment
// variables override these values in cmd/gw1000.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/gw1000/config.yaml or $HOME/.config/gw1000/config.yaml
//   - macOS: $XDG_CONFIG_HOME/gw1000/config.yaml or $HOME/.config/gw1000/config.yaml
//   - Windows: %AppData%\gw1000\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores the MQTT broker password. It is read
// from GW1000_MQTT_PASSWORD when needed.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//
//	registry.UpdateGatewaySeen("DC:4F:22:58:A2:0B", "192.168.2.20", "GW1000_V1.6.1")
//	registry.SetGatewayNickname("DC:4F:22:58:A2:0B", "garden")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
// Saves go through a temporary file and a rename, so a crash never leaves a
// half written file behind.
package config
