package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "gw1000"
	configFile = "config.yaml"
)

// fileMutex serialises writers within the process
var fileMutex sync.Mutex

// fileHeader is written above the YAML document; %s is the file's path
const fileHeader = `# gw1000 configuration
# Gateways are added by 'gw1000 info' and keyed by station MAC address.
#
# MQTT passwords are never stored here; set GW1000_MQTT_PASSWORD.
#
# Location: %s

`

// GetConfigDir returns the per-user configuration directory:
//   - Windows: %AppData%\gw1000
//   - elsewhere: $XDG_CONFIG_HOME/gw1000, or $HOME/.config/gw1000
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		return filepath.Join(base, appName), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry loads the registry from the default path.
// A missing file yields a new default registry.
func LoadRegistry() (*Registry, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadRegistryFrom(path)
}

// LoadRegistryFrom loads the registry at configPath.
// A missing file yields a new default registry.
func LoadRegistryFrom(configPath string) (*Registry, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", registry.Version)
	}

	registry.applyDefaults()
	return &registry, nil
}

// Save writes the registry to the default path.
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return r.SaveTo(path)
}

// SaveTo writes the registry to configPath through a temporary file in the
// same directory, so readers never see a partial file.
func (r *Registry) SaveTo(configPath string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, fileHeader, configPath)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+configFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), configPath); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// CreateDefaultConfig writes a configuration file with an example gateway to
// configPath, or to the default location when configPath is empty.
func CreateDefaultConfig(configPath string) error {
	registry := NewRegistry()
	registry.Gateways["DC:4F:22:58:A2:0B"] = &Gateway{
		Nickname: "garden",
		IP:       "192.168.2.20",
		Port:     DefaultPort,
	}
	registry.Preferences.DefaultGateway = "garden"

	if configPath == "" {
		return registry.Save()
	}
	return registry.SaveTo(configPath)
}
