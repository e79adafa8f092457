package config

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// ErrNoGateway is returned by ResolveGateway when no gateway was given and
// no default is configured
var ErrNoGateway = errors.New("no gateway given and no default gateway configured")

// Defaults applied to new registries and to missing preference values
const (
	DefaultPort         = 45000
	DefaultPollInterval = 20 // seconds
	DefaultTimeout      = 2  // seconds
	DefaultTopic        = "weather/gw1000"
	DefaultListenAddr   = ":8080"
)

// Registry represents the entire user configuration file.
// This stores known gateways and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Gateways    map[string]*Gateway `yaml:"gateways,omitempty"` // Keyed by station MAC address
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Gateway represents what we know about a single GW1000 gateway.
// This is keyed by the gateway's MAC address in the Registry.
type Gateway struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	IP       string    `yaml:"ip,omitempty"`        // Last known IP address
	Port     int       `yaml:"port,omitempty"`      // API port, 45000 unless changed
	Firmware string    `yaml:"firmware,omitempty"`  // Last reported firmware version
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful exchange
}

// Address returns the gateway's host:port, or "" if no IP is known
func (g *Gateway) Address() string {
	if g == nil || g.IP == "" {
		return ""
	}
	port := g.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(g.IP, strconv.Itoa(port))
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultGateway string     `yaml:"default_gateway,omitempty"` // MAC of the gateway used when none is given
	PollInterval   int        `yaml:"poll_interval"`             // Seconds between live data polls
	Timeout        int        `yaml:"timeout"`                   // Socket timeout in seconds
	ListenAddr     string     `yaml:"listen_addr,omitempty"`     // Relay server listen address
	ArchivePath    string     `yaml:"archive_path,omitempty"`    // SQLite archive, empty to disable
	MQTT           *MQTTPrefs `yaml:"mqtt,omitempty"`
}

// MQTTPrefs holds publisher settings.
// Note: Broker passwords are NEVER stored - use GW1000_MQTT_PASSWORD.
type MQTTPrefs struct {
	Broker   string `yaml:"broker,omitempty"`    // e.g. tcp://localhost:1883
	Topic    string `yaml:"topic"`               // Topic prefix
	ClientID string `yaml:"client_id,omitempty"` // Defaults to gw1000-<hostname>
	Username string `yaml:"username,omitempty"`
	PerField bool   `yaml:"per_field"` // Also publish one retained message per observation
}

func defaultPreferences() *Preferences {
	return &Preferences{
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
		ListenAddr:   DefaultListenAddr,
		MQTT: &MQTTPrefs{
			Topic: DefaultTopic,
		},
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Gateways:    make(map[string]*Gateway),
		Preferences: defaultPreferences(),
	}
}

// applyDefaults fills in zero values left by an older or hand-edited file
func (r *Registry) applyDefaults() {
	if r.Gateways == nil {
		r.Gateways = make(map[string]*Gateway)
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
		return
	}
	p := r.Preferences
	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.ListenAddr == "" {
		p.ListenAddr = DefaultListenAddr
	}
	if p.MQTT == nil {
		p.MQTT = &MQTTPrefs{}
	}
	if p.MQTT.Topic == "" {
		p.MQTT.Topic = DefaultTopic
	}
}

// GetGateway retrieves gateway metadata by MAC address.
// Returns nil if the gateway doesn't exist in the registry.
func (r *Registry) GetGateway(mac string) *Gateway {
	return r.Gateways[mac]
}

// EnsureGateway ensures a gateway entry exists in the registry.
// Returns the gateway entry (existing or newly created).
func (r *Registry) EnsureGateway(mac string) *Gateway {
	if r.Gateways == nil {
		r.Gateways = make(map[string]*Gateway)
	}

	if gw, exists := r.Gateways[mac]; exists {
		return gw
	}

	gw := &Gateway{Port: DefaultPort}
	r.Gateways[mac] = gw
	return gw
}

// UpdateGatewaySeen records a successful exchange with a gateway.
// Empty ip or firmware leave the stored values untouched.
func (r *Registry) UpdateGatewaySeen(mac, ip, firmware string) {
	gw := r.EnsureGateway(mac)
	gw.LastSeen = time.Now()
	if ip != "" {
		gw.IP = ip
	}
	if firmware != "" {
		gw.Firmware = firmware
	}
}

// SetGatewayNickname sets a user-friendly nickname for a gateway.
func (r *Registry) SetGatewayNickname(mac, nickname string) {
	r.EnsureGateway(mac).Nickname = nickname
}

// FindGateway looks a gateway up by MAC address or nickname
func (r *Registry) FindGateway(key string) (string, *Gateway) {
	if gw, ok := r.Gateways[key]; ok {
		return key, gw
	}
	for mac, gw := range r.Gateways {
		if gw.Nickname != "" && gw.Nickname == key {
			return mac, gw
		}
	}
	return "", nil
}

// DefaultGatewayAddress returns host:port of the preferred gateway, or ""
func (r *Registry) DefaultGatewayAddress() string {
	if r.Preferences == nil || r.Preferences.DefaultGateway == "" {
		return ""
	}
	_, gw := r.FindGateway(r.Preferences.DefaultGateway)
	return gw.Address()
}

// ResolveGateway turns a user supplied gateway into host:port. key may be a
// nickname or MAC address known to the registry, a host:port, or a bare host
// which gets port (DefaultPort if zero). An empty key selects the default
// gateway.
func (r *Registry) ResolveGateway(key string, port int) (string, error) {
	if key == "" {
		if addr := r.DefaultGatewayAddress(); addr != "" {
			return addr, nil
		}
		return "", ErrNoGateway
	}

	if _, gw := r.FindGateway(key); gw != nil {
		if addr := gw.Address(); addr != "" {
			return addr, nil
		}
	}

	if _, _, err := net.SplitHostPort(key); err == nil {
		return key, nil
	}
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(key, strconv.Itoa(port)), nil
}
