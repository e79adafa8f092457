package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/protocol"
)

// LoopTopic is appended to the topic prefix for whole-poll documents
const LoopTopic = "loop"

// Config holds publisher settings
type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
	Topic    string // Topic prefix, e.g. weather/gw1000
	QoS      byte
	PerField bool          // Also publish one retained message per observation
	Timeout  time.Duration // Connect and publish timeout
}

// Publisher sends observations to an MQTT broker
type Publisher struct {
	client mqtt.Client
	cfg    Config
}

// Connect dials the broker and returns a ready publisher
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("no MQTT broker configured")
	}
	if cfg.ClientID == "" {
		host, _ := os.Hostname()
		cfg.ClientID = "gw1000-" + host
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, token.Error())
	}

	logging.Info("Connected to MQTT broker",
		zap.String("broker", cfg.Broker),
		zap.String("client_id", cfg.ClientID),
	)

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing paho client
func NewWithClient(client mqtt.Client, cfg Config) *Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Publisher{client: client, cfg: cfg}
}

// Publish sends obs as one JSON document to <topic>/loop and, in per-field
// mode, each non-nil value as a retained message to <topic>/<name>.
func (p *Publisher) Publish(ctx context.Context, obs protocol.Observations) error {
	doc, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to encode observations: %w", err)
	}

	if err := p.send(ctx, p.topic(LoopTopic), false, doc); err != nil {
		return err
	}

	if !p.cfg.PerField {
		return nil
	}

	for _, name := range protocol.SortedKeys(obs) {
		value, ok := FormatValue(obs[name])
		if !ok {
			continue
		}
		if err := p.send(ctx, p.topic(name), true, []byte(value)); err != nil {
			return err
		}
	}

	logging.Debug("Observations published",
		zap.String("topic", p.cfg.Topic),
		zap.Int("count", len(obs)),
	)
	return nil
}

func (p *Publisher) topic(suffix string) string {
	if p.cfg.Topic == "" {
		return suffix
	}
	return p.cfg.Topic + "/" + suffix
}

func (p *Publisher) send(ctx context.Context, topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, p.cfg.QoS, retained, payload)

	timer := time.NewTimer(p.cfg.Timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish to %s timed out after %s", topic, p.cfg.Timeout)
	}
}

// Close disconnects from the broker, allowing in-flight messages 250ms
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// FormatValue renders an observation value as a plain MQTT payload.
// ok is false for nil and non-numeric values.
func FormatValue(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	default:
		return "", false
	}
}
