// Package mqtt publishes decoded attribute readings to a broker.
package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"enipgo/config"
	"enipgo/transport"
)

// DebugLogger is an interface for debug logging.
type DebugLogger interface {
	LogMQTT(format string, args ...interface{})
}

var debugLog DebugLogger

// SetDebugLogger sets the debug logger for MQTT.
func SetDebugLogger(logger DebugLogger) {
	debugLog = logger
}

func logMQTT(format string, args ...interface{}) {
	if debugLog != nil {
		debugLog.LogMQTT(format, args...)
	}
}

// Publisher handles one broker connection and publishes AttributeReadings as
// retained JSON messages under "{namespace}/{device}/{attribute}".
type Publisher struct {
	namespace string
	config    config.MQTTConfig
	client    pahomqtt.Client
	running   bool
	mu        sync.RWMutex

	lastValues map[string]interface{}
	lastMu     sync.RWMutex
}

// Message is the JSON structure published to MQTT for one AttributeReading.
type Message struct {
	Device    string      `json:"device"`
	Path      string      `json:"path"`
	Value     interface{} `json:"value,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewPublisher creates a publisher for a single configured broker, scoped
// under namespace.
func NewPublisher(namespace string, cfg config.MQTTConfig) *Publisher {
	return &Publisher{
		namespace:  namespace,
		config:     cfg,
		lastValues: make(map[string]interface{}),
	}
}

// Name returns the publisher's configured broker name.
func (p *Publisher) Name() string {
	return p.config.Name
}

// IsRunning returns whether the publisher is connected.
func (p *Publisher) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Start connects to the MQTT broker.
func (p *Publisher) Start() error {
	p.mu.RLock()
	if p.running {
		p.mu.RUnlock()
		return nil
	}
	p.mu.RUnlock()

	opts := pahomqtt.NewClientOptions()
	if p.config.UseTLS {
		opts.AddBroker(fmt.Sprintf("ssl://%s:%d", p.config.Broker, p.config.Port))
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		opts.AddBroker(fmt.Sprintf("tcp://%s:%d", p.config.Broker, p.config.Port))
	}
	opts.SetClientID(p.config.ClientID)
	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
		opts.SetPassword(p.config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	client := pahomqtt.NewClient(opts)
	logMQTT("Attempting to connect to MQTT broker %s:%d", p.config.Broker, p.config.Port)

	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		logMQTT("MQTT connection timeout")
		return fmt.Errorf("mqtt: connection timeout")
	}
	if token.Error() != nil {
		logMQTT("MQTT connection error: %v", token.Error())
		return token.Error()
	}
	logMQTT("Successfully connected to MQTT broker %s:%d", p.config.Broker, p.config.Port)

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		client.Disconnect(100)
		return nil
	}
	p.client = client
	p.running = true
	p.mu.Unlock()

	p.lastMu.Lock()
	p.lastValues = make(map[string]interface{})
	p.lastMu.Unlock()

	return nil
}

// Stop disconnects from the MQTT broker.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if !p.running || p.client == nil {
		p.mu.Unlock()
		return
	}
	p.running = false
	client := p.client
	p.client = nil
	p.mu.Unlock()

	client.Disconnect(500)
}

// Topic constructs the full retained-message topic for a reading.
func (p *Publisher) Topic(r transport.AttributeReading) string {
	return fmt.Sprintf("%s/%s/%s", p.namespace, r.Device, r.Path)
}

// Publish sends an AttributeReading if it is connected and the value has
// changed since the last publish for the same device+path (last-value
// dedup). Returns whether a message was actually sent.
func (p *Publisher) Publish(r transport.AttributeReading) bool {
	p.mu.RLock()
	running := p.running
	client := p.client
	p.mu.RUnlock()
	if !running || client == nil {
		return false
	}

	cacheKey := r.Device + "/" + r.Path
	current := fmt.Sprintf("%v|%v", r.Value, r.Err)

	p.lastMu.RLock()
	last, exists := p.lastValues[cacheKey]
	p.lastMu.RUnlock()
	if exists && last == current {
		return false
	}

	msg := Message{
		Device:    r.Device,
		Path:      r.Path,
		Value:     r.Value,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
	if r.Err != nil {
		msg.Error = r.Err.Error()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		logMQTT("Publish: marshal error: %v", err)
		return false
	}

	token := client.Publish(p.Topic(r), 1, true, payload)
	if !token.WaitTimeout(2 * time.Second) {
		logMQTT("Publish: timeout for %s", p.Topic(r))
		return false
	}
	if token.Error() != nil {
		logMQTT("Publish: error for %s: %v", p.Topic(r), token.Error())
		return false
	}

	p.lastMu.Lock()
	p.lastValues[cacheKey] = current
	p.lastMu.Unlock()
	return true
}

// Address returns the broker address string.
func (p *Publisher) Address() string {
	if p.config.UseTLS {
		return fmt.Sprintf("ssl://%s:%d", p.config.Broker, p.config.Port)
	}
	return fmt.Sprintf("tcp://%s:%d", p.config.Broker, p.config.Port)
}

// Config returns the publisher's configuration.
func (p *Publisher) Config() config.MQTTConfig {
	return p.config
}
