// Package kafka produces decoded attribute readings onto a topic.
package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"enipgo/config"
	"enipgo/logging"
	"enipgo/transport"
)

// ConnectionStatus represents the state of a Kafka connection.
type ConnectionStatus int

const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnected
	StatusError
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// record is the JSON structure written to the configured topic for one
// AttributeReading, keyed by device name.
type record struct {
	Device    string      `json:"device"`
	Path      string      `json:"path"`
	Value     interface{} `json:"value,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Producer writes AttributeReadings as JSON to one configured cluster+topic.
type Producer struct {
	namespace string
	config    config.KafkaConfig

	mu      sync.RWMutex
	writer  *kafka.Writer
	status  ConnectionStatus
	lastErr error

	lastMu     sync.RWMutex
	lastValues map[string]string
}

// NewProducer creates a producer for a single configured cluster.
func NewProducer(namespace string, cfg config.KafkaConfig) *Producer {
	return &Producer{
		namespace:  namespace,
		config:     cfg,
		status:     StatusDisconnected,
		lastValues: make(map[string]string),
	}
}

// Name returns the producer's configured cluster name.
func (p *Producer) Name() string { return p.config.Name }

// Status returns the current connection status.
func (p *Producer) Status() ConnectionStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// IsRunning reports whether the producer has an active writer.
func (p *Producer) IsRunning() bool {
	return p.Status() == StatusConnected
}

// Start verifies connectivity to the cluster and builds the topic writer.
func (p *Producer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	logging.DebugLog("kafka", "connecting %s to brokers %v", p.config.Name, p.config.Brokers)

	dialer := p.createDialer()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", p.config.Brokers[0])
	if err != nil {
		p.status = StatusError
		p.lastErr = fmt.Errorf("kafka: connect: %w", err)
		logging.DebugLog("kafka", "%s: connect failed: %v", p.config.Name, err)
		return p.lastErr
	}
	conn.Close()

	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(p.config.Brokers...),
		Topic:                  p.config.Topic,
		Balancer:               &kafka.LeastBytes{},
		Transport:              p.createTransport(),
		RequiredAcks:           kafka.RequiredAcks(p.config.RequiredAcks),
		Async:                  false,
		MaxAttempts:            p.config.MaxRetries,
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: p.config.AutoCreateTopics,
	}
	p.status = StatusConnected
	p.lastErr = nil
	logging.DebugLog("kafka", "%s: connected, topic %q", p.config.Name, p.config.Topic)
	return nil
}

// Stop closes the underlying writer.
func (p *Producer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		_ = p.writer.Close()
		p.writer = nil
	}
	p.status = StatusDisconnected
}

// Publish writes r to the configured topic, keyed by device name, unless the
// value is unchanged since the last publish for the same device+path
// (last-value dedup). Returns whether a message was actually sent.
func (p *Producer) Publish(r transport.AttributeReading) bool {
	p.mu.RLock()
	writer := p.writer
	running := p.status == StatusConnected
	p.mu.RUnlock()
	if !running || writer == nil {
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

	rec := record{
		Device:    r.Device,
		Path:      r.Path,
		Value:     r.Value,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	value, err := json.Marshal(rec)
	if err != nil {
		logging.DebugLog("kafka", "%s: marshal error: %v", p.config.Name, err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := writer.WriteMessages(ctx, kafka.Message{Key: []byte(r.Device), Value: value, Time: time.Now()}); err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		logging.DebugLog("kafka", "%s: produce failed: %v", p.config.Name, err)
		return false
	}

	p.lastMu.Lock()
	p.lastValues[cacheKey] = current
	p.lastMu.Unlock()
	return true
}

func (p *Producer) createDialer() *kafka.Dialer {
	dialer := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if p.config.UseTLS {
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if mechanism := p.saslMechanism(); mechanism != nil {
		dialer.SASLMechanism = mechanism
	}
	return dialer
}

func (p *Producer) createTransport() *kafka.Transport {
	kt := &kafka.Transport{DialTimeout: 10 * time.Second}
	if p.config.UseTLS {
		kt.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if mechanism := p.saslMechanism(); mechanism != nil {
		kt.SASL = mechanism
	}
	return kt
}

func (p *Producer) saslMechanism() sasl.Mechanism {
	if p.config.Username == "" {
		return nil
	}
	switch p.config.SASLMechanism {
	case "PLAIN":
		return plain.Mechanism{Username: p.config.Username, Password: p.config.Password}
	case "SCRAM-SHA-256":
		m, _ := scram.Mechanism(scram.SHA256, p.config.Username, p.config.Password)
		return m
	case "SCRAM-SHA-512":
		m, _ := scram.Mechanism(scram.SHA512, p.config.Username, p.config.Password)
		return m
	default:
		return nil
	}
}
