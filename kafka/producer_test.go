package kafka

import (
	"testing"

	"enipgo/config"
	"enipgo/transport"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer("cell7", config.KafkaConfig{Name: "main", Topic: "readings"})
	if p.Name() != "main" {
		t.Errorf("Name() = %q, want main", p.Name())
	}
	if p.IsRunning() {
		t.Error("new producer should not be running")
	}
	if p.Status() != StatusDisconnected {
		t.Errorf("Status() = %v, want StatusDisconnected", p.Status())
	}
}

func TestProducer_PublishWhenNotRunning(t *testing.T) {
	p := NewProducer("cell7", config.KafkaConfig{Name: "main", Topic: "readings"})
	sent := p.Publish(transport.AttributeReading{Device: "d1", Path: "p1", Value: 1})
	if sent {
		t.Error("Publish should report false when not connected")
	}
}

func TestProducer_DedupCacheKey(t *testing.T) {
	p := NewProducer("cell7", config.KafkaConfig{Name: "main"})

	key := "d1/p1"
	current := "42|<nil>"
	p.lastMu.Lock()
	p.lastValues[key] = current
	p.lastMu.Unlock()

	p.lastMu.RLock()
	got, ok := p.lastValues[key]
	p.lastMu.RUnlock()
	if !ok || got != current {
		t.Fatalf("lastValues[%q] = %v, %v", key, got, ok)
	}
}

func TestConnectionStatus_String(t *testing.T) {
	cases := map[ConnectionStatus]string{
		StatusDisconnected: "Disconnected",
		StatusConnected:    "Connected",
		StatusError:        "Error",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}

func TestSASLMechanism_NoUsernameIsNil(t *testing.T) {
	p := NewProducer("cell7", config.KafkaConfig{Name: "main"})
	if m := p.saslMechanism(); m != nil {
		t.Errorf("saslMechanism() = %v, want nil without a username", m)
	}
}

func TestSASLMechanism_Plain(t *testing.T) {
	p := NewProducer("cell7", config.KafkaConfig{Name: "main", Username: "u", Password: "p", SASLMechanism: "PLAIN"})
	if m := p.saslMechanism(); m == nil {
		t.Error("saslMechanism() = nil, want a PLAIN mechanism")
	}
}
