package mqtt

import (
	"testing"
	"time"

	"enipgo/config"
	"enipgo/transport"
)

func TestNewPublisher(t *testing.T) {
	pub := NewPublisher("cell7", config.MQTTConfig{Name: "local", Broker: "mqtt.local", Port: 1883})
	if pub.Name() != "local" {
		t.Errorf("Name() = %q, want local", pub.Name())
	}
	if pub.IsRunning() {
		t.Error("new publisher should not be running")
	}
}

func TestPublisher_Address(t *testing.T) {
	plain := NewPublisher("cell7", config.MQTTConfig{Broker: "broker.local", Port: 1883})
	if got := plain.Address(); got != "tcp://broker.local:1883" {
		t.Errorf("Address() = %q", got)
	}

	withTLS := NewPublisher("cell7", config.MQTTConfig{Broker: "broker.local", Port: 8883, UseTLS: true})
	if got := withTLS.Address(); got != "ssl://broker.local:8883" {
		t.Errorf("Address() = %q", got)
	}
}

func TestPublisher_Topic(t *testing.T) {
	pub := NewPublisher("cell7", config.MQTTConfig{Name: "local"})
	r := transport.AttributeReading{Device: "clearlink1", Path: "class=0x66,instance=1"}
	want := "cell7/clearlink1/class=0x66,instance=1"
	if got := pub.Topic(r); got != want {
		t.Errorf("Topic() = %q, want %q", got, want)
	}
}

// Publish requires a live connection (running == false short-circuits before
// touching the paho client), so this only exercises the not-connected path —
// the test below only checks the dedup cache's key and value format.
func TestPublisher_PublishWhenNotRunning(t *testing.T) {
	pub := NewPublisher("cell7", config.MQTTConfig{Name: "local"})
	sent := pub.Publish(transport.AttributeReading{Device: "d1", Path: "p1", Value: 1})
	if sent {
		t.Error("Publish should report false when not connected")
	}
}

func TestPublisher_DedupCacheKey(t *testing.T) {
	pub := NewPublisher("cell7", config.MQTTConfig{Name: "local"})

	r1 := transport.AttributeReading{Device: "d1", Path: "p1", Value: 42, Timestamp: time.Now()}
	key := r1.Device + "/" + r1.Path
	current := "42|<nil>"

	pub.lastMu.Lock()
	pub.lastValues[key] = current
	pub.lastMu.Unlock()

	pub.lastMu.RLock()
	got, ok := pub.lastValues[key]
	pub.lastMu.RUnlock()
	if !ok || got != current {
		t.Fatalf("lastValues[%q] = %v, %v", key, got, ok)
	}

	r2 := transport.AttributeReading{Device: "d1", Path: "p1", Value: 42}
	if key != (r2.Device + "/" + r2.Path) {
		t.Error("cache key should be identical for identical device+path")
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

func TestMessage_ErrorField(t *testing.T) {
	r := transport.AttributeReading{Device: "d1", Path: "p1", Err: boomErr{}}
	msg := Message{Device: r.Device, Path: r.Path}
	if r.Err != nil {
		msg.Error = r.Err.Error()
	}
	if msg.Error != "boom" {
		t.Errorf("Error = %q, want boom", msg.Error)
	}
}
