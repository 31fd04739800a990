package mqtt

import (
	"sync"

	"enipgo/config"
	"enipgo/transport"
)

// Manager owns one Publisher per configured broker.
type Manager struct {
	namespace string
	mu        sync.RWMutex
	pubs      map[string]*Publisher
}

// NewManager creates an empty Manager scoped under namespace.
func NewManager(namespace string) *Manager {
	return &Manager{namespace: namespace, pubs: make(map[string]*Publisher)}
}

// Add registers a publisher, replacing any existing one of the same name.
func (m *Manager) Add(pub *Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pubs[pub.Name()] = pub
}

// Remove stops and drops the publisher with the given name.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	pub, ok := m.pubs[name]
	delete(m.pubs, name)
	m.mu.Unlock()
	if ok {
		pub.Stop()
	}
}

// Get returns the publisher with the given name, or nil.
func (m *Manager) Get(name string) *Publisher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pubs[name]
}

// List returns all registered publishers.
func (m *Manager) List() []*Publisher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Publisher, 0, len(m.pubs))
	for _, pub := range m.pubs {
		out = append(out, pub)
	}
	return out
}

// StartAll starts every registered publisher, logging but not failing on
// individual connection errors. Returns the count that started successfully.
func (m *Manager) StartAll() int {
	started := 0
	for _, pub := range m.List() {
		if err := pub.Start(); err != nil {
			logMQTT("StartAll: %s: %v", pub.Name(), err)
			continue
		}
		started++
	}
	return started
}

// StopAll disconnects every registered publisher.
func (m *Manager) StopAll() {
	for _, pub := range m.List() {
		pub.Stop()
	}
}

// AnyRunning reports whether at least one publisher is connected.
func (m *Manager) AnyRunning() bool {
	for _, pub := range m.List() {
		if pub.IsRunning() {
			return true
		}
	}
	return false
}

// Publish fans an AttributeReading out to every running publisher.
func (m *Manager) Publish(r transport.AttributeReading) {
	for _, pub := range m.List() {
		pub.Publish(r)
	}
}

// LoadFromConfig replaces the managed publishers with one per enabled
// broker config.
func (m *Manager) LoadFromConfig(cfgs []config.MQTTConfig) {
	m.StopAll()
	m.mu.Lock()
	m.pubs = make(map[string]*Publisher)
	m.mu.Unlock()

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		m.Add(NewPublisher(m.namespace, cfg))
	}
}
