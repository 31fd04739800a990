package kafka

import (
	"sync"

	"enipgo/config"
	"enipgo/transport"
)

// Manager owns one Producer per configured cluster.
type Manager struct {
	namespace string
	mu        sync.RWMutex
	producers map[string]*Producer
}

// NewManager creates an empty Manager scoped under namespace.
func NewManager(namespace string) *Manager {
	return &Manager{namespace: namespace, producers: make(map[string]*Producer)}
}

// Add registers a producer, replacing any existing one of the same name.
func (m *Manager) Add(p *Producer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.producers[p.Name()] = p
}

// Remove stops and drops the producer with the given name.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	p, ok := m.producers[name]
	delete(m.producers, name)
	m.mu.Unlock()
	if ok {
		p.Stop()
	}
}

// Get returns the producer with the given name, or nil.
func (m *Manager) Get(name string) *Producer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.producers[name]
}

// List returns all registered producers.
func (m *Manager) List() []*Producer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Producer, 0, len(m.producers))
	for _, p := range m.producers {
		out = append(out, p)
	}
	return out
}

// StartAll connects every registered producer, skipping (but not failing on)
// individual connection errors. Returns the count that started successfully.
func (m *Manager) StartAll() int {
	started := 0
	for _, p := range m.List() {
		if err := p.Start(); err != nil {
			continue
		}
		started++
	}
	return started
}

// StopAll disconnects every registered producer.
func (m *Manager) StopAll() {
	for _, p := range m.List() {
		p.Stop()
	}
}

// AnyRunning reports whether at least one producer is connected.
func (m *Manager) AnyRunning() bool {
	for _, p := range m.List() {
		if p.IsRunning() {
			return true
		}
	}
	return false
}

// Publish fans an AttributeReading out to every running producer.
func (m *Manager) Publish(r transport.AttributeReading) {
	for _, p := range m.List() {
		p.Publish(r)
	}
}

// LoadFromConfig replaces the managed producers with one per enabled
// cluster config.
func (m *Manager) LoadFromConfig(cfgs []config.KafkaConfig) {
	m.StopAll()
	m.mu.Lock()
	m.producers = make(map[string]*Producer)
	m.mu.Unlock()

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		m.Add(NewProducer(m.namespace, cfg))
	}
}
