package valkey

import (
	"sync"

	"enipgo/config"
	"enipgo/transport"
)

// Manager owns one Cache per configured server.
type Manager struct {
	namespace string
	mu        sync.RWMutex
	caches    map[string]*Cache
}

// NewManager creates an empty Manager scoped under namespace.
func NewManager(namespace string) *Manager {
	return &Manager{namespace: namespace, caches: make(map[string]*Cache)}
}

// Add registers a cache, replacing any existing one of the same name.
func (m *Manager) Add(c *Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[c.Name()] = c
}

// Remove stops and drops the cache with the given name.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	c, ok := m.caches[name]
	delete(m.caches, name)
	m.mu.Unlock()
	if ok {
		_ = c.Stop()
	}
}

// Get returns the cache with the given name, or nil.
func (m *Manager) Get(name string) *Cache {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caches[name]
}

// List returns all registered caches.
func (m *Manager) List() []*Cache {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Cache, 0, len(m.caches))
	for _, c := range m.caches {
		out = append(out, c)
	}
	return out
}

// StartAll connects every registered cache, skipping individual connection
// errors. Returns the count that started successfully.
func (m *Manager) StartAll() int {
	started := 0
	for _, c := range m.List() {
		if err := c.Start(); err != nil {
			continue
		}
		started++
	}
	return started
}

// StopAll disconnects every registered cache.
func (m *Manager) StopAll() {
	for _, c := range m.List() {
		_ = c.Stop()
	}
}

// AnyRunning reports whether at least one cache is connected.
func (m *Manager) AnyRunning() bool {
	for _, c := range m.List() {
		if c.IsRunning() {
			return true
		}
	}
	return false
}

// Publish fans an AttributeReading out to every running cache.
func (m *Manager) Publish(r transport.AttributeReading) {
	for _, c := range m.List() {
		c.Publish(r)
	}
}

// LoadFromConfig replaces the managed caches with one per enabled server
// config.
func (m *Manager) LoadFromConfig(cfgs []config.ValkeyConfig) {
	m.StopAll()
	m.mu.Lock()
	m.caches = make(map[string]*Cache)
	m.mu.Unlock()

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		m.Add(NewCache(m.namespace, cfg))
	}
}
