// Package valkey caches the latest decoded attribute reading per device in a
// Valkey/Redis-protocol store.
package valkey

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"enipgo/config"
	"enipgo/logging"
	"enipgo/transport"
)

// joinKey joins key segments with colons, trimming stray colons from each
// segment so two adjacent empty segments don't produce "::".
func joinKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, ":"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ":")
}

// entry is the JSON structure stored as one hash field.
type entry struct {
	Value     interface{} `json:"value,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Cache stores the latest AttributeReading per device+attribute as a Valkey
// hash, keyed "{namespace}:{device}:attributes" with one field per path.
type Cache struct {
	namespace string
	config    config.ValkeyConfig

	mu      sync.RWMutex
	client  *redis.Client
	running bool

	lastMu     sync.RWMutex
	lastValues map[string]string
}

// NewCache creates a cache for a single configured server.
func NewCache(namespace string, cfg config.ValkeyConfig) *Cache {
	return &Cache{namespace: namespace, config: cfg, lastValues: make(map[string]string)}
}

// Name returns the cache's configured server name.
func (c *Cache) Name() string { return c.config.Name }

// IsRunning returns whether the cache is connected.
func (c *Cache) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Start connects to the Valkey server.
func (c *Cache) Start() error {
	c.mu.RLock()
	if c.running {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	opts := &redis.Options{
		Addr:         c.config.Address,
		Password:     c.config.Password,
		DB:           c.config.Database,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
	if c.config.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	logging.DebugConnect("valkey", c.config.Address)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logging.DebugConnectError("valkey", c.config.Address, err)
		return fmt.Errorf("valkey: connect: %w", err)
	}
	logging.DebugConnectSuccess("valkey", c.config.Address, fmt.Sprintf("db=%d", c.config.Database))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		client.Close()
		return nil
	}
	c.client = client
	c.running = true
	return nil
}

// Stop disconnects from the server.
func (c *Cache) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.client == nil {
		return nil
	}
	c.running = false
	client := c.client
	c.client = nil
	return client.Close()
}

// Address returns the server address as a redis:// URL.
func (c *Cache) Address() string {
	scheme := "redis"
	if c.config.UseTLS {
		scheme = "rediss"
	}
	return fmt.Sprintf("%s://%s", scheme, c.config.Address)
}

func (c *Cache) deviceKey(device string) string {
	return joinKey(c.namespace, device, "attributes")
}

// Publish stores r as the latest value for its device+path, unless it is
// unchanged since the last publish (last-value dedup). Returns whether a
// write was actually issued.
func (c *Cache) Publish(r transport.AttributeReading) bool {
	c.mu.RLock()
	client := c.client
	running := c.running
	c.mu.RUnlock()
	if !running || client == nil {
		return false
	}

	cacheKey := r.Device + "/" + r.Path
	current := fmt.Sprintf("%v|%v", r.Value, r.Err)

	c.lastMu.RLock()
	last, exists := c.lastValues[cacheKey]
	c.lastMu.RUnlock()
	if exists && last == current {
		return false
	}

	e := entry{Value: r.Value, Timestamp: r.Timestamp.UTC().Format(time.RFC3339)}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	data, err := json.Marshal(e)
	if err != nil {
		logging.DebugError("valkey", "Publish: marshal", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := c.deviceKey(r.Device)
	if err := client.HSet(ctx, key, r.Path, data).Err(); err != nil {
		logging.DebugError("valkey", "Publish: HSet", err)
		return false
	}
	if c.config.KeyTTL > 0 {
		client.Expire(ctx, key, c.config.KeyTTL)
	}

	c.lastMu.Lock()
	c.lastValues[cacheKey] = current
	c.lastMu.Unlock()
	return true
}

// Latest returns the decoded value last stored for device+attribute, or
// false if nothing has been published yet for that pair.
func (c *Cache) Latest(ctx context.Context, device, attribute string) (interface{}, bool, error) {
	c.mu.RLock()
	client := c.client
	running := c.running
	c.mu.RUnlock()
	if !running || client == nil {
		return nil, false, fmt.Errorf("valkey: Latest: not connected")
	}

	data, err := client.HGet(ctx, c.deviceKey(device), attribute).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey: Latest: %w", err)
	}

	var e entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, false, fmt.Errorf("valkey: Latest: decode: %w", err)
	}
	if e.Error != "" {
		return nil, true, fmt.Errorf("valkey: Latest: stale reading error: %s", e.Error)
	}
	return e.Value, true, nil
}
