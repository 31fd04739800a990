package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"enipgo/config"
	"enipgo/kafka"
	"enipgo/logging"
	"enipgo/mqtt"
	"enipgo/objects"
	"enipgo/transport"
	"enipgo/valkey"
	"enipgo/web"
)

// identityPath is the attribute label attached to every poll, matching the
// only assembly this binary's demo loop reads: class 1 (Identity), instance
// 1, whole-object GetAttributeAll.
const identityPath = "class=0x01,instance=1"

// devicePoller owns one device's connection and the last reading it
// produced, guarded by mu for concurrent reads from the web/tui surfaces.
type devicePoller struct {
	cfg    config.DeviceConfig
	client *transport.Client

	mu        sync.RWMutex
	connected bool
	lastErr   error
	lastRead  transport.AttributeReading
}

func newDevicePoller(cfg config.DeviceConfig) *devicePoller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = transport.DefaultDialTimeout
	}
	return &devicePoller{
		cfg:    cfg,
		client: transport.NewClient(cfg.Address, transport.WithDialTimeout(timeout)),
	}
}

func (d *devicePoller) status() web.DeviceStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := web.DeviceStatus{Name: d.cfg.Name, Address: d.cfg.Address, Connected: d.connected}
	if d.lastErr != nil {
		s.LastError = d.lastErr.Error()
	}
	return s
}

func (d *devicePoller) identity(ctx context.Context) (objects.IdentityObject, error) {
	d.mu.RLock()
	connected := d.connected
	d.mu.RUnlock()
	if !connected {
		return objects.IdentityObject{}, fmt.Errorf("warscan: %s: not connected", d.cfg.Name)
	}
	return d.client.ReadIdentity(ctx)
}

func (d *devicePoller) attribute(ctx context.Context, path string) (transport.AttributeReading, error) {
	d.mu.RLock()
	reading := d.lastRead
	err := d.lastErr
	d.mu.RUnlock()
	if path != "" && path != identityPath {
		return transport.AttributeReading{}, fmt.Errorf("warscan: %s: unknown attribute path %q", d.cfg.Name, path)
	}
	return reading, err
}

// run dials the device and polls its identity every PollInterval until ctx
// is cancelled, publishing each result (success or failure) through publish.
func (d *devicePoller) run(ctx context.Context, publish func(transport.AttributeReading)) {
	interval := d.cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		if err := d.connect(ctx); err != nil {
			logging.DebugError("transport", "warscan: "+d.cfg.Name, err)
			if !sleep(ctx, interval) {
				return
			}
			continue
		}

		ticker := time.NewTicker(interval)
		d.pollOnce(ctx, publish)
	pollLoop:
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				_ = d.client.Disconnect()
				return
			case <-ticker.C:
				if err := d.pollOnce(ctx, publish); err != nil {
					ticker.Stop()
					break pollLoop
				}
			}
		}
	}
}

func (d *devicePoller) connect(ctx context.Context) error {
	if err := d.client.Connect(ctx); err != nil {
		d.mu.Lock()
		d.connected = false
		d.lastErr = err
		d.mu.Unlock()
		return err
	}
	d.mu.Lock()
	d.connected = true
	d.lastErr = nil
	d.mu.Unlock()
	return nil
}

// pollOnce reads identity once and records/publishes the result. A non-nil
// return means the connection is considered dead and run should redial.
func (d *devicePoller) pollOnce(ctx context.Context, publish func(transport.AttributeReading)) error {
	id, err := d.client.ReadIdentity(ctx)
	reading := transport.AttributeReading{
		Device:    d.cfg.Name,
		Path:      identityPath,
		Value:     id,
		Timestamp: time.Now(),
		Err:       err,
	}

	d.mu.Lock()
	d.lastRead = reading
	d.lastErr = err
	if err != nil {
		d.connected = false
	}
	d.mu.Unlock()

	publish(reading)
	return err
}

// sleep blocks for d or until ctx is cancelled, returning false in the
// latter case.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// fleet supervises every configured device's poller and fans readings out
// to the enabled publish sinks.
type fleet struct {
	mqttMgr   *mqtt.Manager
	kafkaMgr  *kafka.Manager
	valkeyMgr *valkey.Manager

	mu      sync.RWMutex
	pollers map[string]*devicePoller
}

func newFleet(namespace string, cfg *config.Config) *fleet {
	f := &fleet{
		mqttMgr:   mqtt.NewManager(namespace),
		kafkaMgr:  kafka.NewManager(namespace),
		valkeyMgr: valkey.NewManager(namespace),
		pollers:   make(map[string]*devicePoller),
	}
	f.mqttMgr.LoadFromConfig(cfg.MQTT)
	f.kafkaMgr.LoadFromConfig(cfg.Kafka)
	f.valkeyMgr.LoadFromConfig(cfg.Valkey)
	for _, dc := range cfg.Devices {
		if !dc.Enabled {
			continue
		}
		f.pollers[dc.Name] = newDevicePoller(dc)
	}
	return f
}

func (f *fleet) startSinks() {
	f.mqttMgr.StartAll()
	f.kafkaMgr.StartAll()
	f.valkeyMgr.StartAll()
}

func (f *fleet) stopSinks() {
	f.mqttMgr.StopAll()
	f.kafkaMgr.StopAll()
	f.valkeyMgr.StopAll()
}

// run starts one poller goroutine per device and blocks until ctx is done.
func (f *fleet) run(ctx context.Context) {
	var wg sync.WaitGroup
	f.mu.RLock()
	pollers := make([]*devicePoller, 0, len(f.pollers))
	for _, p := range f.pollers {
		pollers = append(pollers, p)
	}
	f.mu.RUnlock()

	for _, p := range pollers {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.run(ctx, func(r transport.AttributeReading) { f.publish(p.cfg, r) })
		}()
	}
	wg.Wait()
}

func (f *fleet) publish(cfg config.DeviceConfig, r transport.AttributeReading) {
	if cfg.MQTTEnabled {
		f.mqttMgr.Publish(r)
	}
	if cfg.KafkaEnabled {
		f.kafkaMgr.Publish(r)
	}
	if cfg.ValkeyEnabled {
		f.valkeyMgr.Publish(r)
	}
}

func (f *fleet) ListDevices() []web.DeviceStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]web.DeviceStatus, 0, len(f.pollers))
	for _, p := range f.pollers {
		out = append(out, p.status())
	}
	return out
}

func (f *fleet) Identity(ctx context.Context, device string) (objects.IdentityObject, error) {
	f.mu.RLock()
	p, ok := f.pollers[device]
	f.mu.RUnlock()
	if !ok {
		return objects.IdentityObject{}, fmt.Errorf("warscan: unknown device %q", device)
	}
	return p.identity(ctx)
}

func (f *fleet) Attribute(ctx context.Context, device, path string) (transport.AttributeReading, error) {
	f.mu.RLock()
	p, ok := f.pollers[device]
	f.mu.RUnlock()
	if !ok {
		return transport.AttributeReading{}, fmt.Errorf("warscan: unknown device %q", device)
	}
	return p.attribute(ctx, path)
}
