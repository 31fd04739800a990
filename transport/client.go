// Package transport implements a minimal reconnecting EtherNet/IP TCP client
// over the eip/cip codec layers: dial, register a session, issue unconnected
// explicit-messaging requests, and tear the session down.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"enipgo/cip"
	"enipgo/eip"
	"enipgo/logging"
	"enipgo/objects"
)

// DefaultPort is the standard EtherNet/IP TCP port.
const DefaultPort = 0xAF12

// DefaultDialTimeout matches the pylogix-derived default used throughout
// this codebase's reference material.
const DefaultDialTimeout = 5 * time.Second

// Option configures a Client at construction time.
type Option func(*Client)

// WithDialTimeout overrides the default dial/transaction timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// Client is a single-connection, mutex-serialized EtherNet/IP explicit
// messaging client. Every exported method takes the connection lock for its
// own duration, so Client is safe for concurrent use, but calls from
// different goroutines simply queue rather than overlap — there is no
// request pipelining, matching the teacher's EipClient.
type Client struct {
	address string
	timeout time.Duration

	mu      sync.Mutex
	conn    net.Conn
	session uint32
}

// NewClient builds a Client for address ("host:port"; if no port is given,
// DefaultPort is used).
func NewClient(address string, opts ...Option) *Client {
	c := &Client{
		address: ensurePort(address),
		timeout: DefaultDialTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func ensurePort(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return fmt.Sprintf("%s:%d", address, DefaultPort)
}

// Connect dials the target and registers a session. Calling Connect on an
// already-connected Client closes the stale connection once the new session
// is registered; if the new dial or registration fails, the old connection
// is kept.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logging.DebugConnect("transport", c.address)

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		logging.DebugConnectError("transport", c.address, err)
		return fmt.Errorf("transport: connect: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(30 * time.Second)
	}

	oldConn := c.conn
	c.conn = conn
	c.session = 0

	session, err := c.registerSessionLocked()
	if err != nil {
		c.conn = oldConn
		_ = conn.Close()
		logging.DebugError("transport", "Connect: RegisterSession", err)
		return fmt.Errorf("transport: register session: %w", err)
	}
	c.session = session

	if oldConn != nil {
		_ = oldConn.Close()
	}
	logging.DebugConnectSuccess("transport", c.address, fmt.Sprintf("session=0x%08X", session))
	return nil
}

// Disconnect best-effort unregisters the session then closes the socket. No
// response frame is awaited, per the open question on unregister responses.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.session = 0
		return nil
	}
	logging.DebugDisconnect("transport", c.address, "client disconnect requested")

	if c.session != 0 {
		frame := eip.NewUnregistration(c.session)
		frameBytes, err := frame.MarshalCIP()
		if err == nil {
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
			_, _ = c.conn.Write(frameBytes)
		}
	}

	err := c.conn.Close()
	c.conn = nil
	c.session = 0
	return err
}

func (c *Client) registerSessionLocked() (uint32, error) {
	if c.conn == nil {
		return 0, fmt.Errorf("transport: registerSession: not connected")
	}
	frame, err := eip.NewRegistration()
	if err != nil {
		return 0, err
	}
	resp, err := c.transactLocked(frame)
	if err != nil {
		return 0, err
	}
	if resp.Header.Status != eip.StatusSuccess {
		return 0, fmt.Errorf("transport: RegisterSession: encapsulation status 0x%08X", resp.Header.Status)
	}
	if resp.Header.SessionHandle == 0 {
		return 0, fmt.Errorf("transport: RegisterSession: got session handle 0")
	}
	return resp.Header.SessionHandle, nil
}

// transactLocked writes frame and reads one full reply frame. Caller must
// hold c.mu.
func (c *Client) transactLocked(frame eip.Frame) (eip.Frame, error) {
	if c.conn == nil {
		return eip.Frame{}, fmt.Errorf("transport: not connected")
	}
	reqBytes, err := frame.MarshalCIP()
	if err != nil {
		return eip.Frame{}, err
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	logging.DebugTX("eip", reqBytes)
	if _, err := c.conn.Write(reqBytes); err != nil {
		logging.DebugError("transport", "write", err)
		return eip.Frame{}, fmt.Errorf("transport: write: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	header := make([]byte, eip.HeaderLen)
	if _, err := readFull(c.conn, header); err != nil {
		logging.DebugError("transport", "read header", err)
		return eip.Frame{}, fmt.Errorf("transport: read header: %w", err)
	}

	var h eip.Header
	if _, err := h.UnmarshalCIP(header); err != nil {
		return eip.Frame{}, err
	}
	body := make([]byte, h.Length)
	if len(body) > 0 {
		if _, err := readFull(c.conn, body); err != nil {
			logging.DebugError("transport", "read body", err)
			return eip.Frame{}, fmt.Errorf("transport: read body: %w", err)
		}
	}
	logging.DebugRX("eip", append(append([]byte(nil), header...), body...))

	return eip.ParseFrame(append(header, body...))
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// GetAttributeSingle issues GetAttributeSingle against path and returns the
// raw response payload bytes (the caller parses them against whatever
// cip.Payload schema applies). A non-zero GeneralStatus is returned as an
// error.
func (c *Client) GetAttributeSingle(ctx context.Context, path cip.Path) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == 0 {
		return nil, fmt.Errorf("transport: GetAttributeSingle: no session (call Connect first)")
	}
	req, err := eip.NewSingleRequest[cip.RawPayload](c.session, path, cip.RawPayload{}, false)
	if err != nil {
		return nil, err
	}
	respFrame, err := c.transactLocked(req)
	if err != nil {
		return nil, err
	}
	_, resp, err := eip.ParseSendRrResponse[cip.RawPayload](respFrame)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("transport: GetAttributeSingle: no message router response in reply")
	}
	if resp.GeneralStatus != cip.StatusSuccess {
		return nil, fmt.Errorf("transport: GetAttributeSingle: general status 0x%02X", resp.GeneralStatus)
	}
	return resp.Body.Data, nil
}

// SetAttributeSingle issues SetAttributeSingle against path with data as the
// request body.
func (c *Client) SetAttributeSingle(ctx context.Context, path cip.Path, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == 0 {
		return fmt.Errorf("transport: SetAttributeSingle: no session (call Connect first)")
	}
	req, err := eip.NewServiceRequest(c.session, path, cip.ServiceSetAttributeSingle, cip.RawPayload{Data: data}, true)
	if err != nil {
		return err
	}
	respFrame, err := c.transactLocked(req)
	if err != nil {
		return err
	}
	_, resp, err := eip.ParseSendRrResponse[cip.RawPayload](respFrame)
	if err != nil {
		return err
	}
	if resp != nil && resp.GeneralStatus != cip.StatusSuccess {
		return fmt.Errorf("transport: SetAttributeSingle: general status 0x%02X", resp.GeneralStatus)
	}
	return nil
}

// ReadIdentity issues GetAttributeAll against the Identity object and
// decodes the response as objects.IdentityObject.
func (c *Client) ReadIdentity(ctx context.Context) (objects.IdentityObject, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == 0 {
		return objects.IdentityObject{}, fmt.Errorf("transport: ReadIdentity: no session (call Connect first)")
	}

	c.mu.Lock()
	req, err := eip.NewIdentity(session)
	if err != nil {
		c.mu.Unlock()
		return objects.IdentityObject{}, err
	}
	respFrame, err := c.transactLocked(req)
	c.mu.Unlock()
	if err != nil {
		return objects.IdentityObject{}, err
	}

	_, resp, err := eip.ParseSendRrResponse[objects.IdentityObject](respFrame)
	if err != nil {
		return objects.IdentityObject{}, err
	}
	if resp == nil {
		return objects.IdentityObject{}, fmt.Errorf("transport: ReadIdentity: no message router response in reply")
	}
	if resp.GeneralStatus != cip.StatusSuccess {
		return objects.IdentityObject{}, fmt.Errorf("transport: ReadIdentity: general status 0x%02X", resp.GeneralStatus)
	}
	return resp.Body, nil
}
