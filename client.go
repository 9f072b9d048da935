// Package resocket provides a reconnecting TCP client exchanging
// delimiter-framed text messages.
// It reassembles inbound messages, detects a silently closed peer by polling
// the socket, and re-establishes lost connections.
package resocket

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"
)

// Errors returned by client operations.
var (
	// ErrInvalidListener is returned when no listener is provided.
	ErrInvalidListener = errors.New("invalid listener")
	// ErrInvalidDelimiter is returned when the delimiter is empty.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
	// ErrInvalidAddress is returned when host or port cannot be dialed.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrAlreadyConnected is returned by Connect while a connection is
	// established or being established.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrMessageTooLarge is returned when a message exceeds the maximum allowed size.
	ErrMessageTooLarge = errors.New("message too large")
)

// ErrConnectionClosed is returned when writing to a connection being torn down.
var ErrConnectionClosed = errors.New("connection closed")

var errNotTCPConn = errors.New("dialed connection is not TCP")

// State is the connection state of a Client.
type State int32

const (
	// StateDisconnected means no socket is open and no dial is pending.
	StateDisconnected State = iota
	// StateConnecting means a dial is in flight or a reconnect is scheduled.
	StateConnecting
	// StateConnected means a session is established.
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Client maintains a single outbound TCP connection to one remote endpoint.
//
// Connect returns immediately; the dial, the receiver and the liveness monitor
// run on goroutines owned by the Client, and every Listener callback is made
// from one of them. A connection lost while established is reported through
// OnDisconnected and, when auto-reconnect is enabled, dialed again.
type Client struct {
	listener Listener
	logger   Logger
	opts     options
	rng      *rand.Rand
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)

	mu    sync.Mutex
	state State
	host  string
	port  int
	name  string
	sess  *session
	// gen increments on every Connect, Disconnect, dial and loss. Goroutines
	// holding a stale gen discard their result.
	gen        uint64
	cancelDial context.CancelFunc
	retry      *time.Timer
	attempt    int // reconnect attempts made since the last loss
}

// NewClient creates a client that reports to listener.
// Returns an error if the listener is nil or an option is invalid.
func NewClient(listener Listener, opt ...Option) (*Client, error) {
	if listener == nil {
		return nil, ErrInvalidListener
	}

	opts := defaultOptions()
	for _, o := range opt {
		o(&opts)
	}

	if err := checkOptions(&opts); err != nil {
		return nil, err
	}

	return &Client{
		listener: listener,
		logger:   opts.logger,
		opts:     opts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		dial:     (&net.Dialer{}).DialContext,
	}, nil
}

// Connect starts connecting to host:port and returns without waiting for the
// dial. On success OnConnected is called; on failure the client stays
// disconnected, the failure is logged and no callback is made.
//
// Connect returns ErrAlreadyConnected while connected or connecting.
func (c *Client) Connect(host string, port int) error {
	if host == "" || port <= 0 || port > 65535 {
		return ErrInvalidAddress
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisconnected {
		return ErrAlreadyConnected
	}

	c.host = host
	c.port = port
	c.name = net.JoinHostPort(host, strconv.Itoa(port))
	c.attempt = 0
	c.dialLocked()
	return nil
}

// Disconnect closes the connection and cancels any pending dial or reconnect.
// OnDisconnected is not called for this teardown.
// Safe to call multiple times and in any state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	sess := c.sess
	c.sess = nil
	c.stopPendingLocked()
	wasState := c.state
	c.state = StateDisconnected
	name := c.name
	c.mu.Unlock()

	if sess != nil {
		sess.close()
	}

	if wasState != StateDisconnected {
		c.logger.Info("disconnected", "name", name)
	}
}

// Write sends message as-is on the live connection and blocks until the send
// completes. While disconnected it does nothing and returns nil.
// A failed send tears the connection down like any other loss.
func (c *Client) Write(message string) error {
	return c.send([]byte(message))
}

// WriteMessage sends message followed by the delimiter.
func (c *Client) WriteMessage(message string) error {
	return c.send([]byte(message + c.opts.delimiter))
}

func (c *Client) send(data []byte) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	c.logger.Debug("writing to socket", "name", sess.name, "bytes", len(data))
	return sess.write(data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether a connection is established.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Name returns the connection name, host:port of the last Connect.
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// RemoteAddr returns the remote address of the live connection, or nil.
func (c *Client) RemoteAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.rawConn.RemoteAddr()
}

// dialLocked starts one dial attempt. c.mu must be held.
func (c *Client) dialLocked() {
	c.stopPendingLocked()
	c.gen++
	c.state = StateConnecting

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.connectTimeout)
	c.cancelDial = cancel

	go c.connect(ctx, cancel, c.gen, c.name)
}

// stopPendingLocked cancels an in-flight dial and a scheduled reconnect.
// c.mu must be held.
func (c *Client) stopPendingLocked() {
	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

// connect dials addr and, on success, installs and runs the session.
func (c *Client) connect(ctx context.Context, cancel context.CancelFunc, gen uint64, addr string) {
	c.logger.Debug("connecting", "addr", addr, "timeout", c.opts.connectTimeout)

	conn, err := c.dial(ctx, "tcp", addr)
	cancel()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	c.cancelDial = nil

	if err != nil {
		c.retryLocked()
		c.mu.Unlock()
		c.logger.Info("client is not connected", "addr", addr, "error", err)
		c.opts.onError(err)
		return
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		c.retryLocked()
		c.mu.Unlock()
		_ = conn.Close()
		c.logger.Warn("client is not connected", "addr", addr, "error", errNotTCPConn, "type", fmt.Sprintf("%T", conn))
		c.opts.onError(errNotTCPConn)
		return
	}
	_ = tcpConn.SetNoDelay(true)

	sess := newSession(tcpConn, c.name, c.listener, &c.opts)
	c.sess = sess
	c.state = StateConnected
	c.attempt = 0
	c.mu.Unlock()

	c.logger.Info("client is connected", "name", sess.name, "local_addr", tcpConn.LocalAddr())
	c.logger.Debug("connection options", "name", sess.name,
		"delimiter", c.opts.delimiter,
		"poll_interval", c.opts.pollInterval,
		"read_buffer_size", c.opts.readBufferSize,
		"max_message_size", c.opts.maxMessageSize,
		"auto_reconnect", c.opts.autoReconnect)

	// Called before the receiver starts so no message callback can precede it.
	c.listener.OnConnected(sess.name)

	go c.serve(sess)
}

// serve runs sess until it ends and hands the cause to lost.
func (c *Client) serve(sess *session) {
	cause := sess.run()
	c.lost(sess, cause)
}

// lost is the single teardown path for a connection that ended without an
// explicit Disconnect. It runs at most once per session.
func (c *Client) lost(sess *session, cause error) {
	c.mu.Lock()
	if c.sess != sess {
		// Disconnect already took the session down.
		c.mu.Unlock()
		return
	}
	c.sess = nil
	c.state = StateDisconnected
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	sess.closeConn()
	c.logger.Info("connection was lost", "name", sess.name, "cause", cause)
	c.listener.OnDisconnected(sess.name)

	if !c.opts.autoReconnect {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.state != StateDisconnected {
		// The listener or another caller already connected or disconnected.
		return
	}
	c.logger.Info("trying to reconnect", "name", c.name)
	c.attempt = 1
	c.dialLocked()
}

// retryLocked schedules the next reconnect attempt with backoff after a
// failed dial, or leaves the client disconnected when none is due. Only dials
// made on the reconnect path are retried. c.mu must be held.
func (c *Client) retryLocked() {
	c.state = StateDisconnected
	if c.attempt == 0 || c.attempt >= c.opts.reconnectAttempts {
		if c.attempt > 0 {
			c.logger.Warn("giving up reconnecting", "name", c.name, "attempts", c.attempt)
		}
		return
	}

	delay := NextBackoffDelay(c.opts.backoff, c.attempt, c.rng)
	c.attempt++
	c.state = StateConnecting
	c.gen++
	next := c.gen
	c.logger.Info("scheduling reconnect", "name", c.name, "attempt", c.attempt, "delay", delay)

	c.retry = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if next != c.gen {
			return
		}
		c.retry = nil
		c.dialLocked()
	})
}
