// Package telemetry maintains the link to the simulator bridge and exposes
// the latest state snapshot to the render thread without blocking it.
package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/simwidget/overlay/internal/logging"
	"github.com/simwidget/overlay/pkg/wire"
)

var log = logging.L("telemetry")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// DefaultRetryInterval is the fixed reconnect delay. The bridge runs on
	// the same machine, so there is no backoff ramp: a short constant retry
	// keeps the overlay live within seconds of the bridge restarting.
	DefaultRetryInterval = 3 * time.Second
)

// Config holds telemetry client configuration.
type Config struct {
	URL           string
	RetryInterval time.Duration
}

// Client manages the websocket connection to the simulator bridge. All
// network I/O happens on the client's own goroutines; the render thread only
// ever calls Snapshot and SendCommand, both non-blocking.
type Client struct {
	config Config

	conn   *websocket.Conn
	connMu sync.RWMutex

	done      chan struct{}
	sendChan  chan []byte
	stopOnce  sync.Once
	isRunning bool
	runningMu sync.RWMutex

	snapshot atomic.Pointer[Snapshot]
}

// New creates a telemetry client for the given bridge endpoint.
func New(cfg Config) *Client {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	return &Client{
		config:   cfg,
		done:     make(chan struct{}),
		sendChan: make(chan []byte, 64),
	}
}

// Snapshot returns the most recent simulator state. Before any data has
// arrived it returns the zero snapshot with Connected false.
func (c *Client) Snapshot() Snapshot {
	if s := c.snapshot.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// SendCommand queues an outbound control event. Fire-and-forget: the command
// is dropped when the link is down or the queue is full.
func (c *Client) SendCommand(event string, value float64) error {
	data, err := json.Marshal(wire.NewCommand(event, value))
	if err != nil {
		return fmt.Errorf("telemetry: marshal command: %w", err)
	}

	select {
	case c.sendChan <- data:
		return nil
	case <-c.done:
		return fmt.Errorf("telemetry: client is stopped")
	default:
		return fmt.Errorf("telemetry: send queue full, dropping command")
	}
}

// Start runs the connect/read/write loop until Stop is called. It blocks;
// run it on its own goroutine.
func (c *Client) Start() {
	c.runningMu.Lock()
	if c.isRunning {
		c.runningMu.Unlock()
		return
	}
	c.isRunning = true
	c.runningMu.Unlock()

	c.reconnectLoop()
}

// Stop gracefully closes the connection and ends the reconnect loop.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.runningMu.Lock()
		c.isRunning = false
		c.runningMu.Unlock()

		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()

		log.Info("client stopped")
	})
}

func (c *Client) connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("telemetry: connect: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	conn.SetReadLimit(maxMessageSize)
	log.Info("connected", "endpoint", c.config.URL)
	return nil
}

func (c *Client) reconnectLoop() {
	// Disconnects are logged once per event, not once per retry; a bridge
	// that is down for an hour retries at the fixed interval in silence.
	failureLogged := false

	for {
		select {
		case <-c.done:
			return
		default:
		}

		if err := c.connect(); err != nil {
			if !failureLogged {
				log.Warn("bridge unreachable, retrying on fixed interval", "error", err, "interval", c.config.RetryInterval)
				failureLogged = true
			}
			select {
			case <-c.done:
				return
			case <-time.After(c.config.RetryInterval):
			}
			continue
		}
		failureLogged = false

		done := make(chan struct{})
		go c.writePump(done)
		c.readPump()
		close(done)

		c.markDisconnected()

		c.runningMu.RLock()
		running := c.isRunning
		c.runningMu.RUnlock()
		if !running {
			return
		}

		log.Warn("link lost, reconnecting", "interval", c.config.RetryInterval)
		select {
		case <-c.done:
			return
		case <-time.After(c.config.RetryInterval):
		}
	}
}

// markDisconnected flips the snapshot's Connected flag while retaining the
// last-known values, so the overlay can keep showing them with a
// disconnected indicator.
func (c *Client) markDisconnected() {
	prev := c.Snapshot()
	if !prev.Connected {
		return
	}
	prev.Connected = false
	c.snapshot.Store(&prev)
}

func (c *Client) readPump() {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read error", "error", err)
			}
			return
		}

		typ, err := wire.MessageType(message)
		if err != nil {
			log.Warn("failed to parse message", "error", err)
			continue
		}
		if typ != wire.TypeSimvars {
			// Acks and unknown message kinds are not snapshot input.
			continue
		}

		var msg wire.SimvarsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Warn("failed to parse simvars", "error", err)
			continue
		}

		next := c.Snapshot().apply(msg.Data, time.Now())
		c.snapshot.Store(&next)
	}
}

func (c *Client) writePump(done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.done:
			return

		case message := <-c.sendChan:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn == nil {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn == nil {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
