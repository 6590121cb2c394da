// Package control serves the local control channel: a named pipe (unix
// socket elsewhere) speaking length-prefixed JSON envelopes, used by the
// CLI to toggle the overlay and read engine status from outside the host
// process.
package control

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("control")

// Message types.
const (
	TypeStatus      = "status"
	TypeStatusReply = "status_reply"
	TypeShow        = "show"
	TypeHide        = "hide"
	TypeToggle      = "toggle"
	TypeSetCorner   = "set_corner"
	TypeMirror      = "mirror"
	TypeAck         = "ack"
	TypePing        = "ping"
	TypePong        = "pong"
)

// MaxMessageSize bounds one control message. Control traffic is tiny;
// anything bigger is a confused or hostile peer.
const MaxMessageSize = 64 * 1024

// Envelope is the wire wrapper for every control message.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// StatusReply reports the engine and its collaborators.
type StatusReply struct {
	State              string `json:"state"`
	Frames             uint64 `json:"frames"`
	ActiveCycles       uint64 `json:"activeCycles"`
	InitFailures       uint64 `json:"initFailures"`
	TelemetryConnected bool   `json:"telemetryConnected"`
	OverlayVisible     bool   `json:"overlayVisible"`
	MirrorEnabled      bool   `json:"mirrorEnabled"`
	Version            string `json:"version"`
}

// SetCornerRequest moves the panel.
type SetCornerRequest struct {
	Corner string `json:"corner"`
}

// MirrorRequest enables or disables the frame mirror.
type MirrorRequest struct {
	Enabled bool `json:"enabled"`
}

// ToggleReply reports the visibility after a toggle.
type ToggleReply struct {
	Visible bool `json:"visible"`
}

// Conn wraps a stream connection with [4-byte BE length][JSON] framing.
type Conn struct {
	conn net.Conn
	mu   sync.Mutex // serializes writes
}

// NewConn wraps a raw connection.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// Send marshals an envelope and writes one frame.
func (c *Conn) Send(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("control: marshal envelope: %w", err)
	}
	if len(data) > MaxMessageSize {
		return fmt.Errorf("control: message too large: %d > %d", len(data), MaxMessageSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))
	if _, err := c.conn.Write(header); err != nil {
		return fmt.Errorf("control: write header: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("control: write payload: %w", err)
	}
	return nil
}

// Recv reads one framed envelope.
func (c *Conn) Recv() (*Envelope, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		return nil, fmt.Errorf("control: read header: %w", err)
	}
	length := binary.BigEndian.Uint32(header)
	if length == 0 {
		return nil, fmt.Errorf("control: zero-length message")
	}
	if length > MaxMessageSize {
		return nil, fmt.Errorf("control: message too large: %d > %d", length, MaxMessageSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(c.conn, data); err != nil {
		return nil, fmt.Errorf("control: read payload: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("control: unmarshal envelope: %w", err)
	}
	return &env, nil
}

// SendTyped wraps a typed payload into an envelope and sends it.
func (c *Conn) SendTyped(id, msgType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("control: marshal payload: %w", err)
	}
	return c.Send(&Envelope{ID: id, Type: msgType, Payload: raw})
}

// SendError sends an error envelope in reply to id.
func (c *Conn) SendError(id, errMsg string) error {
	return c.Send(&Envelope{ID: id, Type: TypeAck, Error: errMsg})
}
