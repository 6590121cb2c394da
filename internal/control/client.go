package control

import (
	"encoding/json"
	"fmt"
	"time"
)

// Client is the CLI side of the control channel: one connection per
// request, no state kept between calls.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient builds a client for the control endpoint at path.
func NewClient(path string) *Client {
	return &Client{path: path, timeout: 5 * time.Second}
}

// request dials, sends one envelope, and waits for its reply.
func (c *Client) request(msgType string, payload any) (*Envelope, error) {
	raw, err := dial(c.path, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("control: dial %s: %w", c.path, err)
	}
	conn := NewConn(raw)
	defer conn.Close()

	env := &Envelope{ID: fmt.Sprintf("cli-%d", time.Now().UnixNano()), Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("control: marshal request: %w", err)
		}
		env.Payload = data
	}

	raw.SetDeadline(time.Now().Add(c.timeout))
	if err := conn.Send(env); err != nil {
		return nil, err
	}
	reply, err := conn.Recv()
	if err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return reply, fmt.Errorf("control: %s", reply.Error)
	}
	return reply, nil
}

// Status fetches the engine status.
func (c *Client) Status() (StatusReply, error) {
	reply, err := c.request(TypeStatus, nil)
	if err != nil {
		return StatusReply{}, err
	}
	var status StatusReply
	if err := json.Unmarshal(reply.Payload, &status); err != nil {
		return StatusReply{}, fmt.Errorf("control: decode status: %w", err)
	}
	return status, nil
}

// Show, Hide, and Toggle drive panel visibility.
func (c *Client) Show() error { _, err := c.request(TypeShow, nil); return err }
func (c *Client) Hide() error { _, err := c.request(TypeHide, nil); return err }

func (c *Client) Toggle() (bool, error) {
	reply, err := c.request(TypeToggle, nil)
	if err != nil {
		return false, err
	}
	var t ToggleReply
	if err := json.Unmarshal(reply.Payload, &t); err != nil {
		return false, fmt.Errorf("control: decode toggle reply: %w", err)
	}
	return t.Visible, nil
}

// SetCorner moves the panel.
func (c *Client) SetCorner(corner string) error {
	_, err := c.request(TypeSetCorner, SetCornerRequest{Corner: corner})
	return err
}

// SetMirror enables or disables the frame mirror.
func (c *Client) SetMirror(enabled bool) error {
	_, err := c.request(TypeMirror, MirrorRequest{Enabled: enabled})
	return err
}
