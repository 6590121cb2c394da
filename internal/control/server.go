package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// Overlay is the renderer surface the server drives.
type Overlay interface {
	Show()
	Hide()
	Toggle() bool
	Visible() bool
	SetCorner(name string) error
}

// Mirror is the frame mirror surface the server drives. Nil when the
// mirror is not configured.
type Mirror interface {
	SetEnabled(bool)
	Enabled() bool
}

// StatusFunc supplies the current status reply.
type StatusFunc func() StatusReply

// Server accepts control connections and answers one request per envelope.
// Every handler runs on the connection's goroutine; nothing here ever
// touches the render thread directly, only atomics behind the Overlay and
// Mirror surfaces.
type Server struct {
	path    string
	status  StatusFunc
	overlay Overlay
	mirror  Mirror

	listener net.Listener
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewServer builds a control server listening at path. mirror may be nil.
func NewServer(path string, status StatusFunc, overlay Overlay, mirror Mirror) (*Server, error) {
	if status == nil || overlay == nil {
		return nil, errors.New("control: status and overlay are required")
	}
	return &Server{
		path:    path,
		status:  status,
		overlay: overlay,
		mirror:  mirror,
		done:    make(chan struct{}),
	}, nil
}

// Start opens the listener and begins accepting.
func (s *Server) Start() error {
	listener, err := listen(s.path)
	if err != nil {
		return fmt.Errorf("control: listen %s: %w", s.path, err)
	}
	s.listener = listener
	log.Info("control channel listening", "path", s.path)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Warn("accept failed", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(raw net.Conn) {
	conn := NewConn(raw)
	defer conn.Close()

	for {
		raw.SetReadDeadline(time.Now().Add(30 * time.Second))
		env, err := conn.Recv()
		if err != nil {
			return
		}
		reply := s.handle(env)
		if err := conn.Send(reply); err != nil {
			log.Warn("reply failed", "type", env.Type, "error", err)
			return
		}
	}
}

// handle answers one request envelope. Unknown types get an error reply
// rather than a dropped connection, so older CLIs fail loudly.
func (s *Server) handle(env *Envelope) *Envelope {
	switch env.Type {
	case TypePing:
		return &Envelope{ID: env.ID, Type: TypePong}

	case TypeStatus:
		raw, err := json.Marshal(s.status())
		if err != nil {
			return &Envelope{ID: env.ID, Type: TypeStatusReply, Error: err.Error()}
		}
		return &Envelope{ID: env.ID, Type: TypeStatusReply, Payload: raw}

	case TypeShow:
		s.overlay.Show()
		return &Envelope{ID: env.ID, Type: TypeAck}

	case TypeHide:
		s.overlay.Hide()
		return &Envelope{ID: env.ID, Type: TypeAck}

	case TypeToggle:
		raw, _ := json.Marshal(ToggleReply{Visible: s.overlay.Toggle()})
		return &Envelope{ID: env.ID, Type: TypeAck, Payload: raw}

	case TypeSetCorner:
		var req SetCornerRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return &Envelope{ID: env.ID, Type: TypeAck, Error: fmt.Sprintf("bad payload: %v", err)}
		}
		if err := s.overlay.SetCorner(req.Corner); err != nil {
			return &Envelope{ID: env.ID, Type: TypeAck, Error: err.Error()}
		}
		return &Envelope{ID: env.ID, Type: TypeAck}

	case TypeMirror:
		if s.mirror == nil {
			return &Envelope{ID: env.ID, Type: TypeAck, Error: "mirror not configured"}
		}
		var req MirrorRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return &Envelope{ID: env.ID, Type: TypeAck, Error: fmt.Sprintf("bad payload: %v", err)}
		}
		s.mirror.SetEnabled(req.Enabled)
		return &Envelope{ID: env.ID, Type: TypeAck}

	default:
		return &Envelope{ID: env.ID, Type: TypeAck, Error: fmt.Sprintf("unknown request type %q", env.Type)}
	}
}
