// Package mirror streams copies of the hooked application's backbuffers to
// TCP viewers. The render thread publishes frames through a non-blocking
// mailbox per client; a slow or dead viewer only ever loses frames, it can
// never stall a Present.
//
// Wire format per frame, little endian:
//
//	[4B payload size][4B width][4B height][BGRA rows, tightly packed]
package mirror

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/net/netutil"

	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("mirror")

const headerSize = 12

// frame is one published backbuffer copy. Buffers cycle through the pool.
type frame struct {
	width  uint32
	height uint32
	pixels []byte
}

type client struct {
	conn net.Conn
	// Mailbox of depth one: a new frame replaces the undelivered old one.
	mail chan *frame
}

// Server owns the listener and the connected viewers.
type Server struct {
	addr       string
	maxClients int

	listener net.Listener
	enabled  atomic.Bool

	mu      sync.Mutex
	clients map[*client]struct{}

	pool sync.Pool
	done chan struct{}
	wg   sync.WaitGroup
}

// NewServer builds a mirror server for the given TCP port. The server
// starts disabled; the control channel or config flips it on.
func NewServer(port, maxClients int) *Server {
	return &Server{
		addr:       fmt.Sprintf(":%d", port),
		maxClients: maxClients,
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

// Addr returns the bound listen address, for tests using port zero.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start opens the capped listener and begins accepting viewers.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("mirror: listen %s: %w", s.addr, err)
	}
	s.listener = netutil.LimitListener(listener, s.maxClients)
	log.Info("mirror listening", "addr", listener.Addr().String(), "maxClients", s.maxClients)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and every viewer connection.
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// SetEnabled turns frame publishing on or off. Viewers stay connected
// while disabled; they just stop receiving frames.
func (s *Server) SetEnabled(enabled bool) {
	if s.enabled.Swap(enabled) != enabled {
		log.Info("mirror publishing", "enabled", enabled)
	}
}

// Enabled reports whether publishing is on.
func (s *Server) Enabled() bool { return s.enabled.Load() }

// ClientCount reports the number of connected viewers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Frame implements the surface sink. It runs on the render thread: when
// disabled or nobody is watching it returns without copying; otherwise it
// copies the pixels into pooled buffers and drops them into each client's
// mailbox, never blocking.
func (s *Server) Frame(width, height uint32, bgra []byte) {
	if !s.enabled.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	for c := range s.clients {
		f := s.getFrame(width, height, bgra)
		select {
		case c.mail <- f:
		default:
			// Mailbox full: replace the stale frame with this one.
			select {
			case old := <-c.mail:
				s.pool.Put(old)
			default:
			}
			select {
			case c.mail <- f:
			default:
				s.pool.Put(f)
			}
		}
	}
}

func (s *Server) getFrame(width, height uint32, bgra []byte) *frame {
	f, _ := s.pool.Get().(*frame)
	if f == nil {
		f = &frame{}
	}
	f.width, f.height = width, height
	if cap(f.pixels) < len(bgra) {
		f.pixels = make([]byte, len(bgra))
	}
	f.pixels = f.pixels[:len(bgra)]
	copy(f.pixels, bgra)
	return f
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
		c := &client{conn: conn, mail: make(chan *frame, 1)}
		s.mu.Lock()
		s.clients[c] = struct{}{}
		s.mu.Unlock()
		log.Info("viewer connected", "remote", conn.RemoteAddr().String())

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveClient(c)
		}()
	}
}

func (s *Server) serveClient(c *client) {
	defer func() {
		c.conn.Close()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		log.Info("viewer disconnected", "remote", c.conn.RemoteAddr().String())
	}()

	for {
		select {
		case <-s.done:
			return
		case f := <-c.mail:
			err := writeFrame(c.conn, f)
			s.pool.Put(f)
			if err != nil {
				return
			}
		}
	}
}

// writeFrame emits one wire frame.
func writeFrame(w io.Writer, f *frame) error {
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(len(f.pixels)))
	binary.LittleEndian.PutUint32(header[4:], f.width)
	binary.LittleEndian.PutUint32(header[8:], f.height)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(f.pixels)
	return err
}

// ReadFrame parses one wire frame, for viewers and tests.
func ReadFrame(r io.Reader) (width, height uint32, pixels []byte, err error) {
	var header [headerSize]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		return 0, 0, nil, err
	}
	size := binary.LittleEndian.Uint32(header[0:])
	width = binary.LittleEndian.Uint32(header[4:])
	height = binary.LittleEndian.Uint32(header[8:])
	if size != width*height*4 {
		return 0, 0, nil, fmt.Errorf("mirror: frame size %d does not match %dx%d", size, width, height)
	}
	pixels = make([]byte, size)
	if _, err = io.ReadFull(r, pixels); err != nil {
		return 0, 0, nil, err
	}
	return width, height, pixels, nil
}
