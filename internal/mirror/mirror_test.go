package mirror

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func testPixels(w, h uint32) []byte {
	p := make([]byte, int(w)*int(h)*4)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestFrameWireRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pixels := testPixels(4, 2)
	if err := writeFrame(&buf, &frame{width: 4, height: 2, pixels: pixels}); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}

	w, h, got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if w != 4 || h != 2 {
		t.Errorf("dimensions = %dx%d, want 4x2", w, h)
	}
	if !bytes.Equal(got, pixels) {
		t.Error("pixel payload corrupted in transit")
	}
}

func TestReadFrameRejectsMismatchedSize(t *testing.T) {
	var buf bytes.Buffer
	writeFrame(&buf, &frame{width: 4, height: 2, pixels: make([]byte, 8)})
	if _, _, _, err := ReadFrame(&buf); err == nil {
		t.Fatal("mismatched frame size accepted")
	}
}

func TestPublishWhileDisabledDrops(t *testing.T) {
	s := NewServer(0, 1)
	// No Start: publishing must still be a safe no-op.
	s.Frame(2, 2, testPixels(2, 2))
	if s.Enabled() {
		t.Error("server enabled without SetEnabled")
	}
}

func TestEndToEndStream(t *testing.T) {
	s := NewServer(0, 2)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()
	s.SetEnabled(true)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the server to register the viewer before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	pixels := testPixels(8, 4)
	// Publish repeatedly: the depth-one mailbox may replace early frames
	// before the writer picks one up.
	go func() {
		for i := 0; i < 50; i++ {
			s.Frame(8, 4, pixels)
			time.Sleep(2 * time.Millisecond)
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	w, h, got, err := ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if w != 8 || h != 4 {
		t.Errorf("dimensions = %dx%d, want 8x4", w, h)
	}
	if !bytes.Equal(got, pixels) {
		t.Error("streamed pixels corrupted")
	}
}

func TestDisabledServerPublishesNothing(t *testing.T) {
	s := NewServer(0, 1)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	s.Frame(2, 2, testPixels(2, 2))

	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, _, _, err := ReadFrame(conn); err == nil {
		t.Fatal("received a frame while publishing is disabled")
	}
}
