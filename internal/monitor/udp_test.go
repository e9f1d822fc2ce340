package monitor

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"
)

func TestUDPTransportFrameLayout(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	transport, err := NewUDPTransport(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer transport.Close()

	frame := Frame{
		Score:      4.25,
		Magnitudes: []float64{0.5, 1.5, 2.5},
	}
	if err := transport.Send(frame); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	packet := make([]byte, 2048)
	n, _, err := listener.ReadFromUDP(packet)
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}

	r := bytes.NewReader(packet[:n])
	var seq uint32
	var timestamp int64
	var score float64
	var count uint16
	for _, field := range []any{&seq, &timestamp, &score, &count} {
		if err := binary.Read(r, binary.BigEndian, field); err != nil {
			t.Fatalf("unpacking header: %v", err)
		}
	}
	if seq != 1 {
		t.Errorf("sequence = %d, want 1", seq)
	}
	if score != 4.25 {
		t.Errorf("score = %g, want 4.25", score)
	}
	if count != 3 {
		t.Fatalf("bin count = %d, want 3", count)
	}
	mags := make([]float32, count)
	if err := binary.Read(r, binary.BigEndian, mags); err != nil {
		t.Fatalf("unpacking magnitudes: %v", err)
	}
	for i, want := range frame.Magnitudes {
		if float64(mags[i]) != want {
			t.Errorf("magnitude %d = %g, want %g", i, mags[i], want)
		}
	}
}

func TestUDPTransportRateLimits(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	transport, err := NewUDPTransport(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer transport.Close()

	// Back-to-back sends inside the rate limit window must drop the
	// second frame, not block or error.
	frame := Frame{Score: 1, Magnitudes: []float64{1}}
	if err := transport.Send(frame); err != nil {
		t.Fatal(err)
	}
	if err := transport.Send(frame); err != nil {
		t.Fatal(err)
	}

	listener.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	packet := make([]byte, 256)
	if _, _, err := listener.ReadFromUDP(packet); err != nil {
		t.Fatalf("first frame not delivered: %v", err)
	}
	listener.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := listener.ReadFromUDP(packet); err == nil {
		t.Error("rate-limited second frame was delivered")
	}
}

func TestUDPTransportCloseIdempotent(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	transport, err := NewUDPTransport(listener.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	if err := transport.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := transport.Send(Frame{}); err == nil {
		t.Error("Send after Close did not fail")
	}
}
