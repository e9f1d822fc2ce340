package monitor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	applog "snipper/internal/log"
)

/*
UDP frame layout (BigEndian):

	|<-- 4 Bytes -->|<---- 8 Bytes ---->|<- 8 Bytes ->|<- 2 Bytes ->|<- N * 4 Bytes ->|
	+---------------+-------------------+-------------+-------------+-----------------+
	|   Sequence    |     Timestamp     |    Score    |  Bin Count  |   Magnitudes    |
	|   (uint32)    |  (int64, ns)      |  (float64)  |  (uint16)   |  (N * float32)  |
	+---------------+-------------------+-------------+-------------+-----------------+
*/

// UDPTransport sends analyzed frames as fire-and-forget binary packets to
// a fixed target address.
type UDPTransport struct {
	conn            *net.UDPConn
	mu              sync.Mutex // Protects conn and buffers during Send/Close
	closed          bool
	sequenceNum     uint32
	lastSend        time.Time
	minSendInterval time.Duration

	f32Buffer    []float32     // Reusable float32 conversion buffer
	packetBuffer *bytes.Buffer // Reusable packet assembly buffer
}

// NewUDPTransport creates a transport targeting "host:port".
func NewUDPTransport(targetAddress string) (*UDPTransport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address %q: %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target %q: %w", targetAddress, err)
	}

	applog.Infof("UDP monitor established to %s", conn.RemoteAddr())
	return &UDPTransport{
		conn:            conn,
		minSendInterval: 16 * time.Millisecond, // ~60 frames/s
		packetBuffer:    new(bytes.Buffer),
	}, nil
}

// Send packs and transmits one frame. Frames above the rate limit are
// dropped; send errors are logged at debug level and ignored.
func (t *UDPTransport) Send(frame Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("UDP monitor is closed")
	}
	now := time.Now()
	if now.Sub(t.lastSend) < t.minSendInterval {
		return nil
	}
	t.lastSend = now

	if cap(t.f32Buffer) < len(frame.Magnitudes) {
		t.f32Buffer = make([]float32, len(frame.Magnitudes))
	}
	t.f32Buffer = t.f32Buffer[:len(frame.Magnitudes)]
	for i, v := range frame.Magnitudes {
		t.f32Buffer[i] = float32(v)
	}

	t.sequenceNum++
	t.packetBuffer.Reset()
	err := binary.Write(t.packetBuffer, binary.BigEndian, t.sequenceNum)
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, now.UnixNano())
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, frame.Score)
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, uint16(len(t.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(t.packetBuffer, binary.BigEndian, t.f32Buffer)
	}
	if err != nil {
		return fmt.Errorf("packing UDP frame: %w", err)
	}

	if _, err := t.conn.Write(t.packetBuffer.Bytes()); err != nil {
		applog.Debugf("UDP monitor send failed: %v", err)
	}
	return nil
}

// Close shuts the connection down. Safe to call more than once.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}
