package server

import (
	"net"
	"sync"

	"captivedns/internal/logging"
)

// maxPacketSize bounds the receive buffer; plain DNS over UDP is
// limited to 512 bytes and the codec never emits EDNS0.
const maxPacketSize = 512

// Transport delivers inbound datagrams to the responder and carries
// its responses back out. The responder treats it as a collaborator
// and holds no socket state of its own.
type Transport interface {
	// Listen binds the transport to addr ("host:port" for UDP).
	Listen(addr string) error

	// OnPacket registers the receive callback. Must be called before
	// Listen; packets arriving with no callback are discarded.
	OnPacket(fn func(payload []byte, from net.Addr))

	// SendTo is a best-effort unicast send, UDP semantics: no
	// acknowledgment, no retry.
	SendTo(b []byte, to net.Addr) error

	// Close releases the socket and stops packet delivery.
	Close() error
}

// UDPTransport is the production Transport over a UDP socket.
type UDPTransport struct {
	mu       sync.Mutex
	pc       net.PacketConn
	handler  func(payload []byte, from net.Addr)
	shutdown chan struct{}
}

func NewUDPTransport() *UDPTransport {
	return &UDPTransport{}
}

func (t *UDPTransport) OnPacket(fn func(payload []byte, from net.Addr)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = fn
}

func (t *UDPTransport) Listen(addr string) error {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}

	shutdown := make(chan struct{})

	t.mu.Lock()
	t.pc = pc
	t.shutdown = shutdown
	t.mu.Unlock()

	go t.readLoop(pc, shutdown)
	return nil
}

// readLoop delivers each datagram on its own goroutine, so one slow
// handler never blocks the socket. The loop watches the shutdown
// channel it was started with: a later Listen installs a fresh channel
// and loop, and this one must not observe it.
func (t *UDPTransport) readLoop(pc net.PacketConn, shutdown chan struct{}) {
	for {
		buf := make([]byte, maxPacketSize)
		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			select {
			case <-shutdown:
				return
			default:
			}
			logging.Warnf("udp read failed: %v", err)
			continue
		}

		t.mu.Lock()
		handler := t.handler
		t.mu.Unlock()
		if handler == nil {
			continue
		}

		go handler(buf[:n], from)
	}
}

// LocalAddr reports the bound address, or nil before Listen. Handy
// when listening on port 0.
func (t *UDPTransport) LocalAddr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pc == nil {
		return nil
	}
	return t.pc.LocalAddr()
}

func (t *UDPTransport) SendTo(b []byte, to net.Addr) error {
	t.mu.Lock()
	pc := t.pc
	t.mu.Unlock()

	if pc == nil {
		return net.ErrClosed
	}
	_, err := pc.WriteTo(b, to)
	return err
}

func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pc == nil {
		return nil
	}
	close(t.shutdown)
	err := t.pc.Close()
	t.pc = nil
	return err
}
