package server

import (
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// End-to-end over a real socket: a stock miekg client queries the
// responder through the UDP transport on an ephemeral loopback port.
func TestUDPTransportEndToEnd(t *testing.T) {
	ut := NewUDPTransport()
	r := New(ut)
	require.NoError(t, r.AddARecord("device.local", net.ParseIP("192.168.4.1"), 60))

	ut.OnPacket(r.HandleDatagram)
	require.NoError(t, ut.Listen("127.0.0.1:0"))
	defer ut.Close()

	addr := ut.LocalAddr()
	require.NotNil(t, addr)

	client := &dns.Client{Net: "udp", Timeout: 2 * time.Second}

	m := new(dns.Msg)
	m.SetQuestion("device.local.", dns.TypeA)
	resp, _, err := client.Exchange(m, addr.String())
	require.NoError(t, err)
	require.Equal(t, dns.RcodeSuccess, resp.Rcode)
	require.Len(t, resp.Answer, 1)

	a, ok := resp.Answer[0].(*dns.A)
	require.True(t, ok)
	require.Equal(t, "192.168.4.1", a.A.String())

	m = new(dns.Msg)
	m.SetQuestion("missing.example.", dns.TypeA)
	resp, _, err = client.Exchange(m, addr.String())
	require.NoError(t, err)
	require.Equal(t, dns.RcodeNameError, resp.Rcode)
}

// Rebinding must not leave a stale read loop behind: each loop watches
// the shutdown channel it was started with, so rapid Close/Listen
// cycles neither race on the channel field nor leak spinning
// goroutines on the closed socket.
func TestUDPTransportRestart(t *testing.T) {
	ut := NewUDPTransport()
	ut.OnPacket(func([]byte, net.Addr) {})

	for i := 0; i < 200; i++ {
		require.NoError(t, ut.Listen("127.0.0.1:0"))
		require.NoError(t, ut.Close())
	}

	// Still serviceable after the churn.
	r := New(ut)
	require.NoError(t, r.AddARecord("device.local", net.ParseIP("192.168.4.1"), 60))
	ut.OnPacket(r.HandleDatagram)
	require.NoError(t, ut.Listen("127.0.0.1:0"))
	defer ut.Close()

	client := &dns.Client{Net: "udp", Timeout: 2 * time.Second}
	m := new(dns.Msg)
	m.SetQuestion("device.local.", dns.TypeA)
	resp, _, err := client.Exchange(m, ut.LocalAddr().String())
	require.NoError(t, err)
	require.Equal(t, dns.RcodeSuccess, resp.Rcode)
}

func TestUDPTransportCloseIsIdempotent(t *testing.T) {
	ut := NewUDPTransport()
	require.NoError(t, ut.Listen("127.0.0.1:0"))
	require.NoError(t, ut.Close())
	require.NoError(t, ut.Close())
	require.Nil(t, ut.LocalAddr())
}

func TestUDPTransportSendBeforeListen(t *testing.T) {
	ut := NewUDPTransport()
	err := ut.SendTo([]byte{0}, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1})
	require.Error(t, err)
}
