// Package server wires the wire codec and record table into a UDP
// responder: decode, resolve, encode, send, one pipeline per datagram.
package server

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"captivedns/internal/logging"
	"captivedns/internal/stats"
	"captivedns/internal/table"
	"captivedns/internal/wire"
)

const (
	defaultPort = 53
	defaultTTL  = 60
)

// Responder is an authoritative DNS responder over a Transport.
//
// The record table may be mutated while the responder is serving;
// table locking guarantees queries never see a partial update. The
// responder itself keeps no per-request state.
type Responder struct {
	mu         sync.Mutex
	bindAddr   string
	port       uint16
	defaultTTL uint32

	table     *table.Table
	transport Transport
	stats     *stats.Stats
	running   atomic.Bool
}

// New creates a responder on the given transport, listening on port 53
// with a 60 second default TTL until configured otherwise.
func New(transport Transport) *Responder {
	return &Responder{
		bindAddr:   "0.0.0.0",
		port:       defaultPort,
		defaultTTL: defaultTTL,
		table:      table.New(),
		transport:  transport,
	}
}

// SetStats attaches a counter collector. Optional; a nil collector is
// valid and all recording becomes a no-op.
func (r *Responder) SetStats(s *stats.Stats) {
	r.stats = s
}

// AddARecord stores an A record. The address must be IPv4. A ttl of 0
// means the responder's default TTL.
func (r *Responder) AddARecord(domain string, ip net.IP, ttl uint32) error {
	ip4 := ip.To4()
	if ip4 == nil {
		return fmt.Errorf("not an IPv4 address: %v", ip)
	}

	rec := table.Record{
		Domain: domain,
		Type:   wire.TypeA,
		TTL:    r.recordTTL(ttl),
	}
	copy(rec.Addr[:], ip4)

	r.table.AddRecord(rec)
	return nil
}

// AddRecord stores a typed record whose rdata is the raw bytes of
// data. A ttl of 0 means the responder's default TTL.
func (r *Responder) AddRecord(domain string, rtype wire.Type, data string, ttl uint32) {
	r.table.AddRecord(table.Record{
		Domain: domain,
		Type:   rtype,
		Text:   data,
		TTL:    r.recordTTL(ttl),
	})
}

// AddWildcardPattern registers a regexp pattern with its domain list,
// replacing any previous entry for the same pattern.
func (r *Responder) AddWildcardPattern(pattern string, domains []string) {
	r.table.AddPattern(pattern, domains)
}

// ClearRecords empties the record list. Wildcard patterns survive.
func (r *Responder) ClearRecords() {
	r.table.Clear()
}

// SetStrictPatterns switches pattern matches to answer only from the
// pattern's own domain list. Off by default for compatibility.
func (r *Responder) SetStrictPatterns(strict bool) {
	r.table.SetStrictPatterns(strict)
}

func (r *Responder) SetDefaultTTL(ttl uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultTTL = ttl
}

func (r *Responder) recordTTL(ttl uint32) uint32 {
	if ttl != 0 {
		return ttl
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultTTL
}

func (r *Responder) Port() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.port
}

// SetPort changes the listening port. Rejected while running; stop the
// responder first.
func (r *Responder) SetPort(port uint16) error {
	if r.running.Load() {
		return fmt.Errorf("responder is running; stop it before changing ports")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.port = port
	return nil
}

// SetBindAddress changes the listening address, "0.0.0.0" by default.
func (r *Responder) SetBindAddress(addr string) error {
	if r.running.Load() {
		return fmt.Errorf("responder is running; stop it before changing addresses")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindAddr = addr
	return nil
}

// Start binds the transport and begins answering. The only propagated
// error is a bind failure; the caller may retry. A second responder on
// the same port fails here, which is what keeps ports single-owner.
func (r *Responder) Start() error {
	if r.running.Load() {
		return fmt.Errorf("responder already running")
	}

	r.mu.Lock()
	addr := net.JoinHostPort(r.bindAddr, fmt.Sprint(r.port))
	r.mu.Unlock()

	r.transport.OnPacket(r.HandleDatagram)
	if err := r.transport.Listen(addr); err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	r.running.Store(true)
	logging.Infof("dns responder listening on %s/udp", addr)
	return nil
}

// Stop closes the transport. Safe to call when not running.
func (r *Responder) Stop() {
	if !r.running.Swap(false) {
		return
	}
	if err := r.transport.Close(); err != nil {
		logging.Warnf("closing transport: %v", err)
	}
	logging.Infof("dns responder stopped")
}

func (r *Responder) IsRunning() bool {
	return r.running.Load()
}

// HandleDatagram runs the full pipeline for one datagram. Malformed
// and non-query traffic is dropped without a reply; an unmatched name
// gets a well-formed NXDOMAIN. Nothing here returns an error: every
// failure past the decode is absorbed, UDP style.
func (r *Responder) HandleDatagram(data []byte, from net.Addr) {
	q, err := wire.Decode(data)
	if err != nil {
		r.stats.RecordDropped()
		logging.Debugf("dropping datagram from %v: %v", from, err)
		return
	}
	r.stats.RecordQuery(q.Qtype)

	name := q.Name()

	var resp []byte
	if rec, ok := r.table.FindMatch(name, q.Qtype); ok {
		logging.Debugf("query %s %s from %v: answered from %q", name, q.Qtype, from, rec.Domain)
		resp = wire.EncodeAnswer(q, rec.Answer())
		r.stats.RecordAnswered()
	} else {
		logging.Debugf("query %s %s from %v: nxdomain", name, q.Qtype, from)
		resp = wire.EncodeNxDomain(q)
		r.stats.RecordNXDomain()
	}

	if err := r.transport.SendTo(resp, from); err != nil {
		logging.Debugf("send to %v failed: %v", from, err)
	}
}
