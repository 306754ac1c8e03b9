// Package stats collects lightweight query counters for the responder.
// The composition root decides how (or whether) to expose them.
package stats

import (
	"sync"
	"sync/atomic"

	"captivedns/internal/wire"
)

// Stats accumulates counters across the lifetime of a responder.
// All methods are safe for concurrent use and safe on a nil receiver,
// so the responder can run without a collector attached.
type Stats struct {
	total    atomic.Int64
	dropped  atomic.Int64
	answered atomic.Int64
	nxdomain atomic.Int64

	mu      sync.Mutex
	byQtype map[wire.Type]int64
}

func New() *Stats {
	return &Stats{
		byQtype: make(map[wire.Type]int64),
	}
}

// RecordQuery counts one successfully decoded query.
func (s *Stats) RecordQuery(qtype wire.Type) {
	if s == nil {
		return
	}
	s.total.Add(1)

	s.mu.Lock()
	s.byQtype[qtype]++
	s.mu.Unlock()
}

// RecordDropped counts one datagram discarded without a response.
func (s *Stats) RecordDropped() {
	if s == nil {
		return
	}
	s.dropped.Add(1)
}

// RecordAnswered counts one positive response.
func (s *Stats) RecordAnswered() {
	if s == nil {
		return
	}
	s.answered.Add(1)
}

// RecordNXDomain counts one NXDOMAIN response.
func (s *Stats) RecordNXDomain() {
	if s == nil {
		return
	}
	s.nxdomain.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalQueries int64            `json:"total_queries"`
	Dropped      int64            `json:"dropped"`
	Answered     int64            `json:"answered"`
	NXDomain     int64            `json:"nxdomain"`
	ByQtype      map[string]int64 `json:"queries_by_type"`
}

func (s *Stats) GetSnapshot() Snapshot {
	if s == nil {
		return Snapshot{ByQtype: map[string]int64{}}
	}

	snap := Snapshot{
		TotalQueries: s.total.Load(),
		Dropped:      s.dropped.Load(),
		Answered:     s.answered.Load(),
		NXDomain:     s.nxdomain.Load(),
		ByQtype:      make(map[string]int64),
	}

	s.mu.Lock()
	for t, n := range s.byQtype {
		snap.ByQtype[t.String()] = n
	}
	s.mu.Unlock()

	return snap
}
