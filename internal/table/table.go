// Package table holds the in-memory record table and the matching
// logic used to resolve queries against it.
package table

import (
	"regexp"
	"strings"
	"sync"

	"captivedns/internal/wire"
)

// Record is one stored domain binding. Addr is meaningful only for
// wire.TypeA records; Text carries the raw rdata for everything else.
type Record struct {
	Domain string
	Type   wire.Type
	Addr   [4]byte
	Text   string
	TTL    uint32
}

// Answer converts the record into its response payload.
func (r Record) Answer() wire.Answer {
	return wire.Answer{
		Type: r.Type,
		TTL:  r.TTL,
		Addr: r.Addr,
		Data: r.Text,
	}
}

type pattern struct {
	key     string
	domains []string
}

// Table is an ordered record list plus a set of named regexp patterns.
// Lookups take the read lock; mutations take the write lock, so a
// query never observes a partially updated table.
//
// Insertion order decides ties: within a matching tier the first
// matching record wins, so earlier inserts shadow later duplicates.
type Table struct {
	mu       sync.RWMutex
	records  []Record
	patterns []pattern
	strict   bool
}

func New() *Table {
	return &Table{}
}

// AddRecord appends a record. No dedup and no domain validation, per
// the configuration contract: shadowing is resolved at lookup time.
func (t *Table) AddRecord(r Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// AddPattern registers a regexp pattern with its associated domains,
// replacing any previous entry for the same pattern string.
func (t *Table) AddPattern(key string, domains []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.patterns {
		if t.patterns[i].key == key {
			t.patterns[i].domains = domains
			return
		}
	}
	t.patterns = append(t.patterns, pattern{key: key, domains: domains})
}

// Clear empties the record list. Patterns are deliberately left in
// place; callers that want a full reset re-register them.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = nil
}

// SetStrictPatterns switches the pattern tier to its corrected mode:
// a pattern match answers only with a record whose domain is in the
// pattern's domain list. The default (false) preserves the historical
// behavior of answering with the first type-matching record in the
// whole table.
func (t *Table) SetStrictPatterns(strict bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strict = strict
}

// Len reports the number of stored records.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

func typeMatches(rec wire.Type, qtype wire.Type) bool {
	return rec == qtype || qtype == wire.TypeANY
}

// FindMatch returns the best record for a queried name and type.
//
// Matching runs in three tiers, each exhausted before the next:
// exact/catch-all, glob wildcard, then named patterns. Name comparison
// is byte-exact; queries are not case-folded.
func (t *Table) FindMatch(domain string, qtype wire.Type) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Tier 1: catch-all "*" or exact domain.
	for _, rec := range t.records {
		if (rec.Domain == "*" || rec.Domain == domain) && typeMatches(rec.Type, qtype) {
			return rec, true
		}
	}

	// Tier 2: glob wildcards ("*.example.com").
	for _, rec := range t.records {
		if rec.Domain == "*" || rec.Domain == domain {
			continue
		}
		if !strings.Contains(rec.Domain, "*") {
			continue
		}
		if globMatch(rec.Domain, domain) && typeMatches(rec.Type, qtype) {
			return rec, true
		}
	}

	// Tier 3: named regexp patterns.
	for _, p := range t.patterns {
		re, err := regexp.Compile("^(?:" + p.key + ")$")
		if err != nil {
			continue
		}
		if !re.MatchString(domain) {
			continue
		}
		for _, rec := range t.records {
			if !typeMatches(rec.Type, qtype) {
				continue
			}
			if t.strict && !containsString(p.domains, rec.Domain) {
				continue
			}
			return rec, true
		}
	}

	return Record{}, false
}

// globMatch translates a glob domain into an anchored regexp and
// matches it against the queried name. A pattern that fails to compile
// simply does not match; a bad record must never poison resolution.
func globMatch(glob, domain string) bool {
	pat := strings.ReplaceAll(glob, ".", `\.`)
	pat = strings.ReplaceAll(pat, "*", ".*")

	re, err := regexp.Compile("^(?:" + pat + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(domain)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
