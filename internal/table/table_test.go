package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"captivedns/internal/wire"
)

func aRecord(domain string, addr [4]byte) Record {
	return Record{Domain: domain, Type: wire.TypeA, Addr: addr, TTL: 60}
}

func TestExactMatchBeatsCatchAllByInsertionOrder(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 1}))
	tbl.AddRecord(aRecord("*", [4]byte{10, 0, 0, 2}))

	rec, ok := tbl.FindMatch("foo.com", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "foo.com", rec.Domain)

	// Both are tier 1; insertion order, not specificity, breaks the
	// tie. With the catch-all first it shadows the exact record.
	tbl2 := New()
	tbl2.AddRecord(aRecord("*", [4]byte{10, 0, 0, 2}))
	tbl2.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 1}))

	rec, ok = tbl2.FindMatch("foo.com", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "*", rec.Domain)
}

func TestDuplicateInsertsShadow(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 1}))
	tbl.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 9}))

	rec, ok := tbl.FindMatch("foo.com", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, [4]byte{10, 0, 0, 1}, rec.Addr)
}

func TestGlobWildcardTier(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("*.example.com", [4]byte{10, 0, 0, 3}))

	rec, ok := tbl.FindMatch("api.example.com", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "*.example.com", rec.Domain)

	// The bare apex has no subdomain to satisfy the glob.
	_, ok = tbl.FindMatch("example.com", wire.TypeA)
	require.False(t, ok)

	// The translated pattern escapes dots; "exampleXcom" must not slip
	// through the '.' as a metacharacter.
	_, ok = tbl.FindMatch("api.exampleXcom", wire.TypeA)
	require.False(t, ok)
}

func TestExactTierRunsBeforeGlobTier(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("*.example.com", [4]byte{10, 0, 0, 3}))
	tbl.AddRecord(aRecord("api.example.com", [4]byte{10, 0, 0, 4}))

	// Exact match wins even though the glob was inserted first:
	// tier 1 is exhausted before tier 2 starts.
	rec, ok := tbl.FindMatch("api.example.com", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "api.example.com", rec.Domain)
}

func TestTypeFiltering(t *testing.T) {
	tbl := New()
	tbl.AddRecord(Record{Domain: "foo.com", Type: wire.TypeTXT, Text: "v=1", TTL: 60})

	_, ok := tbl.FindMatch("foo.com", wire.TypeA)
	require.False(t, ok)

	rec, ok := tbl.FindMatch("foo.com", wire.TypeANY)
	require.True(t, ok)
	require.Equal(t, wire.TypeTXT, rec.Type)
}

func TestMalformedGlobIsSkipped(t *testing.T) {
	tbl := New()
	// Translates to ".*(foo\.com" which does not compile.
	tbl.AddRecord(aRecord("*(foo.com", [4]byte{10, 0, 0, 5}))
	tbl.AddRecord(aRecord("*.foo.com", [4]byte{10, 0, 0, 6}))

	rec, ok := tbl.FindMatch("bar.foo.com", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, [4]byte{10, 0, 0, 6}, rec.Addr)
}

func TestPatternTierAnswersWithFirstTypeMatch(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("unrelated.com", [4]byte{10, 0, 0, 7}))
	tbl.AddPattern(`.*\.captive\.example`, []string{"captive.example"})

	// Historical behavior: the pattern matches on its key alone and
	// answers with the first type-matching record in the whole table,
	// ignoring the associated domain list.
	rec, ok := tbl.FindMatch("login.captive.example", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "unrelated.com", rec.Domain)

	_, ok = tbl.FindMatch("login.captive.example", wire.TypeTXT)
	require.False(t, ok)
}

func TestStrictPatternsUseDomainList(t *testing.T) {
	tbl := New()
	tbl.SetStrictPatterns(true)
	tbl.AddRecord(aRecord("unrelated.com", [4]byte{10, 0, 0, 7}))
	tbl.AddRecord(aRecord("captive.example", [4]byte{10, 0, 0, 8}))
	tbl.AddPattern(`.*\.captive\.example`, []string{"captive.example"})

	rec, ok := tbl.FindMatch("login.captive.example", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "captive.example", rec.Domain)
}

func TestMalformedPatternIsSkipped(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 1}))
	tbl.AddPattern(`[`, []string{"foo.com"})

	_, ok := tbl.FindMatch("anything.example", wire.TypeA)
	require.False(t, ok)
}

func TestAddPatternReplacesByKey(t *testing.T) {
	tbl := New()
	tbl.SetStrictPatterns(true)
	tbl.AddRecord(aRecord("a.example", [4]byte{10, 0, 0, 1}))
	tbl.AddRecord(aRecord("b.example", [4]byte{10, 0, 0, 2}))
	tbl.AddPattern(`.*\.p\.example`, []string{"a.example"})
	tbl.AddPattern(`.*\.p\.example`, []string{"b.example"})

	rec, ok := tbl.FindMatch("x.p.example", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "b.example", rec.Domain)
}

func TestClearKeepsPatterns(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 1}))
	tbl.AddPattern(`.*\.captive\.example`, []string{"captive.example"})

	tbl.Clear()
	require.Equal(t, 0, tbl.Len())
	_, ok := tbl.FindMatch("foo.com", wire.TypeA)
	require.False(t, ok)

	// The pattern survives the clear and becomes answerable again as
	// soon as a type-matching record exists.
	tbl.AddRecord(aRecord("fresh.com", [4]byte{10, 0, 0, 9}))
	rec, ok := tbl.FindMatch("login.captive.example", wire.TypeA)
	require.True(t, ok)
	require.Equal(t, "fresh.com", rec.Domain)
}

func TestCaseSensitiveMatching(t *testing.T) {
	tbl := New()
	tbl.AddRecord(aRecord("foo.com", [4]byte{10, 0, 0, 1}))

	_, ok := tbl.FindMatch("FOO.com", wire.TypeA)
	require.False(t, ok)
}
