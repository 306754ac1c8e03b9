package wire

import "fmt"

// Type is a DNS record/query type code.
type Type uint16

// Record types the server knows how to answer. TypeANY is only
// meaningful on the query side and matches any stored type.
const (
	TypeA     Type = 1   // IPv4 address
	TypeCNAME Type = 5   // Canonical name
	TypeMX    Type = 15  // Mail exchange
	TypeTXT   Type = 16  // Text data
	TypeAAAA  Type = 28  // IPv6 address
	TypeANY   Type = 255 // Any record type (query side only)
)

// DNS classes
const (
	ClassIN uint16 = 1
)

// Message flags and response codes
const (
	FlagResponse uint16 = 0x8000 // QR bit

	// Fully assembled response flag words: QR=1, RD=1, RA=1.
	FlagsAnswer   uint16 = 0x8180 // RCODE 0 (no error)
	FlagsNXDomain uint16 = 0x8183 // RCODE 3 (name error)
)

// headerSize is the fixed DNS header length in bytes.
const headerSize = 12

func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeCNAME:
		return "CNAME"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	case TypeAAAA:
		return "AAAA"
	case TypeANY:
		return "ANY"
	default:
		return fmt.Sprintf("TYPE%d", uint16(t))
	}
}

// ParseType converts a textual record type, as found in configuration
// files, into its wire code.
func ParseType(s string) (Type, error) {
	switch s {
	case "A":
		return TypeA, nil
	case "CNAME":
		return TypeCNAME, nil
	case "MX":
		return TypeMX, nil
	case "TXT":
		return TypeTXT, nil
	case "AAAA":
		return TypeAAAA, nil
	case "ANY":
		return TypeANY, nil
	default:
		return 0, fmt.Errorf("unknown record type: %q", s)
	}
}

// Query is one decoded DNS question, valid for a single
// request/response cycle. RawName is a sub-slice of the buffer passed
// to Decode and is not copied; it includes the terminating zero label.
type Query struct {
	ID              uint16
	Flags           uint16
	QuestionCount   uint16
	AnswerCount     uint16
	AuthorityCount  uint16
	AdditionalCount uint16

	RawName []byte
	Qtype   Type
	Qclass  uint16
}

// Name returns the dotted form of the question name.
func (q *Query) Name() string {
	return NameToDotted(q.RawName)
}

// Answer is the payload of a single-record response.
//
// Addr is consulted only when Type is TypeA; for every other type the
// rdata is the raw bytes of Data. Names inside Data (CNAME, MX targets)
// are written verbatim, not label-encoded — a deliberate wire-format
// limitation of this server.
type Answer struct {
	Type Type
	TTL  uint32
	Addr [4]byte
	Data string
}
