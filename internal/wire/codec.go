// Package wire implements the DNS wire format subset spoken by the
// server: query decoding and single-answer response framing.
//
// The decoder never trusts length fields in the input. Every read is
// bounds-checked against the actual datagram length, and malformed
// input is reported through a small error taxonomy rather than
// partially decoded.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	// ErrTruncated means the datagram ended before a complete header
	// or question could be read.
	ErrTruncated = errors.New("dns: truncated packet")

	// ErrNotAQuery means the datagram is a response, or does not carry
	// exactly one question. Such traffic is dropped without a reply.
	ErrNotAQuery = errors.New("dns: not a single-question query")

	// ErrMalformed means the question name's label chain walks past
	// the end of the datagram.
	ErrMalformed = errors.New("dns: malformed question name")
)

// Decode parses the header and single question of a DNS query.
//
// The returned Query borrows its RawName bytes from data; callers must
// not retain it past the lifetime of the datagram buffer.
func Decode(data []byte) (*Query, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}

	q := &Query{
		ID:              binary.BigEndian.Uint16(data[0:]),
		Flags:           binary.BigEndian.Uint16(data[2:]),
		QuestionCount:   binary.BigEndian.Uint16(data[4:]),
		AnswerCount:     binary.BigEndian.Uint16(data[6:]),
		AuthorityCount:  binary.BigEndian.Uint16(data[8:]),
		AdditionalCount: binary.BigEndian.Uint16(data[10:]),
	}

	if q.Flags&FlagResponse != 0 || q.QuestionCount != 1 {
		return nil, ErrNotAQuery
	}

	// Walk the label chain. Each step is validated before the length
	// byte is consumed, so a hostile length can never move the cursor
	// out of bounds.
	off := headerSize
	for {
		if off >= len(data) {
			return nil, ErrMalformed
		}
		labelLen := int(data[off])
		if labelLen == 0 {
			off++
			break
		}
		off += 1 + labelLen
	}

	if off+4 > len(data) {
		return nil, ErrTruncated
	}

	q.RawName = data[headerSize:off]
	q.Qtype = Type(binary.BigEndian.Uint16(data[off:]))
	q.Qclass = binary.BigEndian.Uint16(data[off+2:])

	return q, nil
}

// NameToDotted converts a label-encoded name (terminator included)
// into dotted text: no trailing dot, case preserved.
func NameToDotted(raw []byte) string {
	var name []byte
	pos := 0

	for pos < len(raw) {
		labelLen := int(raw[pos])
		pos++
		if labelLen == 0 || pos+labelLen > len(raw) {
			break
		}
		if len(name) > 0 {
			name = append(name, '.')
		}
		name = append(name, raw[pos:pos+labelLen]...)
		pos += labelLen
	}

	return string(name)
}

// EncodeAnswer frames a single-answer response to q.
//
// The question section is echoed verbatim and the answer name is the
// compression pointer 0xC00C back to it, so the packet stays well under
// the 512-byte UDP limit for any name that fit in the query.
func EncodeAnswer(q *Query, a Answer) []byte {
	buf := new(bytes.Buffer)

	// Header
	binary.Write(buf, binary.BigEndian, q.ID)
	binary.Write(buf, binary.BigEndian, FlagsAnswer)
	binary.Write(buf, binary.BigEndian, uint16(1)) // qdcount
	binary.Write(buf, binary.BigEndian, uint16(1)) // ancount
	binary.Write(buf, binary.BigEndian, uint16(0)) // nscount
	binary.Write(buf, binary.BigEndian, uint16(0)) // arcount

	// Question, echoed as received
	buf.Write(q.RawName)
	binary.Write(buf, binary.BigEndian, uint16(q.Qtype))
	binary.Write(buf, binary.BigEndian, q.Qclass)

	// Answer
	buf.WriteByte(0xC0)
	buf.WriteByte(0x0C)
	binary.Write(buf, binary.BigEndian, uint16(a.Type))
	binary.Write(buf, binary.BigEndian, ClassIN)
	binary.Write(buf, binary.BigEndian, a.TTL)

	if a.Type == TypeA {
		binary.Write(buf, binary.BigEndian, uint16(4))
		buf.Write(a.Addr[:])
	} else {
		binary.Write(buf, binary.BigEndian, uint16(len(a.Data)))
		buf.WriteString(a.Data)
	}

	return buf.Bytes()
}

// EncodeNxDomain frames a header-only NXDOMAIN response to q.
func EncodeNxDomain(q *Query) []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.BigEndian, q.ID)
	binary.Write(buf, binary.BigEndian, FlagsNXDomain)
	binary.Write(buf, binary.BigEndian, uint16(0)) // qdcount
	binary.Write(buf, binary.BigEndian, uint16(0)) // ancount
	binary.Write(buf, binary.BigEndian, uint16(0)) // nscount
	binary.Write(buf, binary.BigEndian, uint16(0)) // arcount

	return buf.Bytes()
}
