package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"captivedns/internal/wire"
)

// maxDataLen bounds record rdata. Responses must fit a plain 512-byte
// DNS/UDP datagram alongside the echoed question, and the rdata length
// field is 16 bits; 255 bytes keeps both constraints with room for any
// question name.
const maxDataLen = 255

// ValidationErrors holds every problem found in one validation pass,
// so a user can fix the whole file in one go.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	var b strings.Builder

	b.WriteString("validation failed with the following errors:\n")
	for _, err := range v {
		b.WriteString(fmt.Sprintf("- %s\n", err))
	}
	return b.String()
}

// Validate checks the whole configuration and aggregates every error.
func (c *Config) Validate() error {
	var errs ValidationErrors

	for i, rec := range c.Records {
		rtype, err := wire.ParseType(rec.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("records[%d] (%s): %v", i, rec.Domain, err))
			continue
		}

		if rec.Domain == "" {
			errs = append(errs, fmt.Errorf("records[%d]: domain cannot be empty", i))
		}

		switch rtype {
		case wire.TypeANY:
			errs = append(errs, fmt.Errorf("records[%d] (%s): ANY is a query type, not a storable record type", i, rec.Domain))
		case wire.TypeA:
			if ip := net.ParseIP(rec.Address); ip == nil || ip.To4() == nil {
				errs = append(errs, fmt.Errorf("records[%d] (%s): A record needs a valid IPv4 address, got %q", i, rec.Domain, rec.Address))
			}
		default:
			if rec.Data == "" {
				errs = append(errs, fmt.Errorf("records[%d] (%s): %s record needs data", i, rec.Domain, rec.Type))
			}
			if len(rec.Data) > maxDataLen {
				errs = append(errs, fmt.Errorf("records[%d] (%s): data too long: %d bytes (max %d)", i, rec.Domain, len(rec.Data), maxDataLen))
			}
		}
	}

	for i, pat := range c.Patterns {
		if _, err := regexp.Compile(pat.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("patterns[%d]: does not compile: %v", i, err))
		}
		if len(pat.Domains) == 0 {
			errs = append(errs, fmt.Errorf("patterns[%d] (%s): needs at least one domain", i, pat.Pattern))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
