package netprobe

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// CymruLookup implements ASNLookup against Team Cymru's IP-to-ASN whois
// service (spec.md §4.4's asn_lookup), the same service the original's
// cymruwhois client talks to (_examples/original_source/fedimapper/
// services/networking.py::get_asn_data). No Go client for that service
// appears in the retrieved corpus, but the service itself is a plain-text
// bulk-whois protocol over TCP: this implements the wire protocol directly
// against stdlib net, rather than fabricating a dependency.
type CymruLookup struct {
	// Addr is the whois server to query. Defaults to whois.cymru.com:43.
	Addr string
	// Timeout bounds the whole TCP round trip. Defaults to 5s.
	Timeout time.Duration
}

// NewCymruLookup builds a CymruLookup with the standard server and a 5s
// timeout.
func NewCymruLookup() *CymruLookup {
	return &CymruLookup{Addr: "whois.cymru.com:43", Timeout: 5 * time.Second}
}

// Lookup queries the bulk-whois "begin/verbose/.../end" protocol for a
// single IP and parses the pipe-delimited response line:
// "AS | IP | BGP Prefix | CC | Registry | Allocated | AS Name".
func (c *CymruLookup) Lookup(ctx context.Context, ip string) (*ASNRecord, error) {
	addr := c.Addr
	if addr == "" {
		addr = "whois.cymru.com:43"
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netprobe: cymru dial: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	if _, err := fmt.Fprintf(conn, "begin\nverbose\n%s\nend\n", ip); err != nil {
		return nil, fmt.Errorf("netprobe: cymru write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	var dataLine string
	for scanner.Scan() {
		line := scanner.Text()
		// The first line is a column header ("AS | IP | ..."); the
		// response to our single query is the next non-empty line.
		if strings.HasPrefix(strings.TrimSpace(line), "AS") && strings.Contains(line, "|") && strings.Contains(line, "Name") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		dataLine = line
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("netprobe: cymru read: %w", err)
	}
	if dataLine == "" {
		return nil, nil
	}

	return parseCymruLine(dataLine)
}

// parseCymruLine parses one pipe-delimited response row from the bulk
// whois protocol into an ASNRecord. A bare "NA" in any field (Team
// Cymru's no-data marker) is treated as empty.
func parseCymruLine(line string) (*ASNRecord, error) {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 7 {
		return nil, fmt.Errorf("netprobe: cymru: unexpected response line %q", line)
	}

	asn := cymruField(fields[0])
	if asn != "" {
		asn = "AS" + asn
	}

	return &ASNRecord{
		ASN:    asn,
		CC:     cymruField(fields[3]),
		Owner:  cymruField(fields[6]),
		Prefix: cymruField(fields[2]),
	}, nil
}

func cymruField(v string) string {
	if v == "" || v == "NA" {
		return ""
	}
	return v
}
