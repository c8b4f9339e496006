package banfile

import (
	"strings"
	"time"
)

// TimestampLayout is the fixed timestamp format of the first record field.
const TimestampLayout = "2006-01-02 15:04:05"

// MinFields is the minimum number of pipe-delimited fields in a well-formed record.
const MinFields = 6

// Kind classifies a parsed line.
type Kind int

const (
	// KindSkip is an empty line; it is not an entry.
	KindSkip Kind = iota
	// KindMalformed is a line that could not be interpreted. It is passed through verbatim.
	KindMalformed
	// KindParsed is a well-formed ban record.
	KindParsed
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindMalformed:
		return "malformed"
	case KindParsed:
		return "parsed"
	}
	return "unknown"
}

// IdentityKey is the deduplication domain of a record.
type IdentityKey struct {
	IP   string
	Jail string
}

func (k IdentityKey) String() string {
	return k.IP + "|" + k.Jail
}

// Record is a well-formed ban record.
type Record struct {
	Raw       string
	Timestamp string
	IP        string
	Jail      string
	Extra     []string
}

// Key returns the record's identity key.
func (r Record) Key() IdentityKey {
	return IdentityKey{IP: r.IP, Jail: r.Jail}
}

// Entry is the result of parsing one line.
// Record is only meaningful when Kind is KindParsed.
type Entry struct {
	Kind   Kind
	Raw    string
	Record Record
}

// ParseLine classifies a single line. It never fails: lines that cannot be
// interpreted come back as KindMalformed with the raw text preserved.
func ParseLine(line string) Entry {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{Kind: KindSkip}
	}

	parts := strings.Split(line, "|")
	if len(parts) < MinFields {
		return Entry{Kind: KindMalformed, Raw: line}
	}
	if _, err := time.Parse(TimestampLayout, parts[0]); err != nil {
		return Entry{Kind: KindMalformed, Raw: line}
	}

	return Entry{
		Kind: KindParsed,
		Raw:  line,
		Record: Record{
			Raw:       line,
			Timestamp: parts[0],
			IP:        parts[1],
			Jail:      parts[2],
			Extra:     parts[3:],
		},
	}
}

// ParseAll parses lines in order.
func ParseAll(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, l := range lines {
		entries = append(entries, ParseLine(l))
	}
	return entries
}
