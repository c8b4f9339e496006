package dedupe

import (
	"github.com/developingchet/bandb-cleanup/internal/banfile"
)

// Removal describes a dropped duplicate and the record it duplicates.
type Removal struct {
	Timestamp string
	IP        string
	Jail      string
	FirstSeen string
}

// Observer is notified of each removal as the pass reaches it.
type Observer func(Removal)

// Result is the outcome of one deduplication pass.
type Result struct {
	// Original counts every non-empty line, malformed ones included.
	Original int
	// Kept holds the raw text of retained lines in file order.
	Kept      []string
	Removed   []Removal
	Malformed int
}

// Deduplicate keeps the first record seen for each (ip, jail) key and drops
// later ones. Position in the file decides, not the timestamp value.
// Malformed entries are always kept and never indexed.
func Deduplicate(entries []banfile.Entry, observe Observer) Result {
	firstSeen := make(map[banfile.IdentityKey]string)
	res := Result{Kept: make([]string, 0, len(entries))}

	for _, e := range entries {
		switch e.Kind {
		case banfile.KindSkip:
			continue
		case banfile.KindMalformed:
			res.Original++
			res.Malformed++
			res.Kept = append(res.Kept, e.Raw)
		case banfile.KindParsed:
			res.Original++
			key := e.Record.Key()
			if first, dup := firstSeen[key]; dup {
				rm := Removal{
					Timestamp: e.Record.Timestamp,
					IP:        e.Record.IP,
					Jail:      e.Record.Jail,
					FirstSeen: first,
				}
				res.Removed = append(res.Removed, rm)
				if observe != nil {
					observe(rm)
				}
				continue
			}
			firstSeen[key] = e.Record.Timestamp
			res.Kept = append(res.Kept, e.Record.Raw)
		}
	}
	return res
}

// Lines parses and deduplicates raw database lines in one call.
func Lines(lines []string, observe Observer) Result {
	return Deduplicate(banfile.ParseAll(lines), observe)
}
