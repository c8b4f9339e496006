package report

import (
	"fmt"
	"io"

	"github.com/developingchet/bandb-cleanup/internal/dedupe"
	"github.com/fatih/color"
)

// Reporter prints operator-facing progress and the run summary.
// Write errors are ignored: reporting never fails a run.
type Reporter struct {
	w      io.Writer
	dup    *color.Color
	ok     *color.Color
	warn   *color.Color
	header *color.Color
}

// New returns a Reporter writing to w. Colour is dropped when noColor is set
// or when fatih/color decides the terminal does not support it.
func New(w io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		w:      w,
		dup:    color.New(color.FgYellow),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgRed),
		header: color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{r.dup, r.ok, r.warn, r.header} {
			c.DisableColor()
		}
	}
	return r
}

// Backup announces the snapshot location.
func (r *Reporter) Backup(path string) {
	fmt.Fprintf(r.w, "Creating backup at: %s\n", path)
}

// Start announces the deduplication pass.
func (r *Reporter) Start() {
	fmt.Fprintln(r.w, "Processing entries to remove duplicates...")
}

// Removal prints one dropped duplicate. It is used as a dedupe.Observer so
// lines appear while the pass runs.
func (r *Reporter) Removal(rm dedupe.Removal) {
	r.dup.Fprintf(r.w, "  Removing duplicate: %s %s %s (first seen at %s)\n",
		rm.Timestamp, rm.IP, rm.Jail, rm.FirstSeen)
}

// Summary prints the entry counts.
func (r *Reporter) Summary(res dedupe.Result) {
	fmt.Fprintln(r.w)
	r.header.Fprintf(r.w, "Original entries: %d\n", res.Original)
	fmt.Fprintf(r.w, "New entries: %d\n", len(res.Kept))
	fmt.Fprintf(r.w, "Removed: %d duplicates\n", len(res.Removed))
	if res.Malformed > 0 {
		fmt.Fprintf(r.w, "Malformed entries kept: %d\n", res.Malformed)
	}
}

// NoDuplicates reports a clean database.
func (r *Reporter) NoDuplicates() {
	r.ok.Fprintln(r.w, "No duplicates found.")
}

// DryRun reports that nothing was written.
func (r *Reporter) DryRun(removed int) {
	fmt.Fprintf(r.w, "Dry run: %d duplicates would be removed. No changes made.\n", removed)
}

// Cancelled reports a declined confirmation.
func (r *Reporter) Cancelled() {
	r.warn.Fprintln(r.w, "Cleanup cancelled. No changes made.")
}

// Applied reports a successful replace.
func (r *Reporter) Applied(backup string) {
	r.ok.Fprintln(r.w, "Database cleaned successfully!")
	fmt.Fprintf(r.w, "Backup saved at: %s\n", backup)
}
