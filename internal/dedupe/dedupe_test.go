package dedupe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/developingchet/bandb-cleanup/internal/banfile"
)

func TestScenarioFirstWins(t *testing.T) {
	lines := []string{
		"2024-01-01 10:00:00|1.2.3.4|sshd|x|y|z",
		"2024-01-01 11:00:00|1.2.3.4|sshd|a|b|c",
		"2024-01-01 12:00:00|5.6.7.8|sshd|p|q|r",
	}

	var observed []Removal
	res := Lines(lines, func(r Removal) { observed = append(observed, r) })

	if res.Original != 3 {
		t.Errorf("original: got %d, want 3", res.Original)
	}
	if len(res.Kept) != 2 || res.Kept[0] != lines[0] || res.Kept[1] != lines[2] {
		t.Errorf("kept: got %q", res.Kept)
	}
	if len(res.Removed) != 1 {
		t.Fatalf("removed: got %d, want 1", len(res.Removed))
	}
	want := Removal{Timestamp: "2024-01-01 11:00:00", IP: "1.2.3.4", Jail: "sshd", FirstSeen: "2024-01-01 10:00:00"}
	if res.Removed[0] != want {
		t.Errorf("removal: got %+v, want %+v", res.Removed[0], want)
	}
	if len(observed) != 1 || observed[0] != want {
		t.Errorf("observer: got %+v", observed)
	}
}

func TestFirstWinsIgnoresTimestampOrder(t *testing.T) {
	lines := []string{
		"2024-06-01 00:00:00|1.2.3.4|sshd|late|b|c",
		"2024-01-01 00:00:00|1.2.3.4|sshd|early|b|c",
	}
	res := Lines(lines, nil)
	if len(res.Kept) != 1 || res.Kept[0] != lines[0] {
		t.Fatalf("expected the earlier line in the file to win, got %q", res.Kept)
	}
	if res.Removed[0].FirstSeen != "2024-06-01 00:00:00" {
		t.Errorf("first seen: got %q", res.Removed[0].FirstSeen)
	}
}

func TestSameIPDifferentJailKept(t *testing.T) {
	lines := []string{
		"2024-01-01 10:00:00|1.2.3.4|sshd|x|y|z",
		"2024-01-01 10:00:00|1.2.3.4|postfix|x|y|z",
	}
	res := Lines(lines, nil)
	if len(res.Kept) != 2 || len(res.Removed) != 0 {
		t.Errorf("kept=%d removed=%d", len(res.Kept), len(res.Removed))
	}
}

func TestMalformedPassthrough(t *testing.T) {
	lines := []string{
		"garbage-no-pipes",
		"garbage-no-pipes",
		"bad-ts|1.2.3.4|sshd|a|b|c",
		"bad-ts|1.2.3.4|sshd|a|b|c",
		"2024-01-01 10:00:00|1.2.3.4|sshd|a|b",
	}
	res := Lines(lines, nil)
	if res.Original != 5 {
		t.Errorf("original: got %d, want 5", res.Original)
	}
	if res.Malformed != 5 {
		t.Errorf("malformed: got %d, want 5", res.Malformed)
	}
	if len(res.Removed) != 0 {
		t.Errorf("malformed lines must never be removed, got %d removals", len(res.Removed))
	}
	for i := range lines {
		if res.Kept[i] != lines[i] {
			t.Errorf("kept[%d]: got %q, want %q", i, res.Kept[i], lines[i])
		}
	}
}

func TestMalformedDoesNotShadowParsed(t *testing.T) {
	lines := []string{
		"not-a-time|1.2.3.4|sshd|a|b|c",
		"2024-01-01 10:00:00|1.2.3.4|sshd|a|b|c",
	}
	res := Lines(lines, nil)
	if len(res.Kept) != 2 {
		t.Errorf("kept: got %q", res.Kept)
	}
}

func TestSkipNotCounted(t *testing.T) {
	res := Lines([]string{"", "", "2024-01-01 10:00:00|1.2.3.4|sshd|x|y|z", ""}, nil)
	if res.Original != 1 {
		t.Errorf("original: got %d, want 1", res.Original)
	}
	if len(res.Kept) != 1 {
		t.Errorf("kept: got %d, want 1", len(res.Kept))
	}
}

func TestEmptyInput(t *testing.T) {
	res := Lines(nil, nil)
	if res.Original != 0 || len(res.Kept) != 0 || len(res.Removed) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

// buildMixed generates a log with repeated keys, malformed lines, and blanks.
func buildMixed(n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i%11 == 0:
			lines = append(lines, "")
		case i%7 == 0:
			lines = append(lines, fmt.Sprintf("junk-%d", i%3))
		default:
			lines = append(lines, fmt.Sprintf("2024-01-%02d 10:00:%02d|10.0.0.%d|jail%d|x|y|z",
				1+i%28, i%60, i%13, i%3))
		}
	}
	return lines
}

func TestIdempotent(t *testing.T) {
	first := Lines(buildMixed(500), nil)
	if len(first.Removed) == 0 {
		t.Fatal("fixture should contain duplicates")
	}
	second := Lines(first.Kept, nil)
	if len(second.Removed) != 0 {
		t.Errorf("second pass removed %d entries, want 0", len(second.Removed))
	}
	if strings.Join(second.Kept, "\n") != strings.Join(first.Kept, "\n") {
		t.Error("second pass changed the kept sequence")
	}
}

func TestKeptIsOrderedSubsequenceAndKeysUnique(t *testing.T) {
	input := buildMixed(500)
	res := Lines(input, nil)

	// Subsequence check.
	j := 0
	for _, l := range input {
		if j < len(res.Kept) && l == res.Kept[j] {
			j++
		}
	}
	if j != len(res.Kept) {
		t.Fatalf("kept is not a subsequence of the input (matched %d of %d)", j, len(res.Kept))
	}

	seen := make(map[banfile.IdentityKey]bool)
	for _, l := range res.Kept {
		e := banfile.ParseLine(l)
		if e.Kind != banfile.KindParsed {
			continue
		}
		if seen[e.Record.Key()] {
			t.Errorf("key %s appears twice in output", e.Record.Key())
		}
		seen[e.Record.Key()] = true
	}

	if res.Original != len(res.Kept)+len(res.Removed) {
		t.Errorf("original %d != kept %d + removed %d", res.Original, len(res.Kept), len(res.Removed))
	}
}
