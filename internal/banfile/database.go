package banfile

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Database is the in-memory form of a ban-record file.
type Database struct {
	// Header is the first line, including its original line terminator.
	// It is never parsed and is re-emitted byte-for-byte.
	Header string

	// Lines holds every following line, trimmed of surrounding whitespace,
	// in file order. Empty lines are kept here and skipped by the parser.
	Lines []string
}

// Exists reports whether path exists. Any stat error other than "not exist"
// is surfaced as ErrIO.
func Exists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ErrNotFound{Path: path}
		}
		return &ErrIO{Op: "stat", Path: path, Err: err}
	}
	return nil
}

// Load reads the whole database at path into memory.
func Load(path string) (*Database, error) {
	if err := Exists(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ErrNotFound{Path: path}
		}
		return nil, &ErrIO{Op: "read", Path: path, Err: err}
	}
	return Split(string(data)), nil
}

// Split separates raw file content into header and trimmed content lines.
func Split(content string) *Database {
	db := &Database{}
	if content == "" {
		return db
	}
	idx := strings.IndexByte(content, '\n')
	if idx < 0 {
		db.Header = content
		return db
	}
	db.Header = content[:idx+1]
	rest := content[idx+1:]
	if rest == "" {
		return db
	}
	rest = strings.TrimSuffix(rest, "\n")
	for _, line := range strings.Split(rest, "\n") {
		db.Lines = append(db.Lines, strings.TrimSpace(line))
	}
	return db
}

// Render serialises header followed by lines, each terminated by "\n".
func Render(header string, lines []string) []byte {
	size := len(header)
	for _, l := range lines {
		size += len(l) + 1
	}
	var b strings.Builder
	b.Grow(size)
	b.WriteString(header)
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
