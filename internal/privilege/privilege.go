package privilege

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/developingchet/bandb-cleanup/internal/banfile"
	"golang.org/x/sys/unix"
)

// Checker verifies the process may read and rewrite the database and create
// a backup beside it.
type Checker interface {
	Check(dbPath string) error
}

// SystemChecker checks the effective user and file access with access(2).
type SystemChecker struct {
	RequireRoot bool

	// geteuid is swapped in tests.
	geteuid func() int
}

// NewSystemChecker returns a SystemChecker bound to the real process credentials.
func NewSystemChecker(requireRoot bool) *SystemChecker {
	return &SystemChecker{RequireRoot: requireRoot, geteuid: os.Geteuid}
}

// Check returns *banfile.ErrPermission on insufficient privilege. A missing
// database is not reported here; the loader owns that error.
func (c *SystemChecker) Check(dbPath string) error {
	euid := os.Geteuid
	if c.geteuid != nil {
		euid = c.geteuid
	}
	if c.RequireRoot && euid() != 0 {
		return &banfile.ErrPermission{Reason: "this command must be run as root"}
	}

	if err := unix.Access(dbPath, unix.R_OK|unix.W_OK); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil
		}
		return &banfile.ErrPermission{Path: dbPath, Reason: "cannot read and write database: " + err.Error()}
	}

	dir := filepath.Dir(dbPath)
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return &banfile.ErrPermission{Path: dir, Reason: "cannot create backup in directory: " + err.Error()}
	}
	return nil
}

// Func adapts a plain function to Checker.
type Func func(dbPath string) error

// Check implements Checker.
func (f Func) Check(dbPath string) error { return f(dbPath) }
