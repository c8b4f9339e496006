package banfile

import "fmt"

// ErrNotFound is returned when the database path does not exist.
type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("database file not found: %s", e.Path)
}

// ErrPermission is returned when the process lacks the privilege to read or
// modify the database or its directory.
type ErrPermission struct {
	Path   string
	Reason string
}

func (e *ErrPermission) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("permission denied: %s", e.Reason)
	}
	return fmt.Sprintf("permission denied on %s: %s", e.Path, e.Reason)
}

// ErrIO is returned when reading or copying an existing, permitted path fails.
type ErrIO struct {
	Op   string
	Path string
	Err  error
}

func (e *ErrIO) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ErrIO) Unwrap() error { return e.Err }

// ErrWrite is returned when replacing the database contents fails.
// Backup names the snapshot the operator restores from.
type ErrWrite struct {
	Path   string
	Backup string
	Err    error
}

func (e *ErrWrite) Error() string {
	if e.Backup == "" {
		return fmt.Sprintf("write %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("write %s: %v (restore from backup %s)", e.Path, e.Err, e.Backup)
}

func (e *ErrWrite) Unwrap() error { return e.Err }
