package commit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/developingchet/bandb-cleanup/internal/banfile"
)

// BackupTimeLayout is the second-resolution suffix of backup file names.
const BackupTimeLayout = "20060102-150405"

// BackupPath returns the snapshot path for dbPath taken at now.
func BackupPath(dbPath string, now time.Time) string {
	return dbPath + ".backup-" + now.Format(BackupTimeLayout)
}

// Snapshot copies dbPath to its timestamped backup path, preserving the
// permission bits and access/modification times of the original.
func Snapshot(dbPath string, now time.Time) (string, error) {
	dst := BackupPath(dbPath, now)

	src, err := os.Open(dbPath)
	if err != nil {
		return "", &banfile.ErrIO{Op: "open", Path: dbPath, Err: err}
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", &banfile.ErrIO{Op: "stat", Path: dbPath, Err: err}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return "", &banfile.ErrIO{Op: "create backup", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", &banfile.ErrIO{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", &banfile.ErrIO{Op: "sync", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", &banfile.ErrIO{Op: "close", Path: dst, Err: err}
	}

	// Metadata is preserved where the platform allows; failures here do not
	// invalidate the copied content.
	_ = os.Chmod(dst, info.Mode().Perm())
	_ = os.Chtimes(dst, accessTime(info), info.ModTime())
	return dst, nil
}

// Replace writes header followed by kept lines to dbPath as one replacement
// of the whole file: the content goes to a temporary file in the same
// directory, which is then renamed over dbPath. A symlinked dbPath is
// resolved first so the link survives and its target receives the content.
// backup is only used to point the operator at the recovery path when the
// write fails.
func Replace(dbPath, header string, kept []string, backup string) error {
	wrap := func(err error) error {
		return &banfile.ErrWrite{Path: dbPath, Backup: backup, Err: err}
	}

	target, err := filepath.EvalSymlinks(dbPath)
	if err != nil {
		return wrap(fmt.Errorf("resolve path: %w", err))
	}
	info, err := os.Stat(target)
	if err != nil {
		return wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return wrap(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(banfile.Render(header, kept)); err != nil {
		_ = tmp.Close()
		cleanup()
		return wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return wrap(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return wrap(err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		cleanup()
		return wrap(err)
	}
	if uid, gid, ok := fileOwner(info); ok {
		// Keep ownership when running privileged; unprivileged callers already own the file.
		_ = os.Chown(tmpName, uid, gid)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return wrap(err)
	}
	return nil
}
