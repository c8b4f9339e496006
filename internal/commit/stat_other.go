//go:build !linux

package commit

import (
	"os"
	"time"
)

func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}

func fileOwner(os.FileInfo) (uid, gid int, ok bool) {
	return 0, 0, false
}
