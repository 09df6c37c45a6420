//go:build !darwin && !windows

package scanner

import (
	"os"
	"time"
)

// creationTime falls back to the modification time. Linux exposes birth
// time only through statx, which not all filesystems populate, so the
// portable stat result is used instead.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
