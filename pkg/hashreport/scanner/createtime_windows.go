//go:build windows

package scanner

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the file's creation time from the Win32 file
// attributes.
func creationTime(info os.FileInfo) time.Time {
	if attrs, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, attrs.CreationTime.Nanoseconds())
	}
	return info.ModTime()
}
