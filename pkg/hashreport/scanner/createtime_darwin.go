//go:build darwin

package scanner

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the file's birth time. Darwin records it in the
// stat structure directly.
func creationTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	}
	return info.ModTime()
}
