//go:build unix

package hasher

import (
	"hash"
	"os"

	"golang.org/x/sys/unix"
)

// hashMmap maps the file read-only and feeds the mapping to the digest.
// The mapping is released before returning.
func hashMmap(f *os.File, size int64, digest hash.Hash) error {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	defer func() {
		_ = unix.Munmap(data)
	}()

	digest.Write(data)
	return nil
}
