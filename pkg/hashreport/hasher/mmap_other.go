//go:build !unix

package hasher

import (
	"errors"
	"hash"
	"os"
)

// hashMmap is unavailable on this platform; the caller falls back to
// chunked reads.
func hashMmap(_ *os.File, _ int64, _ hash.Hash) error {
	return errors.ErrUnsupported
}
