// Package hasher computes content digests for files. It streams file
// content through a digest in fixed-size chunks, switching to a
// memory-mapped read for large files with a transparent fallback when
// mapping is unavailable.
package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Default tuning values, overridable via Options.
const (
	// DefaultChunkSize is the read buffer size for chunked hashing.
	DefaultChunkSize = 4096

	// DefaultMmapThreshold is the file size above which mmap is attempted.
	DefaultMmapThreshold = 32 * 1024 * 1024
)

// ErrUnsupportedAlgorithm indicates an unknown hash algorithm name.
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// digestFactories maps algorithm names to digest constructors.
var digestFactories = map[string]func() (hash.Hash, error){
	"md5":    func() (hash.Hash, error) { return md5.New(), nil },
	"sha1":   func() (hash.Hash, error) { return sha1.New(), nil },
	"sha256": func() (hash.Hash, error) { return sha256.New(), nil },
	"sha512": func() (hash.Hash, error) { return sha512.New(), nil },
	"blake2b": func() (hash.Hash, error) {
		return blake2b.New512(nil)
	},
}

// Algorithms returns the sorted list of supported algorithm names.
func Algorithms() []string {
	names := make([]string, 0, len(digestFactories))
	for name := range digestFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether the algorithm name is recognized.
func Supported(algorithm string) bool {
	_, ok := digestFactories[algorithm]
	return ok
}

// Options configures a Hasher.
type Options struct {
	// ChunkSize is the read buffer size for chunked hashing.
	// Values below 1 use DefaultChunkSize.
	ChunkSize int

	// MmapThreshold is the file size in bytes above which memory-mapped
	// reads are attempted. Values below 1 use DefaultMmapThreshold.
	MmapThreshold int64
}

// Hasher computes file digests. It is safe for concurrent use.
type Hasher struct {
	chunkSize     int
	mmapThreshold int64
}

// New creates a Hasher with the given options.
func New(opts Options) *Hasher {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MmapThreshold < 1 {
		opts.MmapThreshold = DefaultMmapThreshold
	}
	return &Hasher{
		chunkSize:     opts.ChunkSize,
		mmapThreshold: opts.MmapThreshold,
	}
}

// Hash computes the digest of the file at path using the named algorithm.
// It returns the hex-encoded digest and the file's modification time.
// Files at or above the mmap threshold are read through a memory mapping
// when the platform allows it; mapping failures fall back to chunked
// reads transparently. Zero-length files always use the chunked path.
func (h *Hasher) Hash(path, algorithm string) (string, time.Time, error) {
	factory, ok := digestFactories[algorithm]
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	digest, err := factory()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("creating %s digest: %w", algorithm, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}

	size := info.Size()
	if size >= h.mmapThreshold && size > 0 {
		if err := hashMmap(f, size, digest); err == nil {
			return hex.EncodeToString(digest.Sum(nil)), info.ModTime(), nil
		}
		// Mapping failed; rewind and fall back to chunked reads.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", time.Time{}, fmt.Errorf("rewinding %s: %w", path, err)
		}
		digest.Reset()
	}

	if err := h.hashChunked(f, digest); err != nil {
		return "", time.Time{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	return hex.EncodeToString(digest.Sum(nil)), info.ModTime(), nil
}

// hashChunked streams the file through the digest in fixed-size chunks.
func (h *Hasher) hashChunked(r io.Reader, digest hash.Hash) error {
	buf := make([]byte, h.chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
