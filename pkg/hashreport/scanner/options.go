package scanner

import (
	"errors"
	"fmt"
	"time"

	"github.com/madebyjake/hashreport/pkg/hashreport/filter"
	"github.com/madebyjake/hashreport/pkg/hashreport/hasher"
)

// Validation errors returned before any work starts.
var (
	// ErrNoRoot indicates that neither a root directory nor specific
	// files were provided.
	ErrNoRoot = errors.New("no root directory or files to scan")

	// ErrNegativeLimit indicates a negative file limit.
	ErrNegativeLimit = errors.New("file limit cannot be negative")
)

// Options configures a scan.
type Options struct {
	// Root is the directory to walk. Ignored when SpecificFiles is set.
	Root string

	// Recursive controls whether subdirectories of Root are walked.
	Recursive bool

	// Algorithm names the digest algorithm for every file in this scan.
	Algorithm string

	// Filter decides which discovered files are hashed. Nil means all
	// regular files qualify.
	Filter *filter.Filter

	// SpecificFiles, when non-empty, bypasses the walk entirely and
	// hashes exactly these paths (still subject to Filter).
	SpecificFiles []string

	// Limit truncates the candidate list after sorting. Zero means no
	// limit.
	Limit int

	// ShowProgress renders a progress bar while hashing.
	ShowProgress bool

	// InitialWorkers, MinWorkers, and MaxWorkers bound the worker pool.
	// Zero values fall back to the pool's own defaults.
	InitialWorkers int
	MinWorkers     int
	MaxWorkers     int

	// MemoryCeiling, MemoryThreshold, and SampleInterval configure the
	// resource monitor. Zero values fall back to the monitor's defaults.
	MemoryCeiling   int64
	MemoryThreshold float64
	SampleInterval  time.Duration

	// ChunkSize and MmapThreshold configure the hasher. Zero values fall
	// back to the hasher's defaults.
	ChunkSize     int
	MmapThreshold int64
}

// Validate rejects option combinations that cannot produce a scan.
func (o *Options) Validate() error {
	if o.Root == "" && len(o.SpecificFiles) == 0 {
		return ErrNoRoot
	}
	if !hasher.Supported(o.Algorithm) {
		return fmt.Errorf("%w: %q", hasher.ErrUnsupportedAlgorithm, o.Algorithm)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeLimit, o.Limit)
	}
	return nil
}
