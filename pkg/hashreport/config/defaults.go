// Package config provides configuration management for hashreport.
package config

import "time"

// Default configuration values for hashreport.
const (
	// DefaultAlgorithm is the hash algorithm used when none is specified.
	DefaultAlgorithm = "md5"

	// DefaultFormat is the report format used when the output path has no
	// recognized extension.
	DefaultFormat = "csv"

	// DefaultChunkSize is the read buffer size for chunked hashing.
	DefaultChunkSize = 4096

	// DefaultMmapThreshold is the file size above which the hasher switches
	// to memory-mapped reads.
	DefaultMmapThreshold = "32MiB"

	// DefaultMinWorkers is the floor for the adaptive worker count.
	DefaultMinWorkers = 1

	// DefaultMemoryCeiling is the process memory budget the resource
	// monitor measures usage against.
	DefaultMemoryCeiling = "512MiB"

	// DefaultMemoryThreshold is the high-water fraction of the ceiling at
	// which the monitor starts reducing workers.
	DefaultMemoryThreshold = 0.85

	// DefaultSampleInterval is how often the resource monitor samples
	// process memory.
	DefaultSampleInterval = time.Second

	// ReportStampFormat is the timestamp embedded in generated report
	// filenames (hashreport-<stamp>.csv).
	ReportStampFormat = "060102-1504"
)

// DefaultExcludePaths contains paths excluded from scanning by default.
var DefaultExcludePaths = []string{
	"/proc",
	"/sys",
	"/dev",
}
