// Package report persists scan results to CSV and JSON files. The sink
// for a path is chosen by its extension, writes replace the file
// atomically, and appends add rows to an existing report. Concurrent
// writers from separate processes are serialized through an advisory
// file lock next to the report.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/madebyjake/hashreport/pkg/hashreport/config"
	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

// Kind identifies a report format.
type Kind string

// Supported report formats.
const (
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
)

// ErrUnsupportedFormat is returned when a format name is not a known Kind.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Sink reads and writes report entries at a fixed path.
type Sink interface {
	// Write replaces the report with the given entries. An empty slice
	// produces a valid empty report.
	Write(entries []types.ReportEntry) error

	// Append adds entries to the existing report, creating it if absent.
	Append(entries []types.ReportEntry) error

	// Read loads all entries from the report.
	Read() ([]types.ReportEntry, error)

	// Path returns the report's location on disk.
	Path() string
}

// KindOf maps a report path to its format by extension. Anything that is
// not .json is treated as CSV, matching the historical behavior.
func KindOf(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return KindJSON
	}
	return KindCSV
}

// NewSink creates the sink matching the path's extension.
func NewSink(path string) Sink {
	if KindOf(path) == KindJSON {
		return &jsonSink{path: path}
	}
	return &csvSink{path: path}
}

// ParseKind validates a format name from configuration or flags.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "csv":
		return KindCSV, nil
	case "json":
		return KindJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Filename returns a timestamped default report name in dir, like
// "hashreport-250830-1242.csv".
func Filename(dir string, kind Kind) string {
	stamp := time.Now().Format(config.ReportStampFormat)
	return filepath.Join(dir, fmt.Sprintf("hashreport-%s.%s", stamp, kind))
}

// withLock runs fn while holding an advisory lock next to the report so
// concurrent processes do not interleave writes.
func withLock(path string, fn func() error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
