// Package types provides core data types for the hashreport scanner.
// It includes structures for hash results, report entries, and scan
// statistics, along with utility functions for parsing and formatting
// file sizes and timestamps.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// TimestampFormat is the textual form used for all report timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// ProcessResult is the outcome of hashing a single file.
// A result without a digest signals a per-file failure that has already
// been logged; it is dropped before aggregation.
type ProcessResult struct {
	// Path is the file that was processed.
	Path string

	// Digest is the hex-encoded hash value. Empty on failure.
	Digest string

	// Modified is the file's last modification time.
	Modified time.Time
}

// OK reports whether the result carries a digest.
func (r ProcessResult) OK() bool {
	return r.Digest != ""
}

// ReportEntry is one row of the final report, keyed by the fixed field
// names the report formats share. JSON tags match the historical column
// headers so reports remain interchangeable with prior versions.
type ReportEntry struct {
	// FileName is the base name of the file.
	FileName string `json:"File Name"`

	// FilePath is the full path to the file.
	FilePath string `json:"File Path"`

	// Size is the human-readable file size.
	Size string `json:"Size"`

	// Algorithm is the hash algorithm used.
	Algorithm string `json:"Hash Algorithm"`

	// HashValue is the hex-encoded digest of the file content.
	HashValue string `json:"Hash Value"`

	// Modified is the last modification time in TimestampFormat.
	Modified string `json:"Last Modified Date"`

	// Created is the creation time in TimestampFormat.
	// Falls back to the modification time on platforms without birth time.
	Created string `json:"Created Date"`
}

// ReportFields returns the report column names in output order.
func ReportFields() []string {
	return []string{
		"File Name",
		"File Path",
		"Size",
		"Hash Algorithm",
		"Hash Value",
		"Last Modified Date",
		"Created Date",
	}
}

// Fields returns the entry's values in ReportFields order.
func (e ReportEntry) Fields() []string {
	return []string{
		e.FileName,
		e.FilePath,
		e.Size,
		e.Algorithm,
		e.HashValue,
		e.Modified,
		e.Created,
	}
}

// ScanError pairs a path with the error encountered while processing it.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the message describing what went wrong.
	Error string `json:"error"`
}

// ScanResult contains the aggregated outcome of a scan operation.
// Entries appear in completion order of the underlying worker pool,
// which is not deterministic across runs.
type ScanResult struct {
	// RunID uniquely identifies this scan invocation.
	RunID string `json:"run_id"`

	// Entries contains one row per successfully hashed file.
	Entries []ReportEntry `json:"entries"`

	// Candidates is the number of files that passed filtering.
	Candidates int `json:"candidates"`

	// Hashed is the number of files hashed successfully.
	Hashed int `json:"hashed"`

	// Failed is the number of files that could not be hashed.
	Failed int `json:"failed"`

	// Elapsed is the total time taken to complete the scan.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains the per-item failures encountered during the scan.
	Errors []ScanError `json:"errors,omitempty"`
}

// FormatTime renders a timestamp in the fixed report form.
func FormatTime(t time.Time) string {
	return t.Format(TimestampFormat)
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It accepts plain byte counts ("1024"), and values with K/M/G/T
// suffixes in any of the common spellings ("100K", "50MB", "2GiB").
// Decimal values are supported and truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units (KiB, MiB, GiB, TiB).
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
