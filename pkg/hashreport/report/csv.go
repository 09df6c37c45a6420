package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

// csvSink persists entries as CSV with a fixed header row.
type csvSink struct {
	path string
}

// Path returns the report's location on disk.
func (s *csvSink) Path() string {
	return s.path
}

// Write replaces the report atomically using a temp file and rename, so
// readers never observe a partial report. An empty slice yields a report
// containing only the header row.
func (s *csvSink) Write(entries []types.ReportEntry) error {
	return withLock(s.path, func() error {
		tmpPath := s.path + ".tmp"
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}

		if err := writeRows(f, entries, true); err != nil {
			f.Close()
			_ = os.Remove(tmpPath)
			return err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to close temp file: %w", err)
		}

		if err := os.Rename(tmpPath, s.path); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
		return nil
	})
}

// Append adds rows to the existing report, writing the header first when
// the file is new or empty.
func (s *csvSink) Append(entries []types.ReportEntry) error {
	return withLock(s.path, func() error {
		f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open report: %w", err)
		}

		info, err := f.Stat()
		if err != nil {
			f.Close()
			return fmt.Errorf("failed to stat report: %w", err)
		}

		if err := writeRows(f, entries, info.Size() == 0); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// Read loads all entries from the report. A missing or empty file yields
// no entries.
func (s *csvSink) Read() ([]types.ReportEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(types.ReportFields())

	// Header row.
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}

	var entries []types.ReportEntry
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report row: %w", err)
		}
		entries = append(entries, entryFromRecord(record))
	}
	return entries, nil
}

// writeRows writes the optional header and all entry rows to w.
func writeRows(w io.Writer, entries []types.ReportEntry, withHeader bool) error {
	cw := csv.NewWriter(w)

	if withHeader {
		if err := cw.Write(types.ReportFields()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, entry := range entries {
		if err := cw.Write(entry.Fields()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return nil
}

// entryFromRecord maps a CSV record back to an entry in field order.
func entryFromRecord(record []string) types.ReportEntry {
	return types.ReportEntry{
		FileName:  record[0],
		FilePath:  record[1],
		Size:      record[2],
		Algorithm: record[3],
		HashValue: record[4],
		Modified:  record[5],
		Created:   record[6],
	}
}
