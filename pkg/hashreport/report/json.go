package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

// jsonSink persists entries as a single JSON array.
type jsonSink struct {
	path string
}

// Path returns the report's location on disk.
func (s *jsonSink) Path() string {
	return s.path
}

// Write replaces the report atomically using a temp file and rename.
// An empty slice yields an empty JSON array.
func (s *jsonSink) Write(entries []types.ReportEntry) error {
	return withLock(s.path, func() error {
		return s.write(entries)
	})
}

// Append merges new entries into the existing array. JSON has no
// incremental row form, so the report is read, extended, and rewritten
// under the lock.
func (s *jsonSink) Append(entries []types.ReportEntry) error {
	return withLock(s.path, func() error {
		existing, err := s.read()
		if err != nil {
			return err
		}
		return s.write(append(existing, entries...))
	})
}

// Read loads all entries from the report. A missing or empty file yields
// no entries.
func (s *jsonSink) Read() ([]types.ReportEntry, error) {
	return s.read()
}

func (s *jsonSink) read() ([]types.ReportEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []types.ReportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return entries, nil
}

func (s *jsonSink) write(entries []types.ReportEntry) error {
	if entries == nil {
		entries = []types.ReportEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	// Write atomically using a temp file and rename
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
