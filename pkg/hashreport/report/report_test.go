package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

func sampleEntries() []types.ReportEntry {
	return []types.ReportEntry{
		{
			FileName:  "a.txt",
			FilePath:  "/data/a.txt",
			Size:      "12 B",
			Algorithm: "md5",
			HashValue: "0123456789abcdef0123456789abcdef",
			Modified:  "2026-08-30 10:00:00",
			Created:   "2026-08-29 09:00:00",
		},
		{
			FileName:  "b, with commas.log",
			FilePath:  "/data/b, with commas.log",
			Size:      "1.5 KiB",
			Algorithm: "md5",
			HashValue: "fedcba9876543210fedcba9876543210",
			Modified:  "2026-08-30 11:30:45",
			Created:   "2026-08-30 11:30:45",
		},
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{path: "report.csv", want: KindCSV},
		{path: "report.json", want: KindJSON},
		{path: "report.JSON", want: KindJSON},
		{path: "report.txt", want: KindCSV},
		{path: "report", want: KindCSV},
		{path: "/tmp/nested/report.json", want: KindJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.path))
		})
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("CSV")
	require.NoError(t, err)
	assert.Equal(t, KindCSV, kind)

	kind, err = ParseKind("json")
	require.NoError(t, err)
	assert.Equal(t, KindJSON, kind)

	_, err = ParseKind("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	name := Filename("/reports", KindCSV)
	assert.Equal(t, "/reports", filepath.Dir(name))
	assert.True(t, strings.HasPrefix(filepath.Base(name), "hashreport-"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}

func TestCSVWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)

	entries := sampleEntries()
	require.NoError(t, sink.Write(entries))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestCSVHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)
	require.NoError(t, sink.Write(sampleEntries()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "File Name,File Path,Size,Hash Algorithm,Hash Value,Last Modified Date,Created Date", lines[0])
}

func TestCSVWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)

	require.NoError(t, sink.Write(nil))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Empty(t, got)

	// The empty report still carries the header.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "File Name")
}

func TestCSVWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)

	require.NoError(t, sink.Write(sampleEntries()))
	require.NoError(t, sink.Write(sampleEntries()[:1]))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCSVAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)

	entries := sampleEntries()
	require.NoError(t, sink.Append(entries[:1]))
	require.NoError(t, sink.Append(entries[1:]))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// Appending twice must not duplicate the header.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "File Name"))
}

func TestCSVReadMissingFile(t *testing.T) {
	sink := NewSink(filepath.Join(t.TempDir(), "missing.csv"))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJSONWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	sink := NewSink(path)

	entries := sampleEntries()
	require.NoError(t, sink.Write(entries))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestJSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	sink := NewSink(path)
	require.NoError(t, sink.Write(sampleEntries()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	for _, field := range types.ReportFields() {
		assert.Contains(t, raw[0], field)
	}
}

func TestJSONWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	sink := NewSink(path)

	require.NoError(t, sink.Write(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestJSONAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	sink := NewSink(path)

	entries := sampleEntries()
	require.NoError(t, sink.Append(entries[:1]))
	require.NoError(t, sink.Append(entries[1:]))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestJSONAppendToMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	sink := NewSink(path)

	require.NoError(t, sink.Append(sampleEntries()))

	got, err := sink.Read()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"report.csv", "report.json"} {
		sink := NewSink(filepath.Join(dir, name))
		require.NoError(t, sink.Write(sampleEntries()))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
