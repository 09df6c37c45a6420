package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/madebyjake/hashreport/pkg/hashreport/config"
)

// resetScanFlags restores the scan flag globals after a test mutates them.
func resetScanFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		scanAlgorithm = ""
		scanOutputs = nil
		scanInclude = nil
		scanExclude = nil
		scanRegex = false
		scanMinSize = ""
		scanMaxSize = ""
		scanExtension = ""
		scanFilenames = nil
		scanExcludePaths = nil
		scanWorkers = 0
	})
}

func TestBuildFilterSizes(t *testing.T) {
	tests := []struct {
		name    string
		minSize string
		maxSize string
		wantErr bool
	}{
		{name: "no sizes", wantErr: false},
		{name: "valid sizes", minSize: "100K", maxSize: "1G", wantErr: false},
		{name: "invalid min", minSize: "lots", wantErr: true},
		{name: "invalid max", maxSize: "-5M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetScanFlags(t)
			scanMinSize = tt.minSize
			scanMaxSize = tt.maxSize

			_, err := buildFilter(&config.Config{})
			if (err != nil) != tt.wantErr {
				t.Errorf("buildFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildFilterMergesExcludePaths(t *testing.T) {
	resetScanFlags(t)
	scanExcludePaths = []string{"/mnt/slow"}

	f, err := buildFilter(&config.Config{ExcludePaths: []string{"/proc"}})
	if err != nil {
		t.Fatalf("buildFilter() error = %v", err)
	}

	if f.MatchesSize("/proc/self/status", 10) {
		t.Error("config exclude path not applied")
	}
	if f.MatchesSize("/mnt/slow/file.bin", 10) {
		t.Error("flag exclude path not applied")
	}
}

func TestBuildScanOptionsWorkerPrecedence(t *testing.T) {
	resetScanFlags(t)
	cfg := &config.Config{
		Algorithm: "md5",
		Workers:   config.WorkersConfig{Initial: 2, Min: 1, Max: 4},
		Memory:    config.MemoryConfig{Ceiling: "256MiB", Threshold: 0.85},
	}

	opts, err := buildScanOptions(cfg, ".", "md5", nil)
	if err != nil {
		t.Fatalf("buildScanOptions() error = %v", err)
	}
	if opts.InitialWorkers != 2 || opts.MaxWorkers != 4 {
		t.Errorf("config workers not applied: initial=%d max=%d", opts.InitialWorkers, opts.MaxWorkers)
	}

	// An explicit flag override pins both initial and max.
	scanWorkers = 3
	opts, err = buildScanOptions(cfg, ".", "md5", nil)
	if err != nil {
		t.Fatalf("buildScanOptions() error = %v", err)
	}
	if opts.InitialWorkers != 3 || opts.MaxWorkers != 3 {
		t.Errorf("worker override not applied: initial=%d max=%d", opts.InitialWorkers, opts.MaxWorkers)
	}
}

func TestBuildScanOptionsBadCeiling(t *testing.T) {
	resetScanFlags(t)
	cfg := &config.Config{Memory: config.MemoryConfig{Ceiling: "lots"}}

	if _, err := buildScanOptions(cfg, ".", "md5", nil); err == nil {
		t.Error("invalid memory ceiling should be rejected")
	}
}

func TestResolveOutputsDefault(t *testing.T) {
	resetScanFlags(t)

	outputs, err := resolveOutputs(&config.Config{Format: "json"})
	if err != nil {
		t.Fatalf("resolveOutputs() error = %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(outputs))
	}
	base := filepath.Base(outputs[0])
	if !strings.HasPrefix(base, "hashreport-") || !strings.HasSuffix(base, ".json") {
		t.Errorf("default output %q not timestamped json", outputs[0])
	}
}

func TestResolveOutputsExplicit(t *testing.T) {
	resetScanFlags(t)
	scanOutputs = []string{"a.csv", "b.json"}

	outputs, err := resolveOutputs(&config.Config{Format: "csv"})
	if err != nil {
		t.Fatalf("resolveOutputs() error = %v", err)
	}
	if len(outputs) != 2 {
		t.Errorf("got %d outputs, want 2", len(outputs))
	}
}

func TestResolveOutputsDirectory(t *testing.T) {
	resetScanFlags(t)
	dir := t.TempDir()
	scanOutputs = []string{dir}

	outputs, err := resolveOutputs(&config.Config{Format: "csv"})
	if err != nil {
		t.Fatalf("resolveOutputs() error = %v", err)
	}
	if filepath.Dir(outputs[0]) != dir {
		t.Errorf("output %q not inside directory %q", outputs[0], dir)
	}
	if !strings.HasSuffix(outputs[0], ".csv") {
		t.Errorf("output %q missing format extension", outputs[0])
	}
}

func TestResolveOutputsExtensionless(t *testing.T) {
	resetScanFlags(t)
	dir := t.TempDir()
	scanOutputs = []string{filepath.Join(dir, "myreport")}

	outputs, err := resolveOutputs(&config.Config{Format: "csv"})
	if err != nil {
		t.Fatalf("resolveOutputs() error = %v", err)
	}
	if outputs[0] != filepath.Join(dir, "myreport.csv") {
		t.Errorf("extensionless output = %q, want format extension appended", outputs[0])
	}

	// The configured format decides which extension is appended.
	outputs, err = resolveOutputs(&config.Config{Format: "json"})
	if err != nil {
		t.Fatalf("resolveOutputs() error = %v", err)
	}
	if outputs[0] != filepath.Join(dir, "myreport.json") {
		t.Errorf("extensionless output = %q, want .json appended", outputs[0])
	}
}

func TestResolveOutputsBadFormat(t *testing.T) {
	resetScanFlags(t)

	if _, err := resolveOutputs(&config.Config{Format: "xml"}); err == nil {
		t.Error("unknown format should be rejected")
	}
}
