package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/madebyjake/hashreport/pkg/hashreport/config"
	"github.com/madebyjake/hashreport/pkg/hashreport/filter"
	"github.com/madebyjake/hashreport/pkg/hashreport/logging"
	"github.com/madebyjake/hashreport/pkg/hashreport/report"
	"github.com/madebyjake/hashreport/pkg/hashreport/scanner"
	"github.com/madebyjake/hashreport/pkg/hashreport/tuner"
	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

var (
	scanAlgorithm    string
	scanOutputs      []string
	scanAppend       bool
	scanInclude      []string
	scanExclude      []string
	scanRegex        bool
	scanMinSize      string
	scanMaxSize      string
	scanExtension    string
	scanFilenames    []string
	scanExcludePaths []string
	scanLimit        int
	scanNoRecursive  bool
	scanWorkers      int
	scanFiles        []string
	scanNoProgress   bool
)

// timeRounding keeps elapsed-time output readable.
const timeRounding = time.Millisecond

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Hash files under a directory and write a report",
	Long: `Scan walks the given directory (default: current directory), hashes every
file that passes the filters, and writes the digests to one or more report
files. The report format is chosen by each output path's extension:
.json produces a JSON array, anything else produces CSV.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanAlgorithm, "algorithm", "a", "", "hash algorithm (default from config)")
	scanCmd.Flags().StringSliceVarP(&scanOutputs, "output", "o", nil, "report file (repeatable; default: timestamped CSV in current directory)")
	scanCmd.Flags().BoolVar(&scanAppend, "append", false, "append to existing reports instead of replacing them")
	scanCmd.Flags().StringSliceVarP(&scanInclude, "include", "i", nil, "include patterns matched against filenames (repeatable)")
	scanCmd.Flags().StringSliceVarP(&scanExclude, "exclude", "e", nil, "exclude patterns matched against filenames (repeatable)")
	scanCmd.Flags().BoolVar(&scanRegex, "regex", false, "treat include/exclude patterns as regular expressions")
	scanCmd.Flags().StringVar(&scanMinSize, "min-size", "", "minimum file size (e.g., 100K, 1G)")
	scanCmd.Flags().StringVar(&scanMaxSize, "max-size", "", "maximum file size (e.g., 100M)")
	scanCmd.Flags().StringVar(&scanExtension, "ext", "", "only hash files with this extension (e.g., .txt)")
	scanCmd.Flags().StringSliceVar(&scanFilenames, "filename", nil, "only hash files with these exact names (repeatable)")
	scanCmd.Flags().StringSliceVar(&scanExcludePaths, "exclude-path", nil, "skip these paths and everything beneath them (repeatable)")
	scanCmd.Flags().IntVarP(&scanLimit, "limit", "l", 0, "stop after this many files (0=unlimited)")
	scanCmd.Flags().BoolVar(&scanNoRecursive, "no-recursive", false, "do not descend into subdirectories")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "override worker count (0=auto)")
	scanCmd.Flags().StringSliceVarP(&scanFiles, "file", "f", nil, "hash these specific files instead of walking (repeatable)")
	scanCmd.Flags().BoolVar(&scanNoProgress, "no-progress", false, "disable the progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("%v", err)
		return err
	}

	if err := initLogging(cfg); err != nil {
		printError("failed to initialize logging: %v", err)
		return err
	}
	defer func() { _ = logging.Close() }()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	algorithm := cfg.Algorithm
	if scanAlgorithm != "" {
		algorithm = scanAlgorithm
	}

	f, err := buildFilter(cfg)
	if err != nil {
		printError("%v", err)
		return err
	}

	opts, err := buildScanOptions(cfg, root, algorithm, f)
	if err != nil {
		printError("%v", err)
		return err
	}

	s, err := scanner.New(opts)
	if err != nil {
		printError("%v", err)
		return err
	}

	result, err := s.Scan(cmd.Context())
	if err != nil {
		printError("scan failed: %v", err)
		return err
	}

	outputs, err := resolveOutputs(cfg)
	if err != nil {
		printError("%v", err)
		return err
	}

	for _, out := range outputs {
		sink := report.NewSink(out)
		if scanAppend {
			err = sink.Append(result.Entries)
		} else {
			err = sink.Write(result.Entries)
		}
		if err != nil {
			printError("failed to write report %s: %v", out, err)
			return err
		}
		printSuccess("Report written: %s", out)
	}

	printInfo("Hashed %d of %d files in %s", result.Hashed, result.Candidates, result.Elapsed.Round(timeRounding))
	if result.Failed > 0 || len(result.Errors) > 0 {
		printWarning("%d files could not be processed", len(result.Errors))
		if getVerbose() {
			for _, e := range result.Errors {
				printWarning("  %s: %s", e.Path, e.Error)
			}
		}
	}

	return nil
}

// buildFilter creates a filter from the CLI flags and configuration.
func buildFilter(cfg *config.Config) (*filter.Filter, error) {
	spec := filter.Spec{
		Include:      scanInclude,
		Exclude:      scanExclude,
		Regex:        scanRegex,
		Extension:    scanExtension,
		Names:        scanFilenames,
		ExcludePaths: append(append([]string{}, cfg.ExcludePaths...), scanExcludePaths...),
	}

	if scanMinSize != "" {
		minSize, err := types.ParseSize(scanMinSize)
		if err != nil {
			return nil, fmt.Errorf("invalid min-size %q: %w", scanMinSize, err)
		}
		spec.MinSize = minSize
	}
	if scanMaxSize != "" {
		maxSize, err := types.ParseSize(scanMaxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid max-size %q: %w", scanMaxSize, err)
		}
		spec.MaxSize = maxSize
	}

	return filter.New(spec), nil
}

// buildScanOptions derives scanner options from configuration, detected
// system resources, and flag overrides.
func buildScanOptions(cfg *config.Config, root, algorithm string, f *filter.Filter) (scanner.Options, error) {
	resources, err := tuner.Detect()
	if err != nil {
		logging.Get("cli").Warn("resource detection failed, using defaults", "error", err)
	}
	tuned := tuner.CalculateWithOverride(resources, scanWorkers)

	initial, minWorkers, maxWorkers := tuned.InitialWorkers, tuned.MinWorkers, tuned.MaxWorkers
	if scanWorkers <= 0 {
		if cfg.Workers.Initial > 0 {
			initial = cfg.Workers.Initial
		}
		if cfg.Workers.Min > 0 {
			minWorkers = cfg.Workers.Min
		}
		if cfg.Workers.Max > 0 {
			maxWorkers = cfg.Workers.Max
		}
	}

	ceiling := tuned.MemoryCeiling
	if cfg.Memory.Ceiling != "" {
		parsed, err := types.ParseSize(cfg.Memory.Ceiling)
		if err != nil {
			return scanner.Options{}, fmt.Errorf("invalid memory ceiling %q: %w", cfg.Memory.Ceiling, err)
		}
		ceiling = parsed
	}

	var mmapThreshold int64
	if cfg.MmapThreshold != "" {
		mmapThreshold, err = types.ParseSize(cfg.MmapThreshold)
		if err != nil {
			return scanner.Options{}, fmt.Errorf("invalid mmap threshold %q: %w", cfg.MmapThreshold, err)
		}
	}

	return scanner.Options{
		Root:            root,
		Recursive:       !scanNoRecursive,
		Algorithm:       algorithm,
		Filter:          f,
		SpecificFiles:   scanFiles,
		Limit:           scanLimit,
		ShowProgress:    !scanNoProgress && !getQuiet(),
		InitialWorkers:  initial,
		MinWorkers:      minWorkers,
		MaxWorkers:      maxWorkers,
		MemoryCeiling:   ceiling,
		MemoryThreshold: cfg.Memory.Threshold,
		SampleInterval:  cfg.Memory.Interval,
		ChunkSize:       cfg.ChunkSize,
		MmapThreshold:   mmapThreshold,
	}, nil
}

// resolveOutputs returns the report paths to write. When no outputs were
// given a timestamped default is generated in the current directory. An
// output naming an existing directory gets a timestamped file inside it,
// and an extensionless path gets the configured format's extension so
// the sink factory picks the intended format.
func resolveOutputs(cfg *config.Config) ([]string, error) {
	kind, err := report.ParseKind(cfg.Format)
	if err != nil {
		return nil, err
	}

	if len(scanOutputs) == 0 {
		return []string{report.Filename(".", kind)}, nil
	}

	outputs := make([]string, len(scanOutputs))
	for i, out := range scanOutputs {
		switch {
		case isDir(out):
			out = report.Filename(out, kind)
		case filepath.Ext(out) == "":
			out = fmt.Sprintf("%s.%s", out, kind)
		}
		outputs[i] = out
	}
	return outputs, nil
}

// isDir reports whether path names an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
