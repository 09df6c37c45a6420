// Package scanner orchestrates a scan: it discovers candidate files,
// filters them, hashes them across an adaptive worker pool, and
// aggregates the outcomes into a report-ready result. Per-file failures
// are collected and reported; only precondition failures abort a scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/google/uuid"

	"github.com/madebyjake/hashreport/pkg/hashreport/hasher"
	"github.com/madebyjake/hashreport/pkg/hashreport/logging"
	"github.com/madebyjake/hashreport/pkg/hashreport/monitor"
	"github.com/madebyjake/hashreport/pkg/hashreport/pool"
	"github.com/madebyjake/hashreport/pkg/hashreport/progress"
	"github.com/madebyjake/hashreport/pkg/hashreport/types"
)

// ErrNotDirectory indicates that the scan root is not a directory.
var ErrNotDirectory = errors.New("scan root is not a directory")

// Scanner runs scans with a fixed configuration. A Scanner may be reused
// for multiple scans; each Scan call is independent.
type Scanner struct {
	opts   Options
	hasher *hasher.Hasher
	logger *logging.Logger

	// errorsMu guards errors collected across walk and hash goroutines.
	errorsMu sync.Mutex
	errors   []types.ScanError
}

// New creates a scanner after validating the options.
func New(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Scanner{
		opts: opts,
		hasher: hasher.New(hasher.Options{
			ChunkSize:     opts.ChunkSize,
			MmapThreshold: opts.MmapThreshold,
		}),
		logger: logging.Get("scanner"),
	}, nil
}

// Scan discovers, filters, and hashes files according to the options.
// It returns a result whose entries are in completion order. The error
// is non-nil only for precondition failures such as a missing root;
// individual files that cannot be read are recorded in the result's
// Errors instead.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	s.errorsMu.Lock()
	s.errors = nil
	s.errorsMu.Unlock()

	s.logger.Info("scan started",
		"run_id", runID,
		"root", s.opts.Root,
		"algorithm", s.opts.Algorithm,
		"recursive", s.opts.Recursive)

	candidates, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	// Sorting makes the limit cutoff deterministic even though the walk
	// visits directories in parallel.
	sort.Strings(candidates)
	if s.opts.Limit > 0 && len(candidates) > s.opts.Limit {
		s.logger.Debug("truncating candidates", "limit", s.opts.Limit, "found", len(candidates))
		candidates = candidates[:s.opts.Limit]
	}

	results := s.hashAll(ctx, candidates)
	entries := s.buildEntries(results)

	result := &types.ScanResult{
		RunID:      runID,
		Entries:    entries,
		Candidates: len(candidates),
		Hashed:     len(entries),
		Failed:     len(candidates) - len(results),
		Elapsed:    time.Since(start),
		Errors:     s.collectedErrors(),
	}

	s.logger.Info("scan finished",
		"run_id", runID,
		"candidates", result.Candidates,
		"hashed", result.Hashed,
		"failed", result.Failed,
		"elapsed", result.Elapsed)

	return result, nil
}

// collect gathers candidate paths, either from the explicit file list or
// by walking the root.
func (s *Scanner) collect(ctx context.Context) ([]string, error) {
	if len(s.opts.SpecificFiles) > 0 {
		return s.collectSpecific(), nil
	}

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	return s.walk(ctx, root)
}

// collectSpecific filters the explicit file list. Paths that are missing
// or rejected by the filter are skipped; missing ones are recorded.
func (s *Scanner) collectSpecific() []string {
	candidates := make([]string, 0, len(s.opts.SpecificFiles))
	for _, path := range s.opts.SpecificFiles {
		info, err := os.Stat(path)
		if err != nil {
			s.addError(path, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if s.opts.Filter != nil && !s.opts.Filter.MatchesSize(path, info.Size()) {
			continue
		}
		candidates = append(candidates, path)
	}
	return candidates
}

// validateRoot resolves the root path to absolute and verifies it is an
// existing directory. This is the scan's fail-fast precondition.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return root, nil
}

// errWalkCanceled aborts the walk outright when the context is done;
// fastwalk.ErrSkipFiles would only skip the current directory's files
// while the walk keeps descending.
var errWalkCanceled = errors.New("walk canceled")

// walk traverses the root collecting paths that pass the filter.
// Walk errors on individual entries are recorded and skipped.
func (s *Scanner) walk(ctx context.Context, root string) ([]string, error) {
	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	var (
		mu         sync.Mutex
		candidates []string
	)

	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return errWalkCanceled
		}

		if err != nil {
			s.addError(path, err)
			return nil
		}

		if d.IsDir() {
			if !s.opts.Recursive && path != root {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if s.opts.Filter != nil {
			info, err := d.Info()
			if err != nil {
				s.addError(path, err)
				return nil
			}
			if !s.opts.Filter.MatchesSize(path, info.Size()) {
				return nil
			}
		}

		mu.Lock()
		candidates = append(candidates, path)
		mu.Unlock()
		return nil
	})

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, errWalkCanceled) {
		return nil, fmt.Errorf("walk failed: %w", walkErr)
	}
	return candidates, nil
}

// hashAll digests every candidate across the worker pool, with the
// resource monitor adjusting concurrency for the duration of the batch.
func (s *Scanner) hashAll(ctx context.Context, candidates []string) []types.ProcessResult {
	if len(candidates) == 0 {
		return nil
	}

	var reporter *progress.Reporter
	if s.opts.ShowProgress {
		reporter = progress.New(int64(len(candidates)))
	}

	p := pool.New[string, types.ProcessResult](pool.Options{
		Initial: s.opts.InitialWorkers,
		Min:     s.opts.MinWorkers,
		Max:     s.opts.MaxWorkers,
		OnComplete: func(error) {
			if reporter != nil {
				reporter.Update()
			}
		},
	})
	p.Start()
	defer p.Shutdown()

	m := monitor.New(monitor.Options{
		Ceiling:    s.opts.MemoryCeiling,
		Threshold:  s.opts.MemoryThreshold,
		Interval:   s.opts.SampleInterval,
		OnReduce:   p.ReduceWorkers,
		OnIncrease: p.IncreaseWorkers,
	})
	if err := m.Start(); err != nil {
		s.logger.Warn("resource monitor unavailable", "error", err)
	} else {
		defer m.Stop()
	}

	results := p.ProcessBatch(ctx, candidates, func(path string) (types.ProcessResult, error) {
		digest, modified, err := s.hasher.Hash(path, s.opts.Algorithm)
		if err != nil {
			s.addError(path, err)
			return types.ProcessResult{}, err
		}
		return types.ProcessResult{Path: path, Digest: digest, Modified: modified}, nil
	})

	if reporter != nil {
		reporter.Finish()
	}
	return results
}

// buildEntries converts hash results into report rows, in the completion
// order the pool produced them.
func (s *Scanner) buildEntries(results []types.ProcessResult) []types.ReportEntry {
	entries := make([]types.ReportEntry, 0, len(results))
	for _, r := range results {
		if !r.OK() {
			continue
		}

		info, err := os.Stat(r.Path)
		if err != nil {
			s.addError(r.Path, err)
			continue
		}

		entries = append(entries, types.ReportEntry{
			FileName:  filepath.Base(r.Path),
			FilePath:  r.Path,
			Size:      types.FormatSize(info.Size()),
			Algorithm: s.opts.Algorithm,
			HashValue: r.Digest,
			Modified:  types.FormatTime(r.Modified),
			Created:   types.FormatTime(creationTime(info)),
		})
	}
	return entries
}

// addError records a per-item failure thread-safely.
func (s *Scanner) addError(path string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}

// collectedErrors returns the failures recorded during the scan.
func (s *Scanner) collectedErrors() []types.ScanError {
	s.errorsMu.Lock()
	defer s.errorsMu.Unlock()
	return s.errors
}
