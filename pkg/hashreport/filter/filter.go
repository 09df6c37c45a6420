// Package filter provides the predicate layer that decides whether a
// discovered path qualifies for hashing. It supports size bounds, glob or
// regex include/exclude patterns, an extension filter, and explicit
// name/path sets.
package filter

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/madebyjake/hashreport/pkg/hashreport/logging"
)

// Spec is the immutable filter configuration. Construct a Filter from it
// with New; the Spec itself performs no matching.
type Spec struct {
	// MinSize is the minimum file size in bytes. Zero means no minimum.
	MinSize int64

	// MaxSize is the maximum file size in bytes. Zero means no maximum.
	MaxSize int64

	// Include contains patterns a filename must match when non-empty.
	// An empty list means no include filter (permissive).
	Include []string

	// Exclude contains patterns; matching filenames are rejected.
	Exclude []string

	// Regex selects regular-expression pattern syntax for Include and
	// Exclude. When false, patterns are shell globs.
	Regex bool

	// Extension restricts matches to filenames with this suffix
	// (e.g. ".txt"). Empty means any extension.
	Extension string

	// Names restricts matches to these exact base names when non-empty.
	Names []string

	// ExcludePaths rejects these exact paths and anything beneath them.
	ExcludePaths []string
}

// matcher is a compiled include/exclude pattern.
type matcher interface {
	match(name string) bool
}

type globMatcher struct{ g glob.Glob }

func (m globMatcher) match(name string) bool { return m.g.Match(name) }

type regexMatcher struct{ re *regexp.Regexp }

func (m regexMatcher) match(name string) bool { return m.re.MatchString(name) }

// Filter applies a compiled Spec to candidate paths.
// Patterns are compiled once at construction and reused for every check.
type Filter struct {
	spec    Spec
	include []matcher
	exclude []matcher
	names   map[string]struct{}
	logger  *logging.Logger
}

// New compiles the spec into a reusable Filter.
// Malformed patterns are logged and dropped so one bad pattern never
// aborts filtering of the rest of the tree.
func New(spec Spec) *Filter {
	f := &Filter{
		spec:   spec,
		logger: logging.Get("filter"),
	}

	f.include = f.compile(spec.Include)
	f.exclude = f.compile(spec.Exclude)

	if len(spec.Names) > 0 {
		f.names = make(map[string]struct{}, len(spec.Names))
		for _, n := range spec.Names {
			f.names[n] = struct{}{}
		}
	}

	return f
}

// compile turns pattern strings into matchers, skipping invalid ones.
func (f *Filter) compile(patterns []string) []matcher {
	compiled := make([]matcher, 0, len(patterns))
	for _, p := range patterns {
		if f.spec.Regex {
			re, err := regexp.Compile(p)
			if err != nil {
				f.logger.Warn("skipping invalid regex pattern", "pattern", p, "error", err)
				continue
			}
			compiled = append(compiled, regexMatcher{re: re})
			continue
		}

		g, err := glob.Compile(p)
		if err != nil {
			f.logger.Warn("skipping invalid glob pattern", "pattern", p, "error", err)
			continue
		}
		compiled = append(compiled, globMatcher{g: g})
	}
	return compiled
}

// Matches reports whether the file at path qualifies. It performs a
// single stat call to obtain the size; paths that do not exist or are
// not regular files never match. Checks short-circuit on the first
// negative in a fixed order: regular-file, exclude-path set, extension,
// name set, size bounds, exclude patterns, include patterns.
func (f *Filter) Matches(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return f.matches(path, info.Size())
}

// MatchesSize is Matches for callers that already hold the file size,
// avoiding a second stat. The path is still assumed to name a regular file.
func (f *Filter) MatchesSize(path string, size int64) bool {
	return f.matches(path, size)
}

func (f *Filter) matches(path string, size int64) bool {
	if f.isExcludedPath(path) {
		return false
	}

	name := filepath.Base(path)

	if f.spec.Extension != "" && !strings.HasSuffix(name, f.spec.Extension) {
		return false
	}

	if f.names != nil {
		if _, ok := f.names[name]; !ok {
			return false
		}
	}

	if f.spec.MinSize > 0 && size < f.spec.MinSize {
		return false
	}
	if f.spec.MaxSize > 0 && size > f.spec.MaxSize {
		return false
	}

	for _, m := range f.exclude {
		if m.match(name) {
			return false
		}
	}

	// Absence of include patterns means no include filter.
	if len(f.include) == 0 {
		return true
	}
	for _, m := range f.include {
		if m.match(name) {
			return true
		}
	}
	return false
}

// isExcludedPath reports whether path equals or lies beneath any entry
// of the exclude-path set.
func (f *Filter) isExcludedPath(path string) bool {
	for _, ex := range f.spec.ExcludePaths {
		if ex == "" {
			continue
		}
		if path == ex {
			return true
		}
		if strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
