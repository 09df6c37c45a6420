package filter

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file of the given size under dir.
func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMatchesPermissiveByDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", 10)

	f := New(Spec{})
	if !f.Matches(path) {
		t.Error("empty spec should match any regular file")
	}
}

func TestMatchesNonexistent(t *testing.T) {
	f := New(Spec{})
	if f.Matches(filepath.Join(t.TempDir(), "missing.txt")) {
		t.Error("nonexistent path should not match")
	}
}

func TestMatchesDirectory(t *testing.T) {
	dir := t.TempDir()
	f := New(Spec{})
	if f.Matches(dir) {
		t.Error("directory should not match")
	}
}

func TestMatchesSizeBounds(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "small.txt", 5)
	large := writeFile(t, dir, "large.txt", 2000)

	tests := []struct {
		name      string
		spec      Spec
		wantSmall bool
		wantLarge bool
	}{
		{name: "no bounds", spec: Spec{}, wantSmall: true, wantLarge: true},
		{name: "min size", spec: Spec{MinSize: 100}, wantSmall: false, wantLarge: true},
		{name: "max size", spec: Spec{MaxSize: 100}, wantSmall: true, wantLarge: false},
		{name: "both bounds", spec: Spec{MinSize: 1, MaxSize: 100}, wantSmall: true, wantLarge: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.spec)
			if got := f.Matches(small); got != tt.wantSmall {
				t.Errorf("Matches(small) = %v, want %v", got, tt.wantSmall)
			}
			if got := f.Matches(large); got != tt.wantLarge {
				t.Errorf("Matches(large) = %v, want %v", got, tt.wantLarge)
			}
		})
	}
}

func TestMatchesGlobPatterns(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "notes.txt", 10)
	log := writeFile(t, dir, "app.log", 10)

	f := New(Spec{Include: []string{"*.txt"}})
	if !f.Matches(txt) {
		t.Error("*.txt should match notes.txt")
	}
	if f.Matches(log) {
		t.Error("*.txt should not match app.log")
	}

	f = New(Spec{Exclude: []string{"*.log"}})
	if !f.Matches(txt) {
		t.Error("exclude *.log should still match notes.txt")
	}
	if f.Matches(log) {
		t.Error("exclude *.log should reject app.log")
	}
}

func TestMatchesFilenameOnly(t *testing.T) {
	// Patterns apply to the base name, so test.* matches at any depth.
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, nested, "test.txt", 10)

	f := New(Spec{Include: []string{"test.*"}})
	if !f.Matches(path) {
		t.Error("test.* should match nested test.txt by filename")
	}
}

func TestMatchesRegexPatterns(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data_2024.csv", 10)
	other := writeFile(t, dir, "readme.md", 10)

	f := New(Spec{Include: []string{`^data_\d+\.csv$`}, Regex: true})
	if !f.Matches(data) {
		t.Error("regex should match data_2024.csv")
	}
	if f.Matches(other) {
		t.Error("regex should not match readme.md")
	}
}

func TestMatchesInvalidPatternSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", 10)

	// The malformed regex is dropped; the valid one still applies.
	f := New(Spec{Include: []string{"[invalid", `\.txt$`}, Regex: true})
	if !f.Matches(path) {
		t.Error("valid pattern should still apply after invalid one is skipped")
	}

	// All patterns invalid leaves an empty include list, which is permissive.
	f = New(Spec{Exclude: []string{"[bad"}, Regex: true})
	if !f.Matches(path) {
		t.Error("invalid exclude pattern should be treated as non-matching")
	}
}

func TestMatchesExtension(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "a.txt", 10)
	log := writeFile(t, dir, "a.log", 10)

	f := New(Spec{Extension: ".txt"})
	if !f.Matches(txt) {
		t.Error(".txt extension should match a.txt")
	}
	if f.Matches(log) {
		t.Error(".txt extension should not match a.log")
	}
}

func TestMatchesNameSet(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", 10)
	b := writeFile(t, dir, "b.txt", 10)

	f := New(Spec{Names: []string{"a.txt"}})
	if !f.Matches(a) {
		t.Error("name set should match a.txt")
	}
	if f.Matches(b) {
		t.Error("name set should not match b.txt")
	}
}

func TestMatchesExcludePaths(t *testing.T) {
	dir := t.TempDir()
	skipDir := filepath.Join(dir, "skip")
	if err := os.MkdirAll(skipDir, 0o755); err != nil {
		t.Fatal(err)
	}
	inside := writeFile(t, skipDir, "a.txt", 10)
	outside := writeFile(t, dir, "b.txt", 10)

	f := New(Spec{ExcludePaths: []string{skipDir}})
	if f.Matches(inside) {
		t.Error("file under excluded path should not match")
	}
	if !f.Matches(outside) {
		t.Error("file outside excluded path should match")
	}

	f = New(Spec{ExcludePaths: []string{outside}})
	if f.Matches(outside) {
		t.Error("exactly excluded path should not match")
	}
}

func TestMatchesSizeSkipsStat(t *testing.T) {
	f := New(Spec{MinSize: 100})

	// MatchesSize trusts the supplied size, even for nonexistent paths.
	if !f.MatchesSize("/no/such/file.txt", 200) {
		t.Error("MatchesSize(200) with MinSize=100 should match")
	}
	if f.MatchesSize("/no/such/file.txt", 50) {
		t.Error("MatchesSize(50) with MinSize=100 should not match")
	}
}
