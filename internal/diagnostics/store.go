package diagnostics

import (
	"sort"
	"sync"
)

// Store holds the per-category diagnostic sets for every file seen so
// far. Each (file, category) pair owns one set, replaced wholesale when
// that category reports again for the file.
//
// Overlapping findings are reconciled with build priority: a build
// diagnostic on a line evicts lint and vet diagnostics on the same line,
// while lint and vet never displace build findings and tolerate each
// other.
type Store struct {
	mu   sync.Mutex
	sets map[Category]map[string][]Diagnostic
}

// NewStore creates an empty Store.
func NewStore() *Store {
	sets := make(map[Category]map[string][]Diagnostic, len(Categories))
	for _, cat := range Categories {
		sets[cat] = make(map[string][]Diagnostic)
	}
	return &Store{sets: sets}
}

// Apply replaces the diagnostic set for (file, category) and reconciles
// line collisions across categories. It returns every category whose set
// for the file changed, the applied one included, so callers can
// republish exactly the affected sets. Calls are serialized; merges for
// the same file never run concurrently.
func (s *Store) Apply(category Category, file string, diags []Diagnostic) map[Category][]Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := make(map[Category][]Diagnostic)

	if category == CategoryBuild {
		occupied := lineSet(diags)
		for _, other := range []Category{CategoryLint, CategoryVet} {
			existing := s.sets[other][file]
			kept := dropLines(existing, occupied)
			if len(kept) != len(existing) {
				s.replace(other, file, kept)
				changed[other] = kept
			}
		}
	} else {
		buildLines := lineSet(s.sets[CategoryBuild][file])
		diags = dropLines(diags, buildLines)
	}

	s.replace(category, file, diags)
	changed[category] = append([]Diagnostic(nil), diags...)

	for _, set := range changed {
		Sort(set)
	}
	return changed
}

// Get returns a copy of the stored set for (file, category).
func (s *Store) Get(category Category, file string) []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.sets[category][file]...)
}

// Files returns the sorted list of files with a non-empty set for the
// category. Categories replaced by a fresh run use it to find files that
// stopped reporting.
func (s *Store) Files(category Category) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, 0, len(s.sets[category]))
	for file := range s.sets[category] {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Snapshot returns a sorted deep copy of every non-empty set.
func (s *Store) Snapshot() map[Category]map[string][]Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[Category]map[string][]Diagnostic, len(s.sets))
	for cat, byFile := range s.sets {
		snapshot[cat] = make(map[string][]Diagnostic, len(byFile))
		for file, diags := range byFile {
			set := append([]Diagnostic(nil), diags...)
			Sort(set)
			snapshot[cat][file] = set
		}
	}
	return snapshot
}

// replace stores the set, removing the key when the set is empty.
func (s *Store) replace(category Category, file string, diags []Diagnostic) {
	if len(diags) == 0 {
		delete(s.sets[category], file)
		return
	}
	s.sets[category][file] = append([]Diagnostic(nil), diags...)
}

func lineSet(diags []Diagnostic) map[int]struct{} {
	lines := make(map[int]struct{}, len(diags))
	for _, d := range diags {
		lines[d.Line] = struct{}{}
	}
	return lines
}

func dropLines(diags []Diagnostic, lines map[int]struct{}) []Diagnostic {
	if len(lines) == 0 {
		return diags
	}
	kept := diags[:0:0]
	for _, d := range diags {
		if _, collides := lines[d.Line]; !collides {
			kept = append(kept, d)
		}
	}
	return kept
}
