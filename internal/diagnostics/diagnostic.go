// Package diagnostics turns raw check tool output into structured findings
// and reconciles those findings across check categories.
package diagnostics

import (
	"encoding/json"
	"sort"
)

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its name rather than a number.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Category identifies which kind of check produced a diagnostic.
type Category string

const (
	CategoryBuild Category = "build"
	CategoryVet   Category = "vet"
	CategoryLint  Category = "lint"
)

// Categories lists every category in publishing order.
var Categories = []Category{CategoryBuild, CategoryVet, CategoryLint}

// Diagnostic is a single finding reported by a check tool. A diagnostic is
// identified by its file and line; the column only refines the position.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Col      int      `json:"col,omitempty"`
	CharCol  int      `json:"char_col,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
}

// Sort orders diagnostics by file, line, column and finally message, giving
// publishers a deterministic sequence.
func Sort(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Message < b.Message
	})
}

// GroupByFile splits a parsed batch into per-file sets keyed by path.
func GroupByFile(diags []Diagnostic) map[string][]Diagnostic {
	byFile := make(map[string][]Diagnostic)
	for _, d := range diags {
		byFile[d.File] = append(byFile[d.File], d)
	}
	return byFile
}
