// Package report delivers reconciled diagnostics to their display
// surface: plain text for humans, JSON and SARIF documents for tooling.
package report

import (
	"github.com/go-checkup/checkup/internal/diagnostics"
)

// Publisher receives every diagnostic set that changed after a merge.
// Publish replaces the previously published set for (category, file);
// an empty set clears it. Close flushes whatever the concrete format
// accumulates. Implementations are safe for concurrent Publish calls.
type Publisher interface {
	Publish(category diagnostics.Category, file string, diags []diagnostics.Diagnostic) error
	Close() error
}

// collector is the shared accumulation behind the document-shaped
// publishers: the latest published set per (category, file).
type collector struct {
	sets map[diagnostics.Category]map[string][]diagnostics.Diagnostic
}

func newCollector() collector {
	return collector{sets: make(map[diagnostics.Category]map[string][]diagnostics.Diagnostic)}
}

func (c *collector) set(category diagnostics.Category, file string, diags []diagnostics.Diagnostic) {
	byFile := c.sets[category]
	if byFile == nil {
		byFile = make(map[string][]diagnostics.Diagnostic)
		c.sets[category] = byFile
	}
	if len(diags) == 0 {
		delete(byFile, file)
		return
	}
	byFile[file] = append([]diagnostics.Diagnostic(nil), diags...)
}

// flatten returns one sorted slice of everything collected for the
// category.
func (c *collector) flatten(category diagnostics.Category) []diagnostics.Diagnostic {
	var all []diagnostics.Diagnostic
	for _, diags := range c.sets[category] {
		all = append(all, diags...)
	}
	diagnostics.Sort(all)
	return all
}
