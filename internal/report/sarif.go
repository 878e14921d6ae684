package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/go-checkup/checkup/internal/diagnostics"
)

// categoryURIs point each run's tool at its documentation.
var categoryURIs = map[diagnostics.Category]string{
	diagnostics.CategoryBuild: "https://pkg.go.dev/cmd/go",
	diagnostics.CategoryVet:   "https://pkg.go.dev/cmd/vet",
	diagnostics.CategoryLint:  "https://pkg.go.dev/golang.org/x/lint",
}

var categoryDescriptions = map[diagnostics.Category]string{
	diagnostics.CategoryBuild: "Go compiler diagnostics",
	diagnostics.CategoryVet:   "Suspicious constructs reported by go vet",
	diagnostics.CategoryLint:  "Style findings reported by the lint tool",
}

// SarifPublisher accumulates published sets and renders a SARIF 2.1.0
// report on Close: one run per check category, rule ids named after the
// categories, regions carrying the 1-based line and column.
type SarifPublisher struct {
	mu    sync.Mutex
	w     io.Writer
	tools map[diagnostics.Category]string
	collector
}

// NewSarifPublisher creates a SarifPublisher writing to w on Close.
// tools maps each category to the tool name recorded in its run; absent
// entries fall back to the category name.
func NewSarifPublisher(w io.Writer, tools map[diagnostics.Category]string) *SarifPublisher {
	return &SarifPublisher{w: w, tools: tools, collector: newCollector()}
}

// Publish records the latest set for (category, file).
func (p *SarifPublisher) Publish(category diagnostics.Category, file string, diags []diagnostics.Diagnostic) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(category, file, diags)
	return nil
}

// Close renders the accumulated sets as one SARIF document.
func (p *SarifPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	for _, cat := range diagnostics.Categories {
		all := p.flatten(cat)
		if len(all) == 0 {
			continue
		}

		toolName := p.tools[cat]
		if toolName == "" {
			toolName = string(cat)
		}
		run := sarif.NewRunWithInformationURI(toolName, categoryURIs[cat])
		rule := run.AddRule(string(cat)).
			WithDescription(categoryDescriptions[cat]).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: defaultLevel(cat),
			})

		for _, d := range all {
			region := sarif.NewRegion().WithStartLine(d.Line)
			if d.Col > 0 {
				region = region.WithStartColumn(d.Col)
			}
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(d.File)).
					WithRegion(region),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(d.Message)).
				WithLevel(sarifLevel(d.Severity)).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}

		report.AddRun(run)
	}

	return report.PrettyWrite(p.w)
}

// sarifLevel maps a severity onto the SARIF result level vocabulary.
func sarifLevel(s diagnostics.Severity) string {
	if s == diagnostics.SeverityError {
		return "error"
	}
	return "warning"
}

// defaultLevel is the rule-wide level: build findings are compile
// errors, everything else reports warnings.
func defaultLevel(cat diagnostics.Category) string {
	if cat == diagnostics.CategoryBuild {
		return "error"
	}
	return "warning"
}
