package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/go-checkup/checkup/internal/diagnostics"
)

// jsonReport is the document shape written on Close.
type jsonReport struct {
	Total       int                      `json:"total"`
	Errors      int                      `json:"errors"`
	Warnings    int                      `json:"warnings"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// JSONPublisher accumulates every published set and writes a single
// JSON document when closed.
type JSONPublisher struct {
	mu sync.Mutex
	w  io.Writer
	collector
}

// NewJSONPublisher creates a JSONPublisher writing to w on Close.
func NewJSONPublisher(w io.Writer) *JSONPublisher {
	return &JSONPublisher{w: w, collector: newCollector()}
}

// Publish records the latest set for (category, file).
func (p *JSONPublisher) Publish(category diagnostics.Category, file string, diags []diagnostics.Diagnostic) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(category, file, diags)
	return nil
}

// Close renders everything collected as one indented JSON document.
func (p *JSONPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	report := jsonReport{Diagnostics: []diagnostics.Diagnostic{}}
	for _, cat := range diagnostics.Categories {
		report.Diagnostics = append(report.Diagnostics, p.flatten(cat)...)
	}
	diagnostics.Sort(report.Diagnostics)
	report.Total = len(report.Diagnostics)
	for _, d := range report.Diagnostics {
		switch d.Severity {
		case diagnostics.SeverityError:
			report.Errors++
		case diagnostics.SeverityWarning:
			report.Warnings++
		}
	}

	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	datawriter := bufio.NewWriter(p.w)
	if _, err := datawriter.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := datawriter.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return datawriter.Flush()
}
