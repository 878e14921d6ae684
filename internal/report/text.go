package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/go-checkup/checkup/internal/diagnostics"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
)

// TextPublisher renders diagnostics as `path:line[:col]: severity:
// message` lines the moment they are published, matching the shape the
// check tools emit themselves. Continuation lines of a multi-line
// message are indented with a tab, mirroring the parse grammar.
type TextPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextPublisher creates a TextPublisher writing to w.
func NewTextPublisher(w io.Writer) *TextPublisher {
	return &TextPublisher{w: w}
}

// Publish writes one line per diagnostic. Cleared sets print nothing.
func (p *TextPublisher) Publish(_ diagnostics.Category, _ string, diags []diagnostics.Diagnostic) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, d := range diags {
		pos := fmt.Sprintf("%s:%d", d.File, d.Line)
		if d.Col > 0 {
			pos = fmt.Sprintf("%s:%d", pos, d.Col)
		}

		label := warningColor.Sprint("warning")
		if d.Severity == diagnostics.SeverityError {
			label = errorColor.Sprint("error")
		}

		lines := strings.Split(d.Message, "\n")
		if _, err := fmt.Fprintf(p.w, "%s: %s: %s\n", pos, label, lines[0]); err != nil {
			return err
		}
		for _, more := range lines[1:] {
			if _, err := fmt.Fprintf(p.w, "\t%s\n", more); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close implements Publisher; text output is not buffered.
func (p *TextPublisher) Close() error {
	return nil
}
