package check

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-checkup/checkup/internal/diagnostics"
	"github.com/go-checkup/checkup/internal/report"
	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/files"
)

// Report format constants
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSarif = "sarif"
)

var reportExtensions = map[string]string{
	FormatText:  "txt",
	FormatJSON:  "json",
	FormatSarif: "sarif",
}

// applyCheckOverrides layers the command line arguments over the loaded
// configuration; flags win where both are set.
func applyCheckOverrides(cfg *config.Config, options *RunOptionsCheck) {
	if options.Jobs > 0 {
		cfg.Checker.Jobs = options.Jobs
	}
	if options.LintTool != "" {
		cfg.Checker.Lint.Tool = options.LintTool
	}
	if options.StrictUnmatched {
		cfg.Checker.StrictUnmatched = true
	}
	if options.CharColumns {
		cfg.Checker.CharColumns = true
	}

	off := false
	if options.NoBuild {
		cfg.Checker.Build.Enabled = &off
	}
	if options.NoVet {
		cfg.Checker.Vet.Enabled = &off
	}
	if options.NoLint {
		cfg.Checker.Lint.Enabled = &off
	}
}

// resolveTarget turns the positional argument into the package directory
// to check. A file target checks its containing directory and becomes
// the anchor for strict-mode diagnostics.
func resolveTarget(args []string) (dir, activeFile string, err error) {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	target, err = files.ExpandPath(target)
	if err != nil {
		return "", "", fmt.Errorf("failed to expand target path: %w", err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve target path %q: %w", target, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", fmt.Errorf("target %q is not accessible: %w", target, err)
	}
	if info.IsDir() {
		return abs, "", nil
	}
	return filepath.Dir(abs), abs, nil
}

// reportSink couples a publisher with the file it writes into.
type reportSink struct {
	report.Publisher
	file *os.File
	path string
}

// Close finalizes the report and releases the destination file.
func (s *reportSink) Close() error {
	err := s.Publisher.Close()
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// buildPublisher creates the publisher for the requested format, writing
// to stdout unless an output destination is configured.
func buildPublisher(cfg *config.Config, options *RunOptionsCheck) (*reportSink, error) {
	format := options.Format
	if format == "" {
		format = FormatText
	}

	sink := &reportSink{}
	var w io.Writer = os.Stdout
	if options.OutputPath != "" {
		fullPath, folder, err := files.DetermineFileFullPath(options.OutputPath, generateReportName(cfg, format))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output path %q: %w", options.OutputPath, err)
		}
		if err := files.CreateFolderIfNotExists(folder); err != nil {
			return nil, err
		}
		f, err := os.Create(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create report file %q: %w", fullPath, err)
		}
		sink.file = f
		sink.path = fullPath
		w = f
	}

	switch format {
	case FormatJSON:
		sink.Publisher = report.NewJSONPublisher(w)
	case FormatSarif:
		sink.Publisher = report.NewSarifPublisher(w, sarifTools(cfg))
	default:
		sink.Publisher = report.NewTextPublisher(w)
	}
	return sink, nil
}

// sarifTools names the tool recorded in each category's SARIF run.
func sarifTools(cfg *config.Config) map[diagnostics.Category]string {
	return map[diagnostics.Category]string{
		diagnostics.CategoryBuild: "go build",
		diagnostics.CategoryVet:   "go vet",
		diagnostics.CategoryLint:  config.LintTool(cfg),
	}
}

// generateReportName names reports aimed at a directory destination.
// CI mode gets timestamped artifact names; interactive runs overwrite
// one well-known file.
func generateReportName(cfg *config.Config, format string) string {
	ext := reportExtensions[format]
	if config.IsCI(cfg) {
		return fmt.Sprintf("check_%s.%s", time.Now().UTC().Format(time.RFC3339), ext)
	}
	return "checkup-report." + ext
}

// countFindings tallies the stored diagnostics by severity.
func countFindings(store *diagnostics.Store) (errorCount, warningCount int) {
	for _, byFile := range store.Snapshot() {
		for _, diags := range byFile {
			for _, d := range diags {
				if d.Severity == diagnostics.SeverityError {
					errorCount++
				} else {
					warningCount++
				}
			}
		}
	}
	return errorCount, warningCount
}
