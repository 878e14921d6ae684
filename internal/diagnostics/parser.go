package diagnostics

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// lineRE recognizes the common line shape of go toolchain output:
//
//	[label: ]file:line[:col][:tag:] message
//
// The label covers prefixes such as "vet: ", the optional single
// character before a colon in the file group tolerates Windows drive
// letters, and the optional tag swallows markers like "warning:".
var lineRE = regexp.MustCompile(`^(?:([^:]*): )?((?:.:)?[^:]*):(\d+)(?::(\d+))?:(?:\w+:)? (.*)$`)

// ParseOptions control how raw tool output is interpreted.
type ParseOptions struct {
	// Dir anchors relative file paths reported by the tool.
	Dir string
	// Severity and Category are stamped onto every produced diagnostic.
	Severity Severity
	Category Category
	// Strict synthesizes a whole-output diagnostic when no line matched,
	// so tool failures that are not position-shaped still surface.
	Strict bool
	// ActiveFile anchors the synthetic diagnostic.
	ActiveFile string
}

// Parse extracts diagnostics from raw tool output.
//
// Lines that do not match the grammar are dropped. A line starting with a
// tab continues the message of the preceding diagnostic: the tab is
// stripped and the remainder appended after a newline. Findings in
// vendored packages are dropped before path resolution. When nothing
// matched, Strict is set and the output is non-empty, a single diagnostic
// covering the whole output is produced at the top of ActiveFile.
func Parse(raw string, opts ParseOptions) []Diagnostic {
	var diags []Diagnostic

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if strings.HasPrefix(line, "\t") && len(diags) > 0 {
			diags[len(diags)-1].Message += "\n" + line[1:]
			continue
		}

		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		file := m[2]
		if !filepath.IsAbs(file) && isVendored(file) {
			continue
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(opts.Dir, file)
		}

		lineNo, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		col := 0
		if m[4] != "" {
			if col, err = strconv.Atoi(m[4]); err != nil {
				continue
			}
		}

		diags = append(diags, Diagnostic{
			File:     file,
			Line:     lineNo,
			Col:      col,
			Message:  m[5],
			Severity: opts.Severity,
			Category: opts.Category,
		})
	}

	if len(diags) == 0 && opts.Strict && strings.TrimSpace(raw) != "" && opts.ActiveFile != "" {
		diags = append(diags, Diagnostic{
			File:     opts.ActiveFile,
			Line:     1,
			Col:      1,
			Message:  raw,
			Severity: opts.Severity,
			Category: opts.Category,
		})
	}

	return diags
}

// isVendored reports whether a relative path points into a vendor tree.
func isVendored(file string) bool {
	file = filepath.ToSlash(file)
	return strings.HasPrefix(file, "vendor/") || strings.Contains(file, "/vendor/")
}
