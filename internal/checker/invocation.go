package checker

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-checkup/checkup/internal/diagnostics"
	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/pkg/shared/config"
	sharederrors "github.com/go-checkup/checkup/pkg/shared/errors"
)

// goTool is the resolver name of the toolchain binary; a configured
// go_binary path overrides where it resolves to.
const goTool = "go"

// legacyVetBoundary is the first toolchain release whose `go vet`
// accepts package patterns; older toolchains run the vet tool directly.
const legacyVetBoundary = "1.10"

// invocation builds the tool run for one category. Tool resolution
// failures propagate; they are the caller's problem to surface.
func (c *Checker) invocation(ctx context.Context, cat diagnostics.Category, dir string) (execute.Invocation, diagnostics.Severity, error) {
	switch cat {
	case diagnostics.CategoryBuild:
		return c.buildInvocation(dir)
	case diagnostics.CategoryVet:
		return c.vetInvocation(ctx, dir)
	case diagnostics.CategoryLint:
		return c.lintInvocation(dir)
	default:
		return execute.Invocation{}, 0, fmt.Errorf("unknown check category %q", cat)
	}
}

// buildInvocation compiles the package in place, discarding the object
// file. The compiler reports on stderr and its findings outrank the
// other categories.
func (c *Checker) buildInvocation(dir string) (execute.Invocation, diagnostics.Severity, error) {
	path, err := c.resolver.Resolve(goTool)
	if err != nil {
		return execute.Invocation{}, 0, err
	}

	args := []string{"build", "-o", os.DevNull}
	if tags := c.cfg.Checker.Build.Tags; tags != "" {
		args = append(args, "-tags", tags)
	}
	args = append(args, c.cfg.Checker.Build.Flags...)
	args = append(args, ".")

	return execute.Invocation{Tool: path, Args: args, Dir: dir, UseStdErr: true}, diagnostics.SeverityError, nil
}

// vetInvocation picks the vet entry point by toolchain age. A version
// that cannot be detected is logged and treated as current.
func (c *Checker) vetInvocation(ctx context.Context, dir string) (execute.Invocation, diagnostics.Severity, error) {
	path, err := c.resolver.Resolve(goTool)
	if err != nil {
		return execute.Invocation{}, 0, err
	}

	version, err := c.versions.Get(ctx)
	if err != nil {
		var invalidErr *sharederrors.InvalidVersionError
		if !errors.As(err, &invalidErr) {
			return execute.Invocation{}, 0, err
		}
		c.logger.Warn("toolchain version is unknown, assuming a current vet", "error", invalidErr)
	}

	var args []string
	if version.LessThan(legacyVetBoundary) {
		args = append([]string{"tool", "vet"}, c.cfg.Checker.Vet.Flags...)
		args = append(args, ".")
	} else {
		args = append([]string{"vet"}, c.cfg.Checker.Vet.Flags...)
		args = append(args, "./...")
	}

	return execute.Invocation{Tool: path, Args: args, Dir: dir, UseStdErr: true}, diagnostics.SeverityWarning, nil
}

// lintInvocation runs the configured lint tool, which reports findings
// on stdout.
func (c *Checker) lintInvocation(dir string) (execute.Invocation, diagnostics.Severity, error) {
	tool := config.LintTool(c.cfg)
	path, err := c.resolver.Resolve(tool)
	if err != nil {
		return execute.Invocation{}, 0, err
	}

	args := append([]string(nil), c.cfg.Checker.Lint.Flags...)
	args = append(args, "./...")

	return execute.Invocation{Tool: path, Args: args, Dir: dir}, diagnostics.SeverityWarning, nil
}
