package checker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-checkup/checkup/internal/diagnostics"
	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/internal/goversion"
	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/errors"
)

// writeTool drops an executable shell script into dir and returns its path.
func writeTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func boolPtr(b bool) *bool { return &b }

// newTestConfig starts with every category disabled; tests switch on
// what they exercise.
func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Checker.Jobs = 2
	cfg.Checker.CacheSize = 8
	cfg.Checker.Build.Enabled = boolPtr(false)
	cfg.Checker.Vet.Enabled = boolPtr(false)
	cfg.Checker.Lint.Enabled = boolPtr(false)
	return cfg
}

// capturingPublisher records the latest set published per (category, file).
type capturingPublisher struct {
	mu   sync.Mutex
	sets map[diagnostics.Category]map[string][]diagnostics.Diagnostic
}

func (p *capturingPublisher) Publish(cat diagnostics.Category, file string, diags []diagnostics.Diagnostic) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sets == nil {
		p.sets = make(map[diagnostics.Category]map[string][]diagnostics.Diagnostic)
	}
	if p.sets[cat] == nil {
		p.sets[cat] = make(map[string][]diagnostics.Diagnostic)
	}
	p.sets[cat][file] = append([]diagnostics.Diagnostic(nil), diags...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) latest(cat diagnostics.Category, file string) ([]diagnostics.Diagnostic, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.sets[cat][file]
	return set, ok
}

func (p *capturingPublisher) empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sets) == 0
}

type fixture struct {
	store     *diagnostics.Store
	publisher *capturingPublisher
	checker   *Checker
}

func newFixture(t *testing.T, cfg *config.Config, overrides map[string]string) *fixture {
	t.Helper()
	logger := hclog.NewNullLogger()
	runner := execute.NewRunner(logger, 0)
	resolver := &execute.PathResolver{Overrides: overrides}
	store := diagnostics.NewStore()
	versions := goversion.NewCache(logger, runner, resolver, "")
	publisher := &capturingPublisher{}

	checker, err := New(cfg, logger, resolver, runner, store, versions, publisher)
	require.NoError(t, err)
	return &fixture{store: store, publisher: publisher, checker: checker}
}

func TestCheckPublishesBuildDiagnostics(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	goBin := writeTool(t, bin, "go", `case "$1" in
version) echo "go version go1.21.0 linux/amd64" ;;
build)
	echo "./main.go:3:5: undefined: frob" >&2
	echo "./main.go:7:2: missing return" >&2
	exit 1
	;;
esac
`)
	cfg := newTestConfig()
	cfg.Checker.Build.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"go": goBin})

	require.NoError(t, fx.checker.Check(context.Background(), target))

	file := filepath.Join(target, "main.go")
	set, ok := fx.publisher.latest(diagnostics.CategoryBuild, file)
	require.True(t, ok)
	require.Len(t, set, 2)
	assert.Equal(t, 3, set[0].Line)
	assert.Equal(t, 5, set[0].Col)
	assert.Equal(t, "undefined: frob", set[0].Message)
	assert.Equal(t, diagnostics.SeverityError, set[0].Severity)
	assert.Equal(t, 7, set[1].Line)

	assert.Equal(t, set, fx.store.Get(diagnostics.CategoryBuild, file))
}

func TestCheckParsesVetFindings(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	goBin := writeTool(t, bin, "go", `case "$1" in
version) echo "go version go1.21.0 linux/amd64" ;;
vet)
	echo "# example.com/demo" >&2
	echo "./handler.go:14:2: unreachable code" >&2
	exit 1
	;;
esac
`)
	cfg := newTestConfig()
	cfg.Checker.Vet.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"go": goBin})

	require.NoError(t, fx.checker.Check(context.Background(), target))

	file := filepath.Join(target, "handler.go")
	set, ok := fx.publisher.latest(diagnostics.CategoryVet, file)
	require.True(t, ok)
	require.Len(t, set, 1)
	assert.Equal(t, diagnostics.SeverityWarning, set[0].Severity)
	assert.Equal(t, "unreachable code", set[0].Message)
}

func TestCheckBuildOutranksLintOnSharedLine(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	goBin := writeTool(t, bin, "go", `case "$1" in
version) echo "go version go1.21.0 linux/amd64" ;;
build) echo "./main.go:5:1: undefined: x" >&2; exit 1 ;;
esac
`)
	lintBin := writeTool(t, bin, "golint", `echo "main.go:5:10: var x should be xX"
echo "main.go:9:1: exported X needs a comment"
`)
	cfg := newTestConfig()
	cfg.Checker.Build.Enabled = boolPtr(true)
	cfg.Checker.Lint.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"go": goBin, "golint": lintBin})

	require.NoError(t, fx.checker.Check(context.Background(), target))

	// build keeps line 5, lint keeps only line 9, whichever finished first
	file := filepath.Join(target, "main.go")
	build := fx.store.Get(diagnostics.CategoryBuild, file)
	require.Len(t, build, 1)
	assert.Equal(t, 5, build[0].Line)

	lint := fx.store.Get(diagnostics.CategoryLint, file)
	require.Len(t, lint, 1)
	assert.Equal(t, 9, lint[0].Line)

	lastLint, ok := fx.publisher.latest(diagnostics.CategoryLint, file)
	require.True(t, ok)
	assert.Equal(t, lint, lastLint)
}

func TestCheckPropagatesMissingLintTool(t *testing.T) {
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	cfg.Checker.Lint.Tool = "no-such-lint-tool"
	fx := newFixture(t, cfg, nil)

	err := fx.checker.Check(context.Background(), t.TempDir())

	var notFound *errors.ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-such-lint-tool", notFound.Tool)
	assert.True(t, fx.publisher.empty())
}

func TestCheckSwallowsLintExecutionFailure(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	lintBin := writeTool(t, bin, "golint", `echo "flag provided but not defined: -bogus" >&2
exit 2
`)
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"golint": lintBin})

	// a previous pass left a finding behind; the failed run wipes it
	file := filepath.Join(target, "main.go")
	fx.store.Apply(diagnostics.CategoryLint, file, []diagnostics.Diagnostic{
		{File: file, Line: 4, Message: "stale", Severity: diagnostics.SeverityWarning, Category: diagnostics.CategoryLint},
	})

	require.NoError(t, fx.checker.Check(context.Background(), target))

	assert.Empty(t, fx.store.Get(diagnostics.CategoryLint, file))
	last, ok := fx.publisher.latest(diagnostics.CategoryLint, file)
	require.True(t, ok)
	assert.Empty(t, last)
}

func TestCheckClearsFilesThatStopReporting(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	writeTool(t, bin, "golint", `echo "a.go:1:1: one"
echo "b.go:2:2: two"
`)
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"golint": filepath.Join(bin, "golint")})

	require.NoError(t, fx.checker.Check(context.Background(), target))
	require.Len(t, fx.store.Files(diagnostics.CategoryLint), 2)

	// next pass: b.go got fixed
	writeTool(t, bin, "golint", `echo "a.go:1:1: one"
`)
	require.NoError(t, fx.checker.Check(context.Background(), target))

	aFile := filepath.Join(target, "a.go")
	bFile := filepath.Join(target, "b.go")
	assert.Equal(t, []string{aFile}, fx.store.Files(diagnostics.CategoryLint))
	last, ok := fx.publisher.latest(diagnostics.CategoryLint, bFile)
	require.True(t, ok)
	assert.Empty(t, last)
}

func TestCheckCanceledRunPublishesNothing(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	lintBin := writeTool(t, bin, "golint", "sleep 30\n")
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"golint": lintBin})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, fx.checker.Check(ctx, target))

	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must not wait for the tool")
	assert.True(t, fx.publisher.empty())
	assert.Empty(t, fx.store.Files(diagnostics.CategoryLint))
}

func TestCheckStrictAnchorsUnmatchedOutput(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	lintBin := writeTool(t, bin, "golint", `echo "panic at the disco"
`)
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	cfg.Checker.StrictUnmatched = true
	fx := newFixture(t, cfg, map[string]string{"golint": lintBin})
	active := filepath.Join(target, "main.go")
	fx.checker.ActiveFile = active

	require.NoError(t, fx.checker.Check(context.Background(), target))

	set, ok := fx.publisher.latest(diagnostics.CategoryLint, active)
	require.True(t, ok)
	require.Len(t, set, 1)
	assert.Equal(t, 1, set[0].Line)
	assert.Equal(t, 1, set[0].Col)
	assert.Equal(t, "panic at the disco", strings.TrimSpace(set[0].Message))
}

func TestCheckAnnotatesCharacterColumns(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	file := filepath.Join(target, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("日本語 x := 1\n"), 0644))

	// byte column 11 is the x right after three 3-byte runes and a space
	lintBin := writeTool(t, bin, "golint", `echo "main.go:1:11: x is unused"
`)
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	cfg.Checker.CharColumns = true
	fx := newFixture(t, cfg, map[string]string{"golint": lintBin})

	require.NoError(t, fx.checker.Check(context.Background(), target))

	set, ok := fx.publisher.latest(diagnostics.CategoryLint, file)
	require.True(t, ok)
	require.Len(t, set, 1)
	assert.Equal(t, 11, set[0].Col)
	assert.Equal(t, 5, set[0].CharCol)
}

func TestCheckSkipsDisabledCategories(t *testing.T) {
	bin, target := t.TempDir(), t.TempDir()
	marker := filepath.Join(bin, "go.calls")
	goBin := writeTool(t, bin, "go", "echo run >> "+marker+"\n")
	lintBin := writeTool(t, bin, "golint", `echo "a.go:1:1: one"
`)
	cfg := newTestConfig()
	cfg.Checker.Lint.Enabled = boolPtr(true)
	fx := newFixture(t, cfg, map[string]string{"go": goBin, "golint": lintBin})

	require.NoError(t, fx.checker.Check(context.Background(), target))

	assert.NoFileExists(t, marker, "disabled build and vet must not touch the go binary")
	assert.Len(t, fx.store.Files(diagnostics.CategoryLint), 1)
}

func TestCheckAllCategoriesDisabledIsANoOp(t *testing.T) {
	fx := newFixture(t, newTestConfig(), nil)

	require.NoError(t, fx.checker.Check(context.Background(), t.TempDir()))
	assert.True(t, fx.publisher.empty())
}
