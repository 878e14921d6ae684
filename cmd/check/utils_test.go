package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-checkup/checkup/internal/diagnostics"
	"github.com/go-checkup/checkup/internal/report"
	"github.com/go-checkup/checkup/pkg/shared/config"
)

func TestResolveTargetDirectory(t *testing.T) {
	dir := t.TempDir()

	gotDir, active, err := resolveTarget([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, gotDir)
	assert.Empty(t, active)
}

func TestResolveTargetFileChecksItsDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0644))

	gotDir, active, err := resolveTarget([]string{file})
	require.NoError(t, err)
	assert.Equal(t, dir, gotDir)
	assert.Equal(t, file, active)
}

func TestResolveTargetDefaultsToWorkingDirectory(t *testing.T) {
	gotDir, active, err := resolveTarget(nil)
	require.NoError(t, err)

	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	assert.Equal(t, wd, gotDir)
	assert.Empty(t, active)
}

func TestResolveTargetMissingPath(t *testing.T) {
	_, _, err := resolveTarget([]string{filepath.Join(t.TempDir(), "gone")})
	assert.Error(t, err)
}

func TestApplyCheckOverrides(t *testing.T) {
	cfg := &config.Config{}
	cfg.Checker.Jobs = 4

	applyCheckOverrides(cfg, &RunOptionsCheck{
		Jobs:            8,
		LintTool:        "revive",
		NoVet:           true,
		StrictUnmatched: true,
	})

	assert.Equal(t, 8, cfg.Checker.Jobs)
	assert.Equal(t, "revive", cfg.Checker.Lint.Tool)
	assert.True(t, cfg.Checker.StrictUnmatched)
	require.NotNil(t, cfg.Checker.Vet.Enabled)
	assert.False(t, *cfg.Checker.Vet.Enabled)
	assert.Nil(t, cfg.Checker.Build.Enabled)
	assert.Nil(t, cfg.Checker.Lint.Enabled)
}

func TestApplyCheckOverridesKeepsConfigWhenUnset(t *testing.T) {
	cfg := &config.Config{}
	cfg.Checker.Jobs = 4
	cfg.Checker.Lint.Tool = "golint"

	applyCheckOverrides(cfg, &RunOptionsCheck{})

	assert.Equal(t, 4, cfg.Checker.Jobs)
	assert.Equal(t, "golint", cfg.Checker.Lint.Tool)
	assert.False(t, cfg.Checker.StrictUnmatched)
}

func TestBuildPublisherDefaultsToTextOnStdout(t *testing.T) {
	sink, err := buildPublisher(&config.Config{}, &RunOptionsCheck{})
	require.NoError(t, err)

	assert.IsType(t, &report.TextPublisher{}, sink.Publisher)
	assert.Empty(t, sink.path)
	assert.NoError(t, sink.Close())
}

func TestBuildPublisherWritesIntoDirectory(t *testing.T) {
	dir := t.TempDir()

	sink, err := buildPublisher(&config.Config{}, &RunOptionsCheck{Format: FormatJSON, OutputPath: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "checkup-report.json"), sink.path)
	assert.IsType(t, &report.JSONPublisher{}, sink.Publisher)

	require.NoError(t, sink.Close())
	assert.FileExists(t, sink.path)
}

func TestBuildPublisherTimestampsReportsInCI(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Checkup.Mode = "CI"

	sink, err := buildPublisher(cfg, &RunOptionsCheck{Format: FormatSarif, OutputPath: dir})
	require.NoError(t, err)

	base := filepath.Base(sink.path)
	assert.True(t, strings.HasPrefix(base, "check_"), "unexpected report name %q", base)
	assert.True(t, strings.HasSuffix(base, ".sarif"), "unexpected report name %q", base)
	require.NoError(t, sink.Close())
	assert.FileExists(t, sink.path)
}

func TestCountFindings(t *testing.T) {
	store := diagnostics.NewStore()
	f := "/work/main.go"
	store.Apply(diagnostics.CategoryBuild, f, []diagnostics.Diagnostic{
		{File: f, Line: 1, Message: "boom", Severity: diagnostics.SeverityError, Category: diagnostics.CategoryBuild},
	})
	store.Apply(diagnostics.CategoryLint, f, []diagnostics.Diagnostic{
		{File: f, Line: 2, Message: "style", Severity: diagnostics.SeverityWarning, Category: diagnostics.CategoryLint},
		{File: f, Line: 3, Message: "style", Severity: diagnostics.SeverityWarning, Category: diagnostics.CategoryLint},
	})

	errorCount, warningCount := countFindings(store)
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, 2, warningCount)
}
