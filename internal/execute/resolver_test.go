package execute

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/errors"
)

func TestResolveOverrideWinsOverSearchPaths(t *testing.T) {
	dir := t.TempDir()
	override := writeTool(t, dir, "custom-go", "exit 0\n")
	decoy := filepath.Join(dir, "decoys")
	require.NoError(t, os.Mkdir(decoy, 0755))
	writeTool(t, decoy, "go", "exit 0\n")

	r := &PathResolver{
		Overrides:   map[string]string{"go": override},
		SearchPaths: []string{decoy},
	}

	path, err := r.Resolve("go")
	require.NoError(t, err)
	assert.Equal(t, override, path)
}

func TestResolveSearchPathsBeforePath(t *testing.T) {
	dir := t.TempDir()
	tool := writeTool(t, dir, "mylint", "exit 0\n")

	r := &PathResolver{SearchPaths: []string{dir}}

	path, err := r.Resolve("mylint")
	require.NoError(t, err)
	assert.Equal(t, tool, path)
}

func TestResolveFallsBackToPath(t *testing.T) {
	r := &PathResolver{}

	// sh is present on every unix test host
	path, err := r.Resolve("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestResolveUnknownToolFailsFast(t *testing.T) {
	r := &PathResolver{SearchPaths: []string{t.TempDir()}}

	_, err := r.Resolve("definitely-not-installed-tool")
	require.Error(t, err)

	var notFound *errors.ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "definitely-not-installed-tool", notFound.Tool)
}

func TestResolveBrokenOverrideFailsFast(t *testing.T) {
	r := &PathResolver{
		Overrides: map[string]string{"go": filepath.Join(t.TempDir(), "missing-go")},
	}

	_, err := r.Resolve("go")
	var notFound *errors.ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Hint, "not an executable")
}

func TestNewPathResolverFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tools.GoBinary = "/opt/go/bin/go"
	cfg.Tools.SearchPaths = []string{"/opt/tools"}

	r := NewPathResolver(cfg)
	assert.Equal(t, "/opt/go/bin/go", r.Overrides["go"])
	assert.Equal(t, []string{"/opt/tools"}, r.SearchPaths)

	assert.NotNil(t, NewPathResolver(nil).Overrides)
}
