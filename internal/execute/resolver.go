package execute

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/errors"
)

// Resolver locates tool binaries by name before anything is spawned.
type Resolver interface {
	Resolve(name string) (string, error)
}

// PathResolver resolves tools against explicit per-tool overrides, then
// the configured search directories, then $PATH. An unresolvable tool
// yields a *errors.ToolNotFoundError, the one tool failure that reaches
// callers.
type PathResolver struct {
	Overrides   map[string]string
	SearchPaths []string
}

// NewPathResolver builds a PathResolver from the tools configuration.
func NewPathResolver(cfg *config.Config) *PathResolver {
	r := &PathResolver{Overrides: make(map[string]string)}
	if cfg == nil {
		return r
	}
	if cfg.Tools.GoBinary != "" {
		r.Overrides["go"] = cfg.Tools.GoBinary
	}
	r.SearchPaths = cfg.Tools.SearchPaths
	return r
}

// Resolve returns the executable path for the named tool.
func (r *PathResolver) Resolve(name string) (string, error) {
	if override, ok := r.Overrides[name]; ok && override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return "", errors.NewToolNotFoundError(name, fmt.Sprintf("configured path %q is not an executable", override))
		}
		return path, nil
	}

	for _, dir := range r.SearchPaths {
		if path, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", errors.NewToolNotFoundError(name, "install it or add its directory to the search paths")
}
