package goversion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/pkg/shared/errors"
)

// Cache memoizes the detected toolchain version process-wide. Detection
// resolves the go binary and runs it once with the `version` argument;
// later lookups reuse the parsed value. A cached value found invalid is
// logged and discarded, forcing a fresh detection on the next lookup.
type Cache struct {
	mu       sync.Mutex
	logger   hclog.Logger
	runner   *execute.Runner
	resolver execute.Resolver
	goBinary string
	cached   *Version
}

// NewCache creates a Cache. goBinary names the tool to resolve and
// defaults to "go" when empty; explicit binary paths are the resolver's
// business.
func NewCache(logger hclog.Logger, runner *execute.Runner, resolver execute.Resolver, goBinary string) *Cache {
	if goBinary == "" {
		goBinary = "go"
	}
	return &Cache{
		logger:   logger,
		runner:   runner,
		resolver: resolver,
		goBinary: goBinary,
	}
}

// Get returns the toolchain version, detecting it on first use. Version
// output matching no recognized shape returns the invalid instance
// together with a *errors.InvalidVersionError; the instance is still
// cached so the invalidation path triggers on the next lookup.
func (c *Cache) Get(ctx context.Context) (Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		if c.cached.IsValid() {
			return *c.cached, nil
		}
		c.logger.Warn("cached toolchain version is invalid, detecting again", "binary", c.cached.BinaryPath)
		c.cached = nil
	}

	path, err := c.resolver.Resolve(c.goBinary)
	if err != nil {
		return Version{}, err
	}

	res, err := c.runner.Run(ctx, execute.Invocation{Tool: path, Args: []string{"version"}})
	if err != nil {
		return Version{}, fmt.Errorf("failed to query %q version: %w", path, err)
	}
	if res.Canceled {
		// nothing usable and nothing worth caching
		return Version{BinaryPath: path}, nil
	}

	v := Parse(path, res.Stdout)
	c.cached = &v
	if !v.IsValid() {
		return v, errors.NewInvalidVersionError(strings.TrimSpace(res.Stdout))
	}

	c.logger.Debug("detected toolchain version", "binary", path, "version", v.Format(true))
	return v, nil
}

// Invalidate discards the cached version so the next lookup re-detects.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}
