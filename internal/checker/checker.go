// Package checker drives the check tools over a target directory and
// publishes their merged findings.
package checker

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/go-checkup/checkup/internal/diagnostics"
	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/internal/goversion"
	"github.com/go-checkup/checkup/internal/report"
	"github.com/go-checkup/checkup/internal/textpos"
	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/errors"
)

// Checker runs the enabled check categories over a target directory and
// publishes the merged findings. The store keeps state across calls, so
// a repeated check replaces earlier results instead of piling onto them.
type Checker struct {
	cfg       *config.Config
	logger    hclog.Logger
	resolver  execute.Resolver
	runner    *execute.Runner
	store     *diagnostics.Store
	versions  *goversion.Cache
	publisher report.Publisher
	mapper    *textpos.Mapper

	// ActiveFile anchors the synthetic diagnostic produced in strict
	// mode when a tool's output matched no line of the grammar.
	ActiveFile string

	// pubMu keeps each merge and its publishes together, so the
	// publisher sees category sets in the order they changed.
	pubMu sync.Mutex
}

// New wires a Checker from its collaborators. The position mapper is
// sized from the checker cache_size setting.
func New(cfg *config.Config, logger hclog.Logger, resolver execute.Resolver, runner *execute.Runner, store *diagnostics.Store, versions *goversion.Cache, publisher report.Publisher) (*Checker, error) {
	mapper, err := textpos.NewMapper(cfg.Checker.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create position mapper: %w", err)
	}
	return &Checker{
		cfg:       cfg,
		logger:    logger,
		resolver:  resolver,
		runner:    runner,
		store:     store,
		versions:  versions,
		publisher: publisher,
		mapper:    mapper,
	}, nil
}

// Check runs every enabled category against the package in dir,
// bounded by the configured number of jobs. It returns the first
// *errors.ToolNotFoundError or infrastructure failure; findings are
// not errors and land in the store and the publisher instead.
func (c *Checker) Check(ctx context.Context, dir string) error {
	categories := c.enabledCategories()
	if len(categories) == 0 {
		c.logger.Warn("all check categories are disabled, nothing to do")
		return nil
	}
	c.logger.Info("checking package", "dir", dir, "categories", categoryNames(categories), "jobs", c.cfg.Checker.Jobs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Checker.Jobs)

	for _, cat := range categories {
		cat := cat
		g.Go(func() error {
			return c.runCategory(gctx, cat, dir)
		})
	}
	return g.Wait()
}

// runCategory performs one category's tool run end to end: build the
// invocation, run it, parse the output and publish the merged result.
func (c *Checker) runCategory(ctx context.Context, cat diagnostics.Category, dir string) error {
	inv, severity, err := c.invocation(ctx, cat, dir)
	if err != nil {
		return err
	}

	res, err := c.runner.Run(ctx, inv)
	if err != nil {
		return fmt.Errorf("failed to run %s check: %w", cat, err)
	}
	if res.Canceled {
		c.logger.Debug("check canceled, keeping previous diagnostics", "category", cat)
		return nil
	}

	raw := inv.Output(res)
	if res.ExitErr != nil && !inv.UseStdErr && strings.TrimSpace(res.Stderr) != "" {
		execErr := errors.NewToolExecutionError(inv.Tool, res.ExitCode(), strings.TrimSpace(res.Stderr))
		c.logger.Error("check tool failed, dropping its output", "category", cat, "error", execErr)
		raw = ""
	}

	diags := diagnostics.Parse(raw, diagnostics.ParseOptions{
		Dir:        dir,
		Severity:   severity,
		Category:   cat,
		Strict:     c.cfg.Checker.StrictUnmatched,
		ActiveFile: c.ActiveFile,
	})
	if c.cfg.Checker.CharColumns {
		c.addCharColumns(diags)
	}
	c.logger.Debug("check finished", "category", cat, "diagnostics", len(diags), "exit_code", res.ExitCode())

	return c.publish(cat, diags)
}

// publish replaces the category's picture in the store and hands every
// changed set to the publisher. Files that reported before but are
// absent now get an explicit empty set, clearing them downstream.
func (c *Checker) publish(cat diagnostics.Category, diags []diagnostics.Diagnostic) error {
	byFile := diagnostics.GroupByFile(diags)
	for _, file := range c.store.Files(cat) {
		if _, still := byFile[file]; !still {
			byFile[file] = nil
		}
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	for _, file := range files {
		changed := c.store.Apply(cat, file, byFile[file])
		for _, changedCat := range diagnostics.Categories {
			set, ok := changed[changedCat]
			if !ok {
				continue
			}
			if err := c.publisher.Publish(changedCat, file, set); err != nil {
				return fmt.Errorf("failed to publish %s diagnostics for %s: %w", changedCat, file, err)
			}
		}
	}
	return nil
}

// addCharColumns reads each diagnosed file once and annotates byte
// columns with their character equivalent. Files that cannot be read or
// positions beyond the buffer leave the annotation unset.
func (c *Checker) addCharColumns(diags []diagnostics.Diagnostic) {
	contents := make(map[string][]byte)
	for i := range diags {
		d := &diags[i]
		if d.Col < 1 {
			continue
		}

		content, seen := contents[d.File]
		if !seen {
			var err error
			content, err = os.ReadFile(d.File)
			if err != nil {
				c.logger.Debug("cannot map columns", "file", d.File, "error", err)
				content = nil
			}
			contents[d.File] = content
		}
		if content == nil {
			continue
		}

		charCol, err := c.mapper.CharColumn(d.File, content, d.Line, d.Col)
		if err != nil {
			c.logger.Debug("cannot map columns", "file", d.File, "line", d.Line, "col", d.Col, "error", err)
			continue
		}
		d.CharCol = charCol
	}
}

// enabledCategories returns the categories to run; each defaults to
// enabled unless the config switches it off.
func (c *Checker) enabledCategories() []diagnostics.Category {
	var categories []diagnostics.Category
	if config.GetBoolValue(c.cfg, "Checker.Build.Enabled", true) {
		categories = append(categories, diagnostics.CategoryBuild)
	}
	if config.GetBoolValue(c.cfg, "Checker.Vet.Enabled", true) {
		categories = append(categories, diagnostics.CategoryVet)
	}
	if config.GetBoolValue(c.cfg, "Checker.Lint.Enabled", true) {
		categories = append(categories, diagnostics.CategoryLint)
	}
	return categories
}

func categoryNames(categories []diagnostics.Category) []string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = string(cat)
	}
	return names
}
