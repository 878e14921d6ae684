package check

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/go-checkup/checkup/internal/checker"
	"github.com/go-checkup/checkup/internal/diagnostics"
	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/internal/goversion"
	"github.com/go-checkup/checkup/pkg/shared"
	"github.com/go-checkup/checkup/pkg/shared/artifacts"
	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/errors"
)

// RunOptionsCheck holds the command line arguments of the check command.
type RunOptionsCheck struct {
	Format          string
	OutputPath      string
	Jobs            int
	LintTool        string
	NoBuild         bool
	NoVet           bool
	NoLint          bool
	StrictUnmatched bool
	CharColumns     bool
}

// checkArtifact is the payload written to the CI artifacts folder after a run.
type checkArtifact struct {
	Target   string                                                       `json:"target"`
	Findings map[diagnostics.Category]map[string][]diagnostics.Diagnostic `json:"findings"`
}

// Global variables for configuration and command arguments
var (
	AppConfig    *config.Config
	logger       hclog.Logger
	checkOptions RunOptionsCheck

	exampleCheckUsage = `  # Check the package in the current directory
  checkup check .

  # Check a package and write a SARIF report
  checkup check --format sarif --output /path/to/report.sarif ./cmd/app

  # Check the package containing one file, anchoring unmatched tool output to it
  checkup check --strict-unmatched ./internal/server/server.go

  # Run only the compiler check, four categories at a time
  checkup check --no-vet --no-lint --jobs 4 .`
)

// CheckCmd represents the command for the check command.
var CheckCmd = &cobra.Command{
	Use:                   "check [--format/-f FORMAT] [--output/-o PATH] [flags] [TARGET]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCheckUsage,
	Short:                 "Run the build, vet and lint checks over a Go package",
	Long: `Run the enabled check categories over a Go package and report the merged
diagnostics. The target is a package directory or a file inside it; the
current directory is checked when no target is given.`,
	RunE: runCheckCommand,
}

// Init initializes the global configuration and logger for the check command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateCheckArgs(&checkOptions, args); err != nil {
		logger.Error("invalid check arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid check arguments: %w", err), 1)
	}
	applyCheckOverrides(AppConfig, &checkOptions)

	dir, activeFile, err := resolveTarget(args)
	if err != nil {
		logger.Error("failed to resolve check target", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to resolve check target: %w", err), 1)
	}

	sink, err := buildPublisher(AppConfig, &checkOptions)
	if err != nil {
		logger.Error("failed to prepare report destination", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to prepare report destination: %w", err), 1)
	}

	store := diagnostics.NewStore()
	resolver := execute.NewPathResolver(AppConfig)
	runner := execute.NewRunner(logger, AppConfig.Checker.TimeoutDuration)
	versions := goversion.NewCache(logger, runner, resolver, "")

	c, err := checker.New(AppConfig, logger, resolver, runner, store, versions, sink)
	if err != nil {
		logger.Error("failed to prepare checker", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to prepare checker: %w", err), 1)
	}
	c.ActiveFile = activeFile

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		logger.Warn("received signal, canceling checks", "signal", sig.String())
		cancel()
	}()

	checkErr := c.Check(ctx, dir)

	if err := sink.Close(); err != nil {
		logger.Error("failed to finalize report", "error", err)
		if checkErr == nil {
			return errors.NewCommandError(fmt.Errorf("failed to finalize report: %w", err), 1)
		}
	}
	if sink.path != "" {
		logger.Info("results saved to file", "path", sink.path)
	}

	if config.IsCI(AppConfig) {
		result := checkArtifact{Target: dir, Findings: store.Snapshot()}
		if _, err := artifacts.SaveArtifactJSON(AppConfig, logger, "check", result); err != nil {
			logger.Error("failed to write artifact", "error", err)
		}
	}

	if checkErr != nil {
		logger.Error("check failed", "error", checkErr)
		return errors.NewCommandError(fmt.Errorf("check failed: %w", checkErr), 1)
	}

	errorCount, warningCount := countFindings(store)
	logger.Info("check completed", "errors", errorCount, "warnings", warningCount)
	if errorCount > 0 {
		return errors.NewCommandError(fmt.Errorf("check found %d error(s)", errorCount), 2)
	}
	return nil
}

func init() {
	CheckCmd.Flags().StringVarP(&checkOptions.Format, "format", "f", "text", "Report format: text, json or sarif.")
	CheckCmd.Flags().StringVarP(&checkOptions.OutputPath, "output", "o", "", "Path to the file or directory where the report will be saved (default is stdout).")
	CheckCmd.Flags().IntVarP(&checkOptions.Jobs, "jobs", "j", 0, "Number of checks running concurrently (defaults to the configured value).")
	CheckCmd.Flags().StringVar(&checkOptions.LintTool, "lint-tool", "", "Lint tool binary to run (default is golint).")
	CheckCmd.Flags().BoolVar(&checkOptions.NoBuild, "no-build", false, "Skip the compiler check.")
	CheckCmd.Flags().BoolVar(&checkOptions.NoVet, "no-vet", false, "Skip the vet check.")
	CheckCmd.Flags().BoolVar(&checkOptions.NoLint, "no-lint", false, "Skip the lint check.")
	CheckCmd.Flags().BoolVar(&checkOptions.StrictUnmatched, "strict-unmatched", false, "Surface unparsable tool output as a diagnostic on the target file.")
	CheckCmd.Flags().BoolVar(&checkOptions.CharColumns, "char-columns", false, "Annotate diagnostics with character columns for multibyte sources.")
	CheckCmd.Flags().BoolP("help", "h", false, "Show help for the check command.")
}
