package tools

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/internal/goversion"
	"github.com/go-checkup/checkup/pkg/shared/config"
)

var (
	AppConfig *config.Config
	logger    hclog.Logger
)

// ToolsCmd represents the command for the tools command.
var ToolsCmd = &cobra.Command{
	Use:                   "tools",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Show where the check tools resolve and the detected toolchain version",
	RunE:                  runToolsCommand,
}

// Init initializes the global configuration and logger for the tools command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runToolsCommand(cmd *cobra.Command, args []string) error {
	resolver := execute.NewPathResolver(AppConfig)

	fmt.Println("Check tools:")
	for _, name := range []string{"go", config.LintTool(AppConfig)} {
		path, err := resolver.Resolve(name)
		if err != nil {
			logger.Debug("tool resolution failed", "tool", name, "error", err)
			fmt.Printf("  %s: not found\n", name)
			continue
		}
		fmt.Printf("  %s: %s\n", name, path)
	}

	runner := execute.NewRunner(logger, AppConfig.Checker.TimeoutDuration)
	versions := goversion.NewCache(logger, runner, resolver, "")
	v, err := versions.Get(cmd.Context())
	if err != nil {
		logger.Debug("toolchain detection failed", "error", err)
		fmt.Println("Toolchain: unknown")
		return nil
	}
	fmt.Printf("Toolchain: %s\n", v)
	return nil
}
