package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/go-checkup/checkup/cmd/check"
	"github.com/go-checkup/checkup/cmd/tools"
	"github.com/go-checkup/checkup/cmd/version"
	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/errors"
	"github.com/go-checkup/checkup/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "checkup [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Checkup runs the Go toolchain checks and merges their findings.",
		Long: `Checkup drives go build, go vet and a configurable lint tool over a package,
parses their output into one diagnostic stream, and reconciles overlapping
findings across the check categories.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the config file (default is checkup.yml).")
	rootCmd.AddCommand(check.CheckCmd)
	rootCmd.AddCommand(tools.ToolsCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	_ = godotenv.Load()

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errors.ExitCode(err)
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = os.Getenv("CHECKUP_CONFIG")
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	check.Init(AppConfig, logger.NewLogger(AppConfig, "check"))
	tools.Init(AppConfig, logger.NewLogger(AppConfig, "tools"))
	version.Init(AppConfig)
}
