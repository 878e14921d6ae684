package version

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-checkup/checkup/internal/execute"
	"github.com/go-checkup/checkup/internal/goversion"
	"github.com/go-checkup/checkup/pkg/shared"
	"github.com/go-checkup/checkup/pkg/shared/config"
	"github.com/go-checkup/checkup/pkg/shared/logger"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// CoreVersions struct holds version information for the application and the detected toolchain.
type CoreVersions struct {
	Versions  shared.Versions `json:"versions"`
	Toolchain string          `json:"toolchain"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and the detected toolchain",
		Run: func(cmd *cobra.Command, args []string) {
			versionInfo := shared.Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
			}
			version := CoreVersions{
				Versions:  versionInfo,
				Toolchain: detectToolchain(cmd.Context()),
			}

			printVersionInfo(&version)
		},
	}
}

// detectToolchain resolves the go binary and queries its version.
func detectToolchain(ctx context.Context) string {
	if ctx == nil {
		ctx = context.Background()
	}
	l := logger.NewLogger(AppConfig, "version")
	resolver := execute.NewPathResolver(AppConfig)
	runner := execute.NewRunner(l, 0)

	v, err := goversion.NewCache(l, runner, resolver, "").Get(ctx)
	if err != nil {
		l.Debug("toolchain detection failed", "error", err)
		return "unknown"
	}
	return v.String()
}

// printVersionInfo prints the version information for the application and the toolchain.
func printVersionInfo(versions *CoreVersions) {
	fmt.Printf("Core Version: v%s\n", versions.Versions.Version)
	fmt.Printf("Toolchain: %s\n", versions.Toolchain)
	fmt.Printf("Go Version: %s\n", versions.Versions.GolangVersion)
	fmt.Printf("Build Time: %s\n", versions.Versions.BuildTime)
}
