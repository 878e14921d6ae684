package shared

import (
	"github.com/spf13/pflag"
)

// Versions holds the build-time metadata stamped into the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// HasFlags reports whether the user set any flag on the command line.
func HasFlags(flags *pflag.FlagSet) bool {
	return flags.NFlag() > 0
}
