package check

import (
	"fmt"
)

// validateCheckArgs validates the arguments provided to the check command.
func validateCheckArgs(options *RunOptionsCheck, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("invalid argument(s) received, only one target is allowed")
	}

	switch options.Format {
	case "", FormatText, FormatJSON, FormatSarif:
	default:
		return fmt.Errorf("unknown report format %q, expected one of: %s, %s, %s", options.Format, FormatText, FormatJSON, FormatSarif)
	}

	if options.Jobs < 0 {
		return fmt.Errorf("jobs must be a positive integer: %d", options.Jobs)
	}

	if options.NoBuild && options.NoVet && options.NoLint {
		return fmt.Errorf("all checks are disabled, nothing to run")
	}

	return nil
}
