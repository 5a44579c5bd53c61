// Package cli orchestrates a duo invocation: it resolves which run mode
// applies, drives engine sessions for that mode, and funnels every
// failure through one reporting path so the process has a single exit
// decision.
package cli

import (
	"github.com/RobLoach/duo/internal/config"
	"github.com/RobLoach/duo/internal/errors"
)

// RunMode is the selected execution strategy for one invocation.
type RunMode int

const (
	// ModeHelp displays usage and exits successfully.
	ModeHelp RunMode = iota

	// ModeStdin bundles piped input and streams the result.
	ModeStdin

	// ModeSingleStdout bundles one entry file and streams the result.
	ModeSingleStdout

	// ModeWriteFiles bundles entries concurrently into the output
	// directory.
	ModeWriteFiles
)

func (m RunMode) String() string {
	switch m {
	case ModeHelp:
		return "help"
	case ModeStdin:
		return "stdin"
	case ModeSingleStdout:
		return "stdout"
	case ModeWriteFiles:
		return "write"
	default:
		return "unknown"
	}
}

// ResolveMode applies the mode precedence ladder, first match wins.
// Conflicting flags fail here, before any build work starts.
func ResolveMode(cfg *config.RunConfig, stdinTTY bool) (RunMode, *errors.DuoError) {
	switch {
	case cfg.Quiet && cfg.Verbose:
		return ModeHelp, errors.FlagConflict("--quiet", "--verbose")
	case cfg.Stdout && len(cfg.Entries) > 1:
		return ModeHelp, errors.FlagConflict("--stdout", "multiple entries")
	case cfg.Stdout && len(cfg.Entries) == 1:
		return ModeSingleStdout, nil
	case len(cfg.Entries) > 0:
		return ModeWriteFiles, nil
	case !stdinTTY:
		return ModeStdin, nil
	default:
		return ModeHelp, nil
	}
}
