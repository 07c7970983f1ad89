package cmd

import (
	"context"
	"errors"

	"github.com/domainsweep/domainsweep/internal/config"
	"github.com/domainsweep/domainsweep/internal/core/engine"
)

// Exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitBadConfig   = 3
	ExitInterrupted = 130
)

// ExitCode maps an error from Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrInvalidConfiguration),
		errors.Is(err, engine.ErrInvalidConfiguration):
		return ExitBadConfig
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
