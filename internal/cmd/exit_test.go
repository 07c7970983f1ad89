package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainsweep/domainsweep/internal/config"
	"github.com/domainsweep/domainsweep/internal/core/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "generic", err: errors.New("boom"), want: ExitFailure},
		{name: "bad config", err: fmt.Errorf("load: %w", config.ErrInvalidConfiguration), want: ExitBadConfig},
		{name: "bad limiter", err: fmt.Errorf("limiter: %w", engine.ErrInvalidConfiguration), want: ExitBadConfig},
		{name: "canceled", err: context.Canceled, want: ExitInterrupted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}
