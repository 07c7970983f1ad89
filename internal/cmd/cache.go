package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/domainsweep/domainsweep/internal/config"
	"github.com/domainsweep/domainsweep/internal/core/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE:  runCachePurge,
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	// Purge needs only store settings, not API credentials.
	cfg, err := config.Load(nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close() // nolint:errcheck // best-effort cleanup

	if err := s.Migrate(ctx); err != nil {
		return err
	}

	purged, err := s.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Purged %d expired cache entries.\n", purged)
	return nil
}
