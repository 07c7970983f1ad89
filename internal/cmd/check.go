package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/domainsweep/domainsweep/internal/core"
	"github.com/domainsweep/domainsweep/internal/observability"
	"github.com/domainsweep/domainsweep/internal/output"
)

var checkCmd = &cobra.Command{
	Use:   "check <domain>...",
	Short: "Check availability of one or more domains",
	Long:  "Check domain availability against the configured API and print the results.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("output", "table", "Output format: table, csv, json")
	checkCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	cacheStore := openStore(ctx, cfg)
	if cacheStore != nil {
		defer cacheStore.Close() // nolint:errcheck // best-effort cleanup
	}

	domainChecker, err := buildChecker(cfg, storeOrNil(cacheStore), !noCache, observability.CLILogger)
	if err != nil {
		return err
	}

	results := make([]*core.CheckResult, 0, len(args))
	for _, domain := range args {
		result, err := domainChecker.Check(ctx, domain)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	return output.Render(os.Stdout, format, results)
}
