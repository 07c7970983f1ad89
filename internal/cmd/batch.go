package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/core"
	"github.com/domainsweep/domainsweep/internal/core/engine"
	"github.com/domainsweep/domainsweep/internal/observability"
	"github.com/domainsweep/domainsweep/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check domains from a file",
	Long:  "Read domains from a file (one per line, \"-\" for stdin) and check availability sequentially.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("out", "o", "-", "Output destination (\"-\" for stdout)")
	batchCmd.Flags().String("output", "csv", "Output format: csv, table, json")
	batchCmd.Flags().Bool("dry-run", false, "Validate config and count domains without any network calls")
	batchCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
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

	reader, closeInput, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer closeInput() // nolint:errcheck // best-effort cleanup on read-only input

	source := newDomainSource(reader)

	if dryRun {
		count := 0
		for range source.All() {
			count++
		}
		if err := source.Err(); err != nil {
			return err
		}
		fmt.Printf("Would check %d domains.\n", count)
		return nil
	}

	ctx := cmd.Context()
	startedAt := time.Now()

	cacheStore := openStore(ctx, cfg)
	if cacheStore != nil {
		defer cacheStore.Close() // nolint:errcheck // best-effort cleanup
	}

	domainChecker, err := buildChecker(cfg, storeOrNil(cacheStore), !noCache, observability.CLILogger)
	if err != nil {
		return err
	}

	writer, closeOutput, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer closeOutput() // nolint:errcheck // best-effort cleanup

	runner := &engine.Runner{
		Checker: domainChecker,
		Logger:  observability.CLILogger,
	}

	checked := 0

	// CSV streams a row per result so partial output survives interruption.
	// Table and JSON need the full set before rendering.
	if format == output.FormatCSV {
		csvWriter := output.NewCSVWriter(writer)
		if err := csvWriter.WriteHeader(); err != nil {
			return err
		}

		err = runner.Run(ctx, source.All(), func(result *core.CheckResult) error {
			checked++
			return csvWriter.Write(result)
		})
		if err == nil {
			err = csvWriter.Flush()
		}
	} else {
		var results []*core.CheckResult
		err = runner.Run(ctx, source.All(), func(result *core.CheckResult) error {
			checked++
			results = append(results, result)
			return nil
		})
		if err == nil {
			err = output.Render(writer, format, results)
		}
	}
	if err != nil {
		return err
	}
	if err := source.Err(); err != nil {
		return err
	}

	observability.CLILogger.Info("Batch complete",
		zap.Int("domains", checked),
		zap.Duration("elapsed", time.Since(startedAt).Round(time.Millisecond)),
	)
	return nil
}
