package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/observability"
	"github.com/domainsweep/domainsweep/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long:  "Expose domain checks over HTTP with health, readiness, and version endpoints.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	observability.InitServerLogger(cfg.Logging.Level)
	logger := observability.ServerLogger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheStore := openStore(ctx, cfg)
	if cacheStore != nil {
		defer cacheStore.Close() // nolint:errcheck // best-effort cleanup
	}

	domainChecker, err := buildChecker(cfg, storeOrNil(cacheStore), true, logger)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, domainChecker)
	if cacheStore != nil {
		srv.RegisterHealthChecker("store", cacheStore)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete cleanly", zap.Error(err))
		return err
	}
	return nil
}
