package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexidex/lexidex/internal/config"
	logpkg "github.com/lexidex/lexidex/internal/logger"
	"github.com/lexidex/lexidex/internal/metrics"
	chiTransport "github.com/lexidex/lexidex/internal/transport/chi"
	queryuc "github.com/lexidex/lexidex/internal/usecase/query"
	"github.com/lexidex/lexidex/internal/vectors"
	"github.com/lexidex/lexidex/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query service",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexidex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("vectors_path", cfg.Vectors.Path),
	)

	metrics.RegisterQueryMetrics()

	// The table load is the one blocking startup step. The listener is not
	// opened until it succeeds; any failure here aborts the process.
	table, stats, err := loadTable(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load vector table", zap.Error(err))
	}
	defer table.Close()

	metrics.VocabularySize.Set(float64(stats.Rows))
	metrics.VectorDimensions.Set(float64(stats.Dimension))
	metrics.LoadSkippedLines.Set(float64(stats.SkippedLines))

	querySvc := queryuc.New(table, logger).
		WithLimits(cfg.Query.DefaultTopN, cfg.Query.MaxTopN)

	server := chiTransport.NewServer(querySvc, table, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// loadTable acquires the vector source if needed and builds the table,
// preferring the binary snapshot when configured.
func loadTable(ctx context.Context, cfg config.Config, logger *zap.Logger) (*vectors.Table, vectors.Stats, error) {
	needSource := true
	if cfg.Vectors.SnapshotPath != "" {
		if _, err := os.Stat(cfg.Vectors.SnapshotPath); err == nil {
			needSource = false
		}
	}
	if needSource {
		fetcher := vectors.NewFetcher(logger)
		if err := fetcher.Ensure(ctx, cfg.Vectors.SourceURL, cfg.Vectors.ArchiveMember, cfg.Vectors.Path); err != nil {
			return nil, vectors.Stats{}, err
		}
	}

	return vectors.Load(cfg.Vectors.Path, cfg.Vectors.SnapshotPath, vectors.Options{
		CaseSensitive: cfg.Vectors.CaseSensitive,
		Logger:        logger,
	})
}
