// SPDX-License-Identifier: MIT

// Package main implements the megaman CLI: spectral embeddings and Laplacian
// null spaces of point sets read from CSV or Parquet files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/chanhou/megaman/config"
	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/logging"
	"github.com/chanhou/megaman/multigrid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configPath is the optional YAML configuration file.
	configPath string
	// logLevel overrides log.level when set.
	logLevel string
	// metricsAddr overrides metrics.addr when set.
	metricsAddr string
	// version information
	version = "dev"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *eigen.Engine
	metrics *http.Server
}

// current is set by the root PersistentPreRunE.
var current *app

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "megaman",
	Short: "Manifold learning on point clouds",
	Long: `megaman builds neighborhood graphs, affinities and Laplacians over a point
set and computes spectral embeddings and Laplacian null spaces.

Configuration is read from --config (YAML), then MEGAMAN_* environment
variables (a .env file in the working directory is loaded first), then flags.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
}

// setup loads .env, the configuration, the logger and the eigen engine.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	lc := cfg.LoggingConfig()
	lc.Output = zapStderr(cmd)
	logger, err := logging.New(lc)
	if err != nil {
		return err
	}

	engineOpts := []eigen.EngineOption{eigen.WithLogger(logger)}
	if cfg.Solver.Multigrid {
		engineOpts = append(engineOpts, eigen.WithMultigrid(multigrid.NewBackend(multigrid.WithLogger(logger))))
	}
	current = &app{
		cfg:    cfg,
		logger: logger,
		engine: eigen.NewEngine(engineOpts...),
	}
	if cfg.Metrics.Addr != "" {
		current.metrics = serveMetrics(cfg.Metrics.Addr, logger)
	}

	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if current == nil {
		return
	}
	if current.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = current.metrics.Shutdown(ctx)
	}
	_ = current.logger.Sync()
}

// serveMetrics exposes the default Prometheus registry on addr/metrics.
func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("starting metrics server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return srv
}
