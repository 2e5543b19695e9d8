// SPDX-License-Identifier: MIT

// Package config loads megaman settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/geometry"
	"github.com/chanhou/megaman/laplacian"
	"github.com/chanhou/megaman/logging"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full megaman configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Geometry  GeometryConfig  `koanf:"geometry"`
	Solver    SolverConfig    `koanf:"solver"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// LogConfig selects the logger encoding and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// GeometryConfig configures the three derivation stages.
type GeometryConfig struct {
	AdjacencyMethod string         `koanf:"adjacency_method"`
	AdjacencyParams map[string]any `koanf:"adjacency_params"`
	AffinityMethod  string         `koanf:"affinity_method"`
	AffinityParams  map[string]any `koanf:"affinity_params"`
	LaplacianMethod string         `koanf:"laplacian_method"`
	LaplacianParams map[string]any `koanf:"laplacian_params"`
}

// SolverConfig configures the eigen engine.
type SolverConfig struct {
	Name          string  `koanf:"name"`
	Tolerance     float64 `koanf:"tolerance"`
	MaxIterations int     `koanf:"max_iterations"`
	Seed          uint64  `koanf:"seed"`
	// Multigrid registers the AMG backend.
	Multigrid bool `koanf:"multigrid"`
}

// EmbeddingConfig configures spectral embedding.
type EmbeddingConfig struct {
	// Method is "spectral" or "isomap".
	Method     string `koanf:"method"`
	Components int    `koanf:"components"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Defaults.
const (
	DefaultLogFormat  = "text"
	DefaultLogLevel   = "info"
	DefaultSolver     = "auto"
	DefaultComponents = 2
	DefaultEmbedding  = "spectral"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Geometry.AdjacencyMethod == "" {
		cfg.Geometry.AdjacencyMethod = geometry.DefaultAdjacencyMethod
	}
	if cfg.Geometry.AffinityMethod == "" {
		cfg.Geometry.AffinityMethod = geometry.DefaultAffinityMethod
	}
	if cfg.Geometry.LaplacianMethod == "" {
		cfg.Geometry.LaplacianMethod = geometry.DefaultLaplacianMethod
	}
	if cfg.Solver.Name == "" {
		cfg.Solver.Name = DefaultSolver
	}
	if cfg.Embedding.Method == "" {
		cfg.Embedding.Method = DefaultEmbedding
	}
	if cfg.Embedding.Components == 0 {
		cfg.Embedding.Components = DefaultComponents
	}
}

// Validate checks names and ranges.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if _, err := eigen.ParseSolver(c.Solver.Name); err != nil {
		return fmt.Errorf("%w: solver.name: %w", ErrInvalidConfig, err)
	}
	if c.Solver.Tolerance < 0 {
		return fmt.Errorf("%w: solver.tolerance %g < 0", ErrInvalidConfig, c.Solver.Tolerance)
	}
	if c.Solver.MaxIterations < 0 {
		return fmt.Errorf("%w: solver.max_iterations %d < 0", ErrInvalidConfig, c.Solver.MaxIterations)
	}
	if c.Embedding.Components < 1 {
		return fmt.Errorf("%w: embedding.components %d < 1", ErrInvalidConfig, c.Embedding.Components)
	}
	switch strings.ToLower(c.Embedding.Method) {
	case "spectral", "isomap":
	default:
		return fmt.Errorf("%w: embedding.method %q", ErrInvalidConfig, c.Embedding.Method)
	}
	if !validLaplacian(c.Geometry.LaplacianMethod) {
		return fmt.Errorf("%w: geometry.laplacian_method %q", ErrInvalidConfig, c.Geometry.LaplacianMethod)
	}

	return nil
}

func validLaplacian(name string) bool {
	name = strings.ToLower(name)
	if name == laplacian.MethodAuto {
		return true
	}
	for _, m := range laplacian.Methods() {
		if m == name {
			return true
		}
	}

	return false
}

// SolverKind returns the parsed solver name.
func (c *Config) SolverKind() eigen.Solver {
	s, _ := eigen.ParseSolver(c.Solver.Name)

	return s
}

// LoggingConfig converts the log section for logging.New.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Format = c.Log.Format
	lc.Level = c.Log.Level

	return lc
}

// GeometryOptions converts the geometry section into geometry options.
func (c *Config) GeometryOptions() []geometry.Option {
	g := c.Geometry

	return []geometry.Option{
		geometry.WithAdjacency(g.AdjacencyMethod, geometry.Params(g.AdjacencyParams)),
		geometry.WithAffinity(g.AffinityMethod, geometry.Params(g.AffinityParams)),
		geometry.WithLaplacian(g.LaplacianMethod, geometry.Params(g.LaplacianParams)),
	}
}
