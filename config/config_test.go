package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chanhou/megaman/config"
	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/geometry"
	"github.com/stretchr/testify/require"
)

const sample = `
log:
  format: json
  level: debug
geometry:
  adjacency_method: brute
  adjacency_params:
    n_neighbors: 8
  affinity_params:
    radius: 0.5
  laplacian_method: renormalized
  laplacian_params:
    renormalization_exponent: 0.5
solver:
  name: lobpcg
  seed: 42
embedding:
  components: 3
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "megaman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "brute", cfg.Geometry.AdjacencyMethod)
	require.Equal(t, geometry.DefaultAffinityMethod, cfg.Geometry.AffinityMethod)
	require.EqualValues(t, 8, cfg.Geometry.AdjacencyParams["n_neighbors"])
	require.Equal(t, 0.5, cfg.Geometry.AffinityParams["radius"])
	require.Equal(t, eigen.LOBPCG, cfg.SolverKind())
	require.Equal(t, uint64(42), cfg.Solver.Seed)
	require.Equal(t, 3, cfg.Embedding.Components)
	require.Len(t, cfg.GeometryOptions(), 3)
	require.Equal(t, "debug", cfg.LoggingConfig().Level)
}

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
	require.Equal(t, eigen.Auto, cfg.SolverKind())
	require.Equal(t, config.DefaultComponents, cfg.Embedding.Components)
	require.Equal(t, config.DefaultEmbedding, cfg.Embedding.Method)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("MEGAMAN_SOLVER_NAME", "dense")
	t.Setenv("MEGAMAN_EMBEDDING_COMPONENTS", "4")
	t.Setenv("MEGAMAN_METRICS_ADDR", ":9100")

	cfg, err := config.LoadBytes([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, eigen.Dense, cfg.SolverKind())
	require.Equal(t, 4, cfg.Embedding.Components)
	require.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestValidation(t *testing.T) {
	for name, doc := range map[string]string{
		"solver":     "solver:\n  name: magic\n",
		"level":      "log:\n  level: loud\n",
		"format":     "log:\n  format: xml\n",
		"laplacian":  "geometry:\n  laplacian_method: spectral\n",
		"components": "embedding:\n  components: -1\n",
		"tolerance":  "solver:\n  tolerance: -1\n",
		"method":     "embedding:\n  method: lle\n",
	} {
		_, err := config.LoadBytes([]byte(doc))
		require.ErrorIs(t, err, config.ErrInvalidConfig, name)
	}

	_, err := config.LoadBytes([]byte("log: [unclosed"))
	require.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
