// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors for solver and pipeline
// activity. Collectors register on the default registry at init; the CLI
// exposes them with --metrics-addr.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SolverRunsTotal counts eigen solver invocations by resolved solver,
	// operation (decompose/nullspace) and outcome (ok/error).
	SolverRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megaman_solver_runs_total",
		Help: "Total number of eigen solver runs",
	}, []string{"solver", "operation", "outcome"})

	// SolverDurationSeconds observes wall time per solver run.
	SolverDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "megaman_solver_duration_seconds",
		Help:    "Time spent in eigen solver runs",
		Buckets: []float64{1e-4, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"solver", "operation"})

	// SolverIterations observes restart/iteration counts of iterative solvers.
	SolverIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "megaman_solver_iterations",
		Help:    "Iterations used by iterative eigen solvers",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"solver"})

	// SolverDowngradesTotal counts automatic solver substitutions.
	SolverDowngradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megaman_solver_downgrades_total",
		Help: "Total number of solver substitutions (from -> to)",
	}, []string{"from", "to"})

	// NullSpaceRetriesTotal counts positive-definiteness shift retries.
	NullSpaceRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megaman_nullspace_retries_total",
		Help: "Total number of null space retries with a larger diagonal shift",
	}, []string{"solver"})

	// GeometryComputationsTotal counts collaborator invocations per stage.
	GeometryComputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megaman_geometry_computations_total",
		Help: "Total number of adjacency/affinity/laplacian computations",
	}, []string{"stage", "method"})

	// GeometryCacheHitsTotal counts Compute* calls served from the cache.
	GeometryCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megaman_geometry_cache_hits_total",
		Help: "Total number of geometry requests answered from cache",
	}, []string{"stage"})

	// DatasetRowsTotal counts rows read or written by the dataset package.
	DatasetRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megaman_dataset_rows_total",
		Help: "Total number of dataset rows read or written",
	}, []string{"format", "direction"})
)
