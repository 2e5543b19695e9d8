// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/chanhou/megaman/bfs"
	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/geometry"
	"github.com/chanhou/megaman/matrix"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	nullInput  inputFlags
	nullOutput string
	nullK      int
	nullKSkip  int
	nullSolver string
)

func init() {
	rootCmd.AddCommand(nullspaceCmd)
	nullInput.register(nullspaceCmd)
	nullspaceCmd.Flags().StringVarP(&nullOutput, "output", "o", "", "output file for the vectors; stdout CSV when empty")
	nullspaceCmd.Flags().IntVarP(&nullK, "k", "k", 2, "number of vectors")
	nullspaceCmd.Flags().IntVar(&nullKSkip, "k-skip", 1, "number of lowest pairs skipped")
	nullspaceCmd.Flags().StringVar(&nullSolver, "solver", eigen.Arpack.String(), "eigen solver")
}

// nullspaceCmd extracts near-null vectors of the graph Laplacian
var nullspaceCmd = &cobra.Command{
	Use:   "nullspace",
	Short: "Compute the approximate null space of the graph Laplacian",
	Long: `Compute the eigenvectors of the symmetric graph Laplacian with the
smallest-magnitude eigenvalues, skipping the lowest --k-skip of them. The
reconstruction error (sum of the returned eigenvalues) and the number of
connected components of the graph are logged.

Examples:
  # Two vectors past the trivial one, dense solver
  megaman nullspace --swissroll 500 --solver dense

  # Keep the trivial vector
  megaman nullspace --input points.csv --k 3 --k-skip 0 -o null.csv`,
	Args: cobra.NoArgs,
	RunE: runNullspace,
}

func runNullspace(cmd *cobra.Command, _ []string) error {
	a := current
	x, err := nullInput.load()
	if err != nil {
		return err
	}
	solver, err := eigen.ParseSolver(nullSolver)
	if err != nil {
		return err
	}

	g := geometry.New(append(a.cfg.GeometryOptions(), geometry.WithLogger(a.logger))...)
	if err = g.SetData(x); err != nil {
		return err
	}
	lap, err := g.ComputeLaplacian(nil, false, true)
	if err != nil {
		return err
	}
	m, err := positiveForm(lap.Symmetric)
	if err != nil {
		return err
	}
	_, components, err := bfs.Components(m)
	if err != nil {
		return err
	}

	res, err := a.engine.NullSpace(m, nullK, eigen.NullSpaceOptions{
		KSkip:         nullKSkip,
		Solver:        solver,
		Tolerance:     a.cfg.Solver.Tolerance,
		MaxIterations: a.cfg.Solver.MaxIterations,
		Seed:          a.cfg.Solver.Seed,
	})
	if err != nil {
		return err
	}
	if res.Vectors == nil {
		return fmt.Errorf("no null-space vectors left after skipping %d of %d", nullKSkip, nullK)
	}
	a.logger.Info("null space computed",
		zap.Int("points", x.Rows()),
		zap.Int("vectors", res.Vectors.Cols()),
		zap.Int("graph_components", components),
		zap.Float64("error", res.Error))

	return write(cmd, nullOutput, res.Vectors)
}

// positiveForm returns −S, the positive semi-definite symmetric Laplacian.
func positiveForm(s matrix.Matrix) (*matrix.CSR, error) {
	csr, err := matrix.ToCSR(s, matrix.WithKeepZeros())
	if err != nil {
		return nil, err
	}
	out := csr.CloneCSR()
	out.Apply(func(_, _ int, v float64) float64 { return -v })

	return out, nil
}
