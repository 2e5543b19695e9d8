// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/chanhou/megaman/dataset"
	"github.com/chanhou/megaman/matrix"
	"github.com/spf13/cobra"
)

var (
	genOutput string
	genPoints int
	genNoise  float64
	genSeed   uint64
	genNX     int
	genNY     int
	genStep   float64
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output file (.csv or .parquet); stdout CSV when empty")
	generateCmd.Flags().IntVarP(&genPoints, "points", "n", 1000, "swissroll: number of points")
	generateCmd.Flags().Float64Var(&genNoise, "noise", 0, "swissroll: gaussian noise")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 1, "swissroll: random seed")
	generateCmd.Flags().IntVar(&genNX, "nx", 10, "grid: points along x")
	generateCmd.Flags().IntVar(&genNY, "ny", 10, "grid: points along y")
	generateCmd.Flags().Float64Var(&genStep, "step", 1, "grid: spacing")
}

// generateCmd writes synthetic point sets
var generateCmd = &cobra.Command{
	Use:   "generate {swissroll|grid}",
	Short: "Write a synthetic point set",
	Long: `Write a synthetic point set for experiments.

Examples:
  # 2000-point swiss roll as Parquet
  megaman generate swissroll -n 2000 --noise 0.05 -o roll.parquet

  # 20x5 unit grid as CSV on stdout
  megaman generate grid --nx 20 --ny 5`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"swissroll", "grid"},
	RunE:      runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var (
		x   *matrix.Dense
		err error
	)
	switch args[0] {
	case "swissroll":
		x, _, err = dataset.SwissRoll(genPoints, genNoise, genSeed)
	case "grid":
		x, err = dataset.Grid(genNX, genNY, genStep)
	default:
		return fmt.Errorf("unknown generator %q (want swissroll or grid)", args[0])
	}
	if err != nil {
		return err
	}

	return write(cmd, genOutput, x)
}
