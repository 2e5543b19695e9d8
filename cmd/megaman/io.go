// SPDX-License-Identifier: MIT

package main

import (
	"errors"

	"github.com/chanhou/megaman/dataset"
	"github.com/chanhou/megaman/matrix"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// inputFlags selects where the point set comes from.
type inputFlags struct {
	path      string
	header    bool
	swissRoll int
	noise     float64
	seed      uint64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "input", "i", "", "input point set (.csv or .parquet)")
	cmd.Flags().BoolVar(&f.header, "header", false, "CSV input starts with a header line")
	cmd.Flags().IntVar(&f.swissRoll, "swissroll", 0, "use a generated swiss roll with this many points instead of --input")
	cmd.Flags().Float64Var(&f.noise, "noise", 0, "gaussian noise of the generated swiss roll")
	cmd.Flags().Uint64Var(&f.seed, "data-seed", 1, "seed of the generated swiss roll")
}

// load returns the point set selected by the flags.
func (f *inputFlags) load() (*matrix.Dense, error) {
	switch {
	case f.swissRoll > 0 && f.path != "":
		return nil, errors.New("--input and --swissroll are mutually exclusive")
	case f.swissRoll > 0:
		x, _, err := dataset.SwissRoll(f.swissRoll, f.noise, f.seed)
		return x, err
	case f.path != "":
		return dataset.Load(f.path, f.header)
	}

	return nil, errors.New("one of --input or --swissroll is required")
}

// write saves m to path, or prints it as CSV on stdout when path is empty.
func write(cmd *cobra.Command, path string, m matrix.Matrix) error {
	if path == "" {
		return dataset.WriteCSV(cmd.OutOrStdout(), m, nil)
	}

	return dataset.Save(path, m)
}

// zapStderr routes log output through the command's error stream.
func zapStderr(cmd *cobra.Command) zapcore.WriteSyncer {
	return zapcore.AddSync(cmd.ErrOrStderr())
}
