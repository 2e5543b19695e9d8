// SPDX-License-Identifier: MIT

// Package dataset reads and writes point sets (one observation per row) and
// generates synthetic manifolds for demos and tests.
//
// Formats:
//   - CSV: one row per observation, numeric fields, optional header line;
//   - Parquet: rows {id int64, values []float64}, zstd compressed.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chanhou/megaman/matrix"
)

// Format names.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

var (
	// ErrEmpty indicates a source with no observations.
	ErrEmpty = errors.New("dataset: no rows")
	// ErrRagged indicates rows of different lengths.
	ErrRagged = errors.New("dataset: rows have different lengths")
	// ErrUnknownFormat indicates a path whose extension is not .csv or .parquet.
	ErrUnknownFormat = errors.New("dataset: unknown file format")
)

func datasetErrorf(op string, err error) error {
	return fmt.Errorf("dataset.%s: %w", op, err)
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	}

	return "", fmt.Errorf("%q: %w", path, ErrUnknownFormat)
}

// Load reads the file at path, choosing the format from its extension.
// CSV files are read with a header when header is true.
func Load(path string, header bool) (*matrix.Dense, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, datasetErrorf("Load", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, datasetErrorf("Load", err)
	}
	defer f.Close()

	if format == FormatCSV {
		return ReadCSV(f, CSVOptions{Header: header})
	}
	st, err := f.Stat()
	if err != nil {
		return nil, datasetErrorf("Load", err)
	}

	return ReadParquet(f, st.Size())
}

// Save writes m to path in the format implied by its extension.
func Save(path string, m matrix.Matrix) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return datasetErrorf("Save", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return datasetErrorf("Save", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = datasetErrorf("Save", cerr)
		}
	}()

	if format == FormatCSV {
		return WriteCSV(f, m, nil)
	}

	return WriteParquet(f, m)
}

// fromRows builds a Dense from equally long rows.
func fromRows(op string, rows [][]float64) (*matrix.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, datasetErrorf(op, ErrEmpty)
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return nil, datasetErrorf(op, fmt.Errorf("row %d has %d values, want %d: %w", i, len(r), width, ErrRagged))
		}
	}
	d, err := matrix.NewDenseRows(rows)
	if err != nil {
		return nil, datasetErrorf(op, err)
	}

	return d, nil
}
