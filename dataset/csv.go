// SPDX-License-Identifier: MIT

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/metrics"
)

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Header skips the first record.
	Header bool
	// Comma is the field separator; 0 means ','.
	Comma rune
}

// ReadCSV parses numeric records into an N×D matrix. Blank fields and
// lines starting with '#' are rejected and skipped respectively.
func ReadCSV(r io.Reader, opts CSVOptions) (*matrix.Dense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	var rows [][]float64
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, datasetErrorf("ReadCSV", err)
		}
		line++
		if line == 1 && opts.Header {
			continue
		}
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, datasetErrorf("ReadCSV", fmt.Errorf("record %d field %d: %w", line, j, err))
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	d, err := fromRows("ReadCSV", rows)
	if err != nil {
		return nil, err
	}
	metrics.DatasetRowsTotal.WithLabelValues(FormatCSV, "read").Add(float64(d.Rows()))

	return d, nil
}

// WriteCSV writes m row by row, preceded by header when it is non-empty.
func WriteCSV(w io.Writer, m matrix.Matrix, header []string) error {
	d, err := matrix.ToDense(m)
	if err != nil {
		return datasetErrorf("WriteCSV", err)
	}
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err = cw.Write(header); err != nil {
			return datasetErrorf("WriteCSV", err)
		}
	}
	rec := make([]string, d.Cols())
	for i := 0; i < d.Rows(); i++ {
		row, err := d.Row(i)
		if err != nil {
			return datasetErrorf("WriteCSV", err)
		}
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err = cw.Write(rec); err != nil {
			return datasetErrorf("WriteCSV", err)
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return datasetErrorf("WriteCSV", err)
	}
	metrics.DatasetRowsTotal.WithLabelValues(FormatCSV, "write").Add(float64(d.Rows()))

	return nil
}
