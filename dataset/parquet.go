// SPDX-License-Identifier: MIT

package dataset

import (
	"errors"
	"io"

	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/metrics"
	"github.com/parquet-go/parquet-go"
)

// Record is one observation in Parquet form.
type Record struct {
	ID     int64     `parquet:"id"`
	Values []float64 `parquet:"values"`
}

// WriteParquet writes every row of m as a Record with ID equal to its index.
func WriteParquet(w io.Writer, m matrix.Matrix) error {
	d, err := matrix.ToDense(m)
	if err != nil {
		return datasetErrorf("WriteParquet", err)
	}
	pw := parquet.NewGenericWriter[Record](w, parquet.Compression(&parquet.Zstd))
	records := make([]Record, d.Rows())
	for i := range records {
		row, err := d.Row(i)
		if err != nil {
			_ = pw.Close()
			return datasetErrorf("WriteParquet", err)
		}
		records[i] = Record{ID: int64(i), Values: append([]float64(nil), row...)}
	}
	if _, err = pw.Write(records); err != nil {
		_ = pw.Close()
		return datasetErrorf("WriteParquet", err)
	}
	if err = pw.Close(); err != nil {
		return datasetErrorf("WriteParquet", err)
	}
	metrics.DatasetRowsTotal.WithLabelValues(FormatParquet, "write").Add(float64(len(records)))

	return nil
}

// ReadParquet reads Records and orders them by ID into an N×D matrix.
// IDs must be exactly 0..N-1.
func ReadParquet(r io.ReaderAt, size int64) (*matrix.Dense, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, datasetErrorf("ReadParquet", err)
	}
	pr := parquet.NewGenericReader[Record](pf)
	defer pr.Close()

	records := make([]Record, pr.NumRows())
	if _, err = pr.Read(records); err != nil && !errors.Is(err, io.EOF) {
		return nil, datasetErrorf("ReadParquet", err)
	}
	rows := make([][]float64, len(records))
	for _, rec := range records {
		if rec.ID < 0 || rec.ID >= int64(len(rows)) || rows[rec.ID] != nil {
			return nil, datasetErrorf("ReadParquet", errors.New("ids must be a permutation of 0..N-1"))
		}
		rows[rec.ID] = rec.Values
	}
	d, err := fromRows("ReadParquet", rows)
	if err != nil {
		return nil, err
	}
	metrics.DatasetRowsTotal.WithLabelValues(FormatParquet, "read").Add(float64(d.Rows()))

	return d, nil
}
