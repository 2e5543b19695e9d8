// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// Method names used in wrapped errors.
const (
	ctxAt     = "At"
	ctxSet    = "Set"
	ctxRow    = "Row"
	ctxCol    = "Col"
	ctxSetCol = "SetCol"
)

func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense stores an r×c matrix as one row-major slice; cell (i, j) lives at
// data[i*c+j]. Embeddings, affinity blocks and small Laplacians use it.
type Dense struct {
	r, c   int
	data   []float64
	finite bool // reject NaN and ±Inf on writes
}

var (
	_ Matrix       = (*Dense)(nil)
	_ Sparse       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense allocates a zero rows×cols matrix.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols), finite: DefaultValidateNaNInf}, nil
}

// NewDenseFrom takes ownership of data, which must hold rows*cols values in
// row-major order. Unless WithNoValidateNaNInf is passed every value must be finite.
func NewDenseFrom(rows, cols int, data []float64, opts ...Option) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if want := rows * cols; len(data) != want {
		return nil, fmt.Errorf("NewDenseFrom: got %d values for %dx%d: %w", len(data), rows, cols, ErrDimensionMismatch)
	}
	o := NewOptions(opts...)
	if o.ValidateNaNInf {
		if k := firstNonFinite(data); k >= 0 {
			return nil, denseErrorf("From", k/cols, k%cols, ErrNaNInf)
		}
	}

	return &Dense{r: rows, c: cols, data: data, finite: o.ValidateNaNInf}, nil
}

// NewDenseRows copies equal-length rows into a new matrix.
func NewDenseRows(rows [][]float64, opts ...Option) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	width := len(rows[0])
	buf := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("NewDenseRows: row %d is %d wide, first row %d: %w", i, len(row), width, ErrDimensionMismatch)
		}
		buf = append(buf, row...)
	}

	return NewDenseFrom(len(rows), width, buf, opts...)
}

// Identity returns I of order n.
func Identity(n int) (*Dense, error) {
	id, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for k := 0; k < len(id.data); k += n + 1 {
		id.data[k] = 1
	}

	return id, nil
}

// firstNonFinite returns the offset of the first NaN or ±Inf in xs, or -1.
func firstNonFinite(xs []float64) int {
	for k, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return k
		}
	}

	return -1
}

func (m *Dense) Rows() int { return m.r }

func (m *Dense) Cols() int { return m.c }

// Shape returns (Rows(), Cols()).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

func (m *Dense) inBounds(row, col int) bool {
	return row >= 0 && row < m.r && col >= 0 && col < m.c
}

// At reads cell (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	if !m.inBounds(row, col) {
		return 0, denseErrorf(ctxAt, row, col, ErrOutOfRange)
	}

	return m.data[row*m.c+col], nil
}

// Set writes cell (row, col). Non-finite values are rejected unless the
// matrix was built with WithNoValidateNaNInf.
func (m *Dense) Set(row, col int, v float64) error {
	if !m.inBounds(row, col) {
		return denseErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	if m.finite && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[row*m.c+col] = v

	return nil
}

// Clone copies the buffer; the copy keeps the numeric policy.
func (m *Dense) Clone() Matrix {
	return &Dense{r: m.r, c: m.c, data: append([]float64(nil), m.data...), finite: m.finite}
}

// NNZ is r*c: a dense matrix stores every cell.
func (m *Dense) NNZ() int { return len(m.data) }

// Do calls fn on each cell, row by row.
func (m *Dense) Do(fn func(i, j int, v float64)) {
	for k, v := range m.data {
		fn(k/m.c, k%m.c, v)
	}
}

// RawData returns the backing slice itself. Writes through it skip the
// finiteness check.
func (m *Dense) RawData() []float64 { return m.data }

// Row returns row i as a view into the backing slice.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}

	return m.data[i*m.c : (i+1)*m.c : (i+1)*m.c], nil
}

// Col copies column j out.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxCol, 0, j, ErrOutOfRange)
	}
	col := make([]float64, m.r)
	for i, k := 0, j; i < m.r; i, k = i+1, k+m.c {
		col[i] = m.data[k]
	}

	return col, nil
}

// SetCol replaces column j with v. Nothing is written if v fails the
// finiteness check.
func (m *Dense) SetCol(j int, v []float64) error {
	if j < 0 || j >= m.c {
		return denseErrorf(ctxSetCol, 0, j, ErrOutOfRange)
	}
	if len(v) != m.r {
		return denseErrorf(ctxSetCol, len(v), j, ErrDimensionMismatch)
	}
	if m.finite {
		if i := firstNonFinite(v); i >= 0 {
			return denseErrorf(ctxSetCol, i, j, ErrNaNInf)
		}
	}
	for i, k := 0, j; i < m.r; i, k = i+1, k+m.c {
		m.data[k] = v[i]
	}

	return nil
}

// String prints one bracketed row per line, for logs and test failures.
func (m *Dense) String() string {
	var b strings.Builder
	for i := 0; i < m.r; i++ {
		b.WriteByte('[')
		for j, v := range m.data[i*m.c : (i+1)*m.c] {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteString("]\n")
	}

	return b.String()
}
