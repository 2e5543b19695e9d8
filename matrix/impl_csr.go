// SPDX-License-Identifier: MIT

// Package matrix - CSR (compressed sparse row) storage.
//
// Purpose:
//   - Hold neighborhood graphs (adjacency, affinity, Laplacian) whose density
//     is O(k/N), with an explicit notion of "stored" vs "absent" entries.
//   - An explicit zero (e.g. the diagonal distance of an adjacency matrix) is
//     a stored entry; an absent entry means "no edge".
//
// Invariants:
//   - len(indptr) == rows+1, indptr[0] == 0, indptr non-decreasing,
//     indptr[rows] == len(indices) == len(data).
//   - Column indices within each row are strictly increasing.
//
// Complexity quicksheet:
//   - At: O(log nnz_row); Set (overwrite): O(log nnz_row); Set (insert): O(nnz).
//   - MulVec: O(nnz); Clone: O(nnz).

package matrix

import (
	"fmt"
	"math"
	"sort"
)

func csrErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("CSR.%s(%d,%d): %w", method, row, col, err)
}

// CSR is a compressed-sparse-row matrix.
type CSR struct {
	r, c    int
	indptr  []int
	indices []int
	data    []float64
}

var (
	_ Matrix = (*CSR)(nil)
	_ Sparse = (*CSR)(nil)
)

// NewCSR validates and adopts the three CSR arrays (no copy).
// MAIN DESCRIPTION:
//   - Construct a CSR from caller-built arrays; the caller hands over ownership.
//
// Errors:
//   - ErrInvalidDimensions for non-positive shape.
//   - ErrBadStructure when the arrays violate the CSR invariants.
//   - ErrOutOfRange for a column index outside [0, cols).
//   - ErrNaNInf for non-finite stored values.
//
// Complexity:
//   - Time O(rows + nnz), Space O(1).
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*CSR, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(indptr) != rows+1 || indptr[0] != 0 || len(indices) != len(data) || indptr[rows] != len(indices) {
		return nil, fmt.Errorf("NewCSR: array lengths: %w", ErrBadStructure)
	}
	var i, p int
	for i = 0; i < rows; i++ {
		if indptr[i+1] < indptr[i] {
			return nil, fmt.Errorf("NewCSR: indptr decreases at row %d: %w", i, ErrBadStructure)
		}
		for p = indptr[i]; p < indptr[i+1]; p++ {
			if indices[p] < 0 || indices[p] >= cols {
				return nil, csrErrorf("New", i, indices[p], ErrOutOfRange)
			}
			if p > indptr[i] && indices[p] <= indices[p-1] {
				return nil, fmt.Errorf("NewCSR: row %d columns not strictly increasing: %w", i, ErrBadStructure)
			}
			if math.IsNaN(data[p]) || math.IsInf(data[p], 0) {
				return nil, csrErrorf("New", i, indices[p], ErrNaNInf)
			}
		}
	}

	return &CSR{r: rows, c: cols, indptr: indptr, indices: indices, data: data}, nil
}

// NewCSRZero returns an empty rows×cols CSR (no stored entries).
func NewCSRZero(rows, cols int) (*CSR, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &CSR{r: rows, c: cols, indptr: make([]int, rows+1)}, nil
}

// NewCSRDiag returns an n×n CSR with diag stored on the diagonal (zeros included).
func NewCSRDiag(diag []float64) (*CSR, error) {
	n := len(diag)
	if n == 0 {
		return nil, ErrInvalidDimensions
	}
	indptr := make([]int, n+1)
	indices := make([]int, n)
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		indptr[i+1] = i + 1
		indices[i] = i
		data[i] = diag[i]
	}

	return NewCSR(n, n, indptr, indices, data)
}

// Rows returns the row count.
func (m *CSR) Rows() int { return m.r }

// Cols returns the column count.
func (m *CSR) Cols() int { return m.c }

// NNZ returns the number of stored entries (explicit zeros included).
func (m *CSR) NNZ() int { return len(m.data) }

// find locates (row,col) inside the row segment; ok reports presence and p is
// the storage offset or the insertion point.
func (m *CSR) find(row, col int) (p int, ok bool) {
	lo, hi := m.indptr[row], m.indptr[row+1]
	p = lo + sort.SearchInts(m.indices[lo:hi], col)

	return p, p < hi && m.indices[p] == col
}

// At returns the stored value or 0 for an absent entry.
func (m *CSR) At(row, col int) (float64, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, csrErrorf(ctxAt, row, col, ErrOutOfRange)
	}
	if p, ok := m.find(row, col); ok {
		return m.data[p], nil
	}

	return 0, nil
}

// Has reports whether (row,col) is a stored entry.
func (m *CSR) Has(row, col int) bool {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return false
	}
	_, ok := m.find(row, col)

	return ok
}

// Set stores v at (row,col), inserting a new entry if absent.
// Storing 0 keeps the entry (explicit zero); use Clone+rebuild to drop entries.
func (m *CSR) Set(row, col int, v float64) error {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return csrErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return csrErrorf(ctxSet, row, col, ErrNaNInf)
	}
	p, ok := m.find(row, col)
	if ok {
		m.data[p] = v

		return nil
	}
	m.indices = append(m.indices, 0)
	copy(m.indices[p+1:], m.indices[p:])
	m.indices[p] = col
	m.data = append(m.data, 0)
	copy(m.data[p+1:], m.data[p:])
	m.data[p] = v
	for i := row + 1; i <= m.r; i++ {
		m.indptr[i]++
	}

	return nil
}

// Clone returns a deep copy.
func (m *CSR) Clone() Matrix { return m.CloneCSR() }

// CloneCSR is Clone with the concrete return type.
func (m *CSR) CloneCSR() *CSR {
	return &CSR{
		r:       m.r,
		c:       m.c,
		indptr:  append([]int(nil), m.indptr...),
		indices: append([]int(nil), m.indices...),
		data:    append([]float64(nil), m.data...),
	}
}

// Do visits stored entries in row-major order.
func (m *CSR) Do(fn func(i, j int, v float64)) {
	var i, p int
	for i = 0; i < m.r; i++ {
		for p = m.indptr[i]; p < m.indptr[i+1]; p++ {
			fn(i, m.indices[p], m.data[p])
		}
	}
}

// RowView returns live slices over the stored columns and values of row i.
// Callers may modify values in place but must not append.
func (m *CSR) RowView(i int) (cols []int, vals []float64) {
	lo, hi := m.indptr[i], m.indptr[i+1]

	return m.indices[lo:hi], m.data[lo:hi]
}

// Raw exposes the three CSR arrays (no copy).
func (m *CSR) Raw() (indptr, indices []int, data []float64) {
	return m.indptr, m.indices, m.data
}

// Diagonal returns the n-vector of A[i,i] for i < min(rows, cols).
func (m *CSR) Diagonal() []float64 {
	n := m.r
	if m.c < n {
		n = m.c
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if p, ok := m.find(i, i); ok {
			out[i] = m.data[p]
		}
	}

	return out
}

// RowSums returns Σ_j A[i,j] for each row.
func (m *CSR) RowSums() []float64 {
	out := make([]float64, m.r)
	var i, p int
	for i = 0; i < m.r; i++ {
		for p = m.indptr[i]; p < m.indptr[i+1]; p++ {
			out[i] += m.data[p]
		}
	}

	return out
}

// MulVecTo computes dst = A·x. len(x) must equal Cols(), len(dst) Rows().
// Complexity: O(nnz).
func (m *CSR) MulVecTo(dst, x []float64) error {
	if len(x) != m.c || len(dst) != m.r {
		return fmt.Errorf("CSR.MulVecTo: %w", ErrDimensionMismatch)
	}
	var i, p int
	var s float64
	for i = 0; i < m.r; i++ {
		s = 0
		for p = m.indptr[i]; p < m.indptr[i+1]; p++ {
			s += m.data[p] * x[m.indices[p]]
		}
		dst[i] = s
	}

	return nil
}

// ScaleRows multiplies row i by s[i] in place.
func (m *CSR) ScaleRows(s []float64) error {
	if len(s) != m.r {
		return fmt.Errorf("CSR.ScaleRows: %w", ErrDimensionMismatch)
	}
	var i, p int
	for i = 0; i < m.r; i++ {
		for p = m.indptr[i]; p < m.indptr[i+1]; p++ {
			m.data[p] *= s[i]
		}
	}

	return nil
}

// ScaleCols multiplies column j by s[j] in place.
func (m *CSR) ScaleCols(s []float64) error {
	if len(s) != m.c {
		return fmt.Errorf("CSR.ScaleCols: %w", ErrDimensionMismatch)
	}
	for p, j := range m.indices {
		m.data[p] *= s[j]
	}

	return nil
}

// Apply replaces every stored value v at (i,j) with fn(i,j,v).
// The sparsity pattern is unchanged.
func (m *CSR) Apply(fn func(i, j int, v float64) float64) {
	var i, p int
	for i = 0; i < m.r; i++ {
		for p = m.indptr[i]; p < m.indptr[i+1]; p++ {
			m.data[p] = fn(i, m.indices[p], m.data[p])
		}
	}
}
