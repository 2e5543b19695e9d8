// SPDX-License-Identifier: MIT

// Package matrix: public interfaces and layout tags.
// Errors and options live in dedicated files (errors.go, options.go).
package matrix

// Matrix represents a two-dimensional mutable array of float64 values.
//
// Concrete layouts are Dense (row-major), CSR (compressed sparse rows) and
// COO (triplets). Sparse layouts distinguish a stored entry whose value is 0
// from an absent entry; At reports 0 for both.
//
// Complexity notes: Dense is O(1) for At/Set; CSR is O(log nnz_row) for At
// and O(nnz) for a Set that inserts a new entry.
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	// The returned Matrix is independent of the original.
	Clone() Matrix
}

// Sparse is implemented by layouts that track which entries are stored.
// Do visits every stored entry (explicit zeros included) in a deterministic
// order; visiting a Dense matrix visits all r*c cells.
type Sparse interface {
	Matrix

	// NNZ returns the number of stored entries.
	NNZ() int

	// Do calls fn for every stored entry.
	Do(fn func(i, j int, v float64))
}

// Layout tags the storage scheme of a Matrix.
type Layout int

const (
	// LayoutUnknown is any Matrix implementation outside this package.
	LayoutUnknown Layout = iota
	// LayoutDense is the row-major *Dense.
	LayoutDense
	// LayoutCSR is the compressed-sparse-row *CSR.
	LayoutCSR
	// LayoutCOO is the triplet *COO.
	LayoutCOO
)

// String returns the short lowercase layout name.
func (l Layout) String() string {
	switch l {
	case LayoutDense:
		return "dense"
	case LayoutCSR:
		return "csr"
	case LayoutCOO:
		return "coo"
	default:
		return "unknown"
	}
}

// LayoutOf reports the storage layout of m.
// Complexity: O(1).
func LayoutOf(m Matrix) Layout {
	switch m.(type) {
	case *Dense:
		return LayoutDense
	case *CSR:
		return LayoutCSR
	case *COO:
		return LayoutCOO
	default:
		return LayoutUnknown
	}
}
