// SPDX-License-Identifier: MIT

// Package matrix - COO (coordinate / triplet) storage.
// COO is the assembly format: append triplets in any order, then convert
// with ToCSR. Duplicate coordinates are summed on conversion and on At.

package matrix

import (
	"fmt"
	"math"
	"sort"
)

// COO is a triplet sparse matrix.
type COO struct {
	r, c int
	ri   []int
	ci   []int
	vals []float64
}

var (
	_ Matrix = (*COO)(nil)
	_ Sparse = (*COO)(nil)
)

// NewCOO returns an empty rows×cols COO.
func NewCOO(rows, cols int) (*COO, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &COO{r: rows, c: cols}, nil
}

// Rows returns the row count.
func (m *COO) Rows() int { return m.r }

// Cols returns the column count.
func (m *COO) Cols() int { return m.c }

// NNZ returns the number of stored triplets (duplicates counted separately).
func (m *COO) NNZ() int { return len(m.vals) }

// Append adds the triplet (i, j, v) without merging duplicates.
func (m *COO) Append(i, j int, v float64) error {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return fmt.Errorf("COO.Append(%d,%d): %w", i, j, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("COO.Append(%d,%d): %w", i, j, ErrNaNInf)
	}
	m.ri = append(m.ri, i)
	m.ci = append(m.ci, j)
	m.vals = append(m.vals, v)

	return nil
}

// At sums every triplet stored at (i, j). Complexity: O(nnz).
func (m *COO) At(i, j int) (float64, error) {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return 0, fmt.Errorf("COO.At(%d,%d): %w", i, j, ErrOutOfRange)
	}
	var s float64
	for k := range m.vals {
		if m.ri[k] == i && m.ci[k] == j {
			s += m.vals[k]
		}
	}

	return s, nil
}

// Set drops every triplet at (i, j) and appends (i, j, v).
func (m *COO) Set(i, j int, v float64) error {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return fmt.Errorf("COO.Set(%d,%d): %w", i, j, ErrOutOfRange)
	}
	w := 0
	for k := range m.vals {
		if m.ri[k] == i && m.ci[k] == j {
			continue
		}
		m.ri[w], m.ci[w], m.vals[w] = m.ri[k], m.ci[k], m.vals[k]
		w++
	}
	m.ri, m.ci, m.vals = m.ri[:w], m.ci[:w], m.vals[:w]

	return m.Append(i, j, v)
}

// Clone returns a deep copy.
func (m *COO) Clone() Matrix {
	return &COO{
		r:    m.r,
		c:    m.c,
		ri:   append([]int(nil), m.ri...),
		ci:   append([]int(nil), m.ci...),
		vals: append([]float64(nil), m.vals...),
	}
}

// Do visits triplets in insertion order (duplicates visited separately).
func (m *COO) Do(fn func(i, j int, v float64)) {
	for k := range m.vals {
		fn(m.ri[k], m.ci[k], m.vals[k])
	}
}

// ToCSR converts to CSR, summing duplicates. Explicit zeros are kept.
// Complexity: O(nnz log nnz).
func (m *COO) ToCSR() *CSR {
	order := make([]int, len(m.vals))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if m.ri[ka] != m.ri[kb] {
			return m.ri[ka] < m.ri[kb]
		}

		return m.ci[ka] < m.ci[kb]
	})

	indptr := make([]int, m.r+1)
	indices := make([]int, 0, len(order))
	data := make([]float64, 0, len(order))
	lastR, lastC := -1, -1
	for _, k := range order {
		if m.ri[k] == lastR && m.ci[k] == lastC {
			data[len(data)-1] += m.vals[k]
			continue
		}
		lastR, lastC = m.ri[k], m.ci[k]
		indices = append(indices, lastC)
		data = append(data, m.vals[k])
		indptr[lastR+1]++
	}
	for i := 0; i < m.r; i++ {
		indptr[i+1] += indptr[i]
	}

	return &CSR{r: m.r, c: m.c, indptr: indptr, indices: indices, data: data}
}
