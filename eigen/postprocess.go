// SPDX-License-Identifier: MIT

package eigen

import (
	"math"
	"sort"

	"github.com/chanhou/megaman/matrix"
	"gonum.org/v1/gonum/floats"
)

// ascendingOrder returns the permutation sorting values ascending (stable),
// reversed when largest is set.
func ascendingOrder(values []float64, largest bool) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	if largest {
		for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	return idx
}

// magnitudeOrder returns the permutation sorting values by |λ| ascending (stable).
func magnitudeOrder(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return math.Abs(values[idx[a]]) < math.Abs(values[idx[b]]) })

	return idx
}

// normalizeVector scales v to unit norm and flips it so that its
// largest-magnitude component is positive.
func normalizeVector(v []float64) {
	if norm := floats.Norm(v, 2); norm > 0 {
		floats.Scale(1/norm, v)
	}
	best, at := 0.0, 0
	for i, x := range v {
		if a := math.Abs(x); a > best {
			best, at = a, i
		}
	}
	if len(v) > 0 && v[at] < 0 {
		floats.Scale(-1, v)
	}
}

// assemble orders (values, vecs) per largest, keeps the first k and packs
// the vectors as columns of a Dense.
func assemble(values []float64, vecs [][]float64, k int, largest bool) (Pairs, error) {
	order := ascendingOrder(values, largest)
	if k > len(order) {
		k = len(order)
	}

	return pack(values, vecs, order[:k])
}

// pack copies the selected pairs in the given order into a Pairs value.
func pack(values []float64, vecs [][]float64, sel []int) (Pairs, error) {
	if len(sel) == 0 {
		return Pairs{}, ErrInvalidCount
	}
	n := len(vecs[sel[0]])
	out, err := matrix.NewDense(n, len(sel))
	if err != nil {
		return Pairs{}, err
	}
	vals := make([]float64, len(sel))
	col := make([]float64, n)
	for j, s := range sel {
		vals[j] = values[s]
		copy(col, vecs[s])
		normalizeVector(col)
		if err = out.SetCol(j, col); err != nil {
			return Pairs{}, err
		}
	}

	return Pairs{Values: vals, Vectors: out}, nil
}

// columns splits a Pairs' Vectors back into column slices.
func columns(p Pairs) [][]float64 {
	out := make([][]float64, p.Vectors.Cols())
	for j := range out {
		out[j], _ = p.Vectors.Col(j)
	}

	return out
}
