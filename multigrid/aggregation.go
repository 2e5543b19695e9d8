// SPDX-License-Identifier: MIT

package multigrid

import (
	"math"

	"github.com/chanhou/megaman/matrix"
	"gonum.org/v1/gonum/floats"
)

// strength returns, for every row, the columns strongly connected to it:
// j ≠ i, a_ij ≠ 0 and |a_ij| ≥ θ·sqrt(|a_ii·a_jj|).
func strength(a *matrix.CSR, theta float64) [][]int {
	n := a.Rows()
	diag := a.Diagonal()
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		cols, vals := a.RowView(i)
		for p, j := range cols {
			if j == i || vals[p] == 0 {
				continue
			}
			if math.Abs(vals[p]) >= theta*math.Sqrt(math.Abs(diag[i]*diag[j])) {
				out[i] = append(out[i], j)
			}
		}
	}

	return out
}

// aggregate partitions the nodes with the standard three-pass greedy scheme.
// It returns the aggregate id per node and the number of aggregates.
func aggregate(strong [][]int) ([]int, int) {
	n := len(strong)
	agg := make([]int, n)
	for i := range agg {
		agg[i] = -1
	}
	count := 0

	// Pass 1: seed aggregates from nodes whose whole neighborhood is free.
	for i := 0; i < n; i++ {
		if agg[i] >= 0 {
			continue
		}
		free := true
		for _, j := range strong[i] {
			if agg[j] >= 0 {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		agg[i] = count
		for _, j := range strong[i] {
			agg[j] = count
		}
		count++
	}

	// Pass 2: attach leftovers to a neighboring aggregate from pass 1.
	seeded := append([]int(nil), agg...)
	for i := 0; i < n; i++ {
		if agg[i] >= 0 {
			continue
		}
		for _, j := range strong[i] {
			if seeded[j] >= 0 {
				agg[i] = seeded[j]
				break
			}
		}
	}

	// Pass 3: group whatever remains with its free neighbors.
	for i := 0; i < n; i++ {
		if agg[i] >= 0 {
			continue
		}
		agg[i] = count
		for _, j := range strong[i] {
			if agg[j] < 0 {
				agg[j] = count
			}
		}
		count++
	}

	return agg, count
}

// tentative builds T with T[i, agg[i]] = 1/sqrt(|aggregate|).
func tentative(agg []int, nAgg int) *matrix.CSR {
	size := make([]int, nAgg)
	for _, g := range agg {
		size[g]++
	}
	n := len(agg)
	indptr := make([]int, n+1)
	indices := make([]int, n)
	data := make([]float64, n)
	for i, g := range agg {
		indptr[i+1] = i + 1
		indices[i] = g
		data[i] = 1 / math.Sqrt(float64(size[g]))
	}
	t, _ := matrix.NewCSR(n, nAgg, indptr, indices, data)

	return t
}

// inverseDiagonal returns 1/a_ii, or 0 where the diagonal vanishes.
func inverseDiagonal(a *matrix.CSR) []float64 {
	d := a.Diagonal()
	for i, v := range d {
		if v != 0 {
			d[i] = 1 / v
		}
	}

	return d
}

// smoothedProlongator returns P = T − ω·D⁻¹·A·T with ω = (4/3)/ρ(D⁻¹A).
func smoothedProlongator(a *matrix.CSR, invDiag []float64, t *matrix.CSR) (*matrix.CSR, error) {
	rho := spectralRadius(a, invDiag)
	if rho == 0 {
		return t, nil
	}
	omega := (4.0 / 3.0) / rho
	at, err := matrix.Mul(a, t)
	if err != nil {
		return nil, err
	}
	scale := make([]float64, len(invDiag))
	for i, v := range invDiag {
		scale[i] = omega * v
	}
	if err = at.ScaleRows(scale); err != nil {
		return nil, err
	}

	return matrix.AddScaled(1, t, -1, at)
}

// spectralRadius estimates ρ(D⁻¹A) by power iteration from a fixed start.
func spectralRadius(a *matrix.CSR, invDiag []float64) float64 {
	n := a.Rows()
	v := make([]float64, n)
	for i := range v {
		v[i] = 1 + float64(i%7)/7
	}
	floats.Scale(1/floats.Norm(v, 2), v)
	w := make([]float64, n)
	rho := 0.0
	for it := 0; it < powerIterations; it++ {
		_ = a.MulVecTo(w, v)
		floats.Mul(w, invDiag)
		norm := floats.Norm(w, 2)
		if norm == 0 {
			return 0
		}
		rho = norm
		floats.ScaleTo(v, 1/norm, w)
	}

	return rho
}
