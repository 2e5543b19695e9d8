// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chanhou/megaman/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dependentColumnTol: a column whose norm drops below this fraction of its
// pre-orthogonalization norm is discarded from the search basis.
const dependentColumnTol = 1e-6

// lobpcgSolver is the "lobpcg" strategy; with a backend it is "amg".
type lobpcgSolver struct {
	backend MultigridBackend
}

// blockSize returns min(N, 5+2k).
func blockSize(n, k int) int {
	if b := 5 + 2*k; b < n {
		return b
	}

	return n
}

func (s lobpcgSolver) solve(p *problem, k int, largest bool) (Pairs, error) {
	if !p.symmetric {
		return Pairs{}, eigenErrorf(opLOBPCG, ErrSymmetryRequired)
	}
	n := p.op.n
	bs := blockSize(n, k)

	x := make([][]float64, bs)
	for j := range x {
		x[j] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < bs; j++ {
			x[j][i] = p.rng.Float64()
		}
	}

	var pre Preconditioner
	if s.backend != nil {
		csr, err := matrix.ToCSR(p.m)
		if err != nil {
			return Pairs{}, eigenErrorf(opLOBPCG, err)
		}
		copy(x[0], csr.Diagonal())
		if pre, err = s.backend.Preconditioner(csr); err != nil {
			return Pairs{}, eigenErrorf(opLOBPCG, fmt.Errorf("multigrid setup: %v: %w", err, ErrBreakdown))
		}
	}

	tol := p.tolerance(math.Sqrt(1e-15) * float64(n))
	values, vecs, iters, err := lobpcg(p.op, x, pre, k, largest, tol, p.iterationLimit(DefaultLOBPCGIterations), p.rng)
	p.iterations = iters
	if err != nil {
		return Pairs{}, err
	}

	return assemble(values, vecs, k, largest)
}

// lobpcg iterates the block x toward the len(x) extreme eigenpairs of the
// symmetric op (smallest, or largest when largest is set). It stops when the
// first k Ritz pairs have residual norms ≤ tol.
func lobpcg(op *operator, x [][]float64, pre Preconditioner, k int, largest bool, tol float64, maxIter int, rng *rand.Rand) ([]float64, [][]float64, int, error) {
	a := op
	if largest {
		a = op.negated()
	}
	n := op.n
	x = orthonormalBlock(x, rng, n)
	m := len(x)
	ax := applyBlock(a, x)
	theta, x, ax, _, err := rayleighRitz(x, ax, m)
	if err != nil {
		return nil, nil, 0, err
	}

	var pdir [][]float64
	r := make([]float64, n)
	for iter := 1; iter <= maxIter; iter++ {
		var w [][]float64
		done := true
		for j := 0; j < m; j++ {
			copy(r, ax[j])
			floats.AddScaled(r, -theta[j], x[j])
			norm := floats.Norm(r, 2)
			if norm <= tol {
				continue
			}
			if j < k {
				done = false
			}
			wj := make([]float64, n)
			if pre != nil {
				pre.Apply(wj, r)
			} else {
				copy(wj, r)
			}
			w = append(w, wj)
		}
		if done {
			if largest {
				floats.Scale(-1, theta)
			}
			return theta, x, iter, nil
		}

		basis := append([][]float64(nil), x...)
		abasis := append([][]float64(nil), ax...)
		for _, cand := range append(w, pdir...) {
			before := floats.Norm(cand, 2)
			if before == 0 || math.IsNaN(before) {
				continue
			}
			after := orthogonalizeAgainst(cand, basis, nil)
			if after < dependentColumnTol*before {
				continue
			}
			floats.Scale(1/after, cand)
			basis = append(basis, cand)
			acand := make([]float64, n)
			a.apply(acand, cand)
			abasis = append(abasis, acand)
		}

		theta, x, ax, pdir, err = rayleighRitz(basis, abasis, m)
		if err != nil {
			return nil, nil, iter, err
		}
	}

	return nil, nil, maxIter, eigenErrorf(opLOBPCG, fmt.Errorf("%d iterations: %w", maxIter, ErrNotConverged))
}

// rayleighRitz solves the projected problem on the orthonormal basis and
// returns the m smallest Ritz values, the Ritz block and its image, plus the
// conjugate directions built from the non-X part of the basis.
func rayleighRitz(basis, abasis [][]float64, m int) (theta []float64, x, ax, pdir [][]float64, err error) {
	s := len(basis)
	g := mat.NewSymDense(s, nil)
	for i := 0; i < s; i++ {
		for j := i; j < s; j++ {
			g.SetSym(i, j, 0.5*(floats.Dot(basis[i], abasis[j])+floats.Dot(basis[j], abasis[i])))
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(g, true); !ok {
		return nil, nil, nil, nil, eigenErrorf(opLOBPCG, fmt.Errorf("Rayleigh-Ritz failed: %w", ErrBreakdown))
	}
	vals := es.Values(nil)
	var c mat.Dense
	es.VectorsTo(&c)
	if m > s {
		m = s
	}

	theta = vals[:m]
	x = make([][]float64, m)
	ax = make([][]float64, m)
	for j := 0; j < m; j++ {
		col := mat.Col(nil, j, &c)
		x[j] = combine(basis, col)
		ax[j] = combine(abasis, col)
		if s > m {
			tail := append(make([]float64, m), col[m:]...)
			pdir = append(pdir, combine(basis, tail))
		}
	}

	return theta, x, ax, pdir, nil
}

// orthonormalBlock orthonormalizes the columns of x in order, replacing
// dependent columns with random directions.
func orthonormalBlock(x [][]float64, rng *rand.Rand, n int) [][]float64 {
	out := make([][]float64, 0, len(x))
	for _, col := range x {
		v := append([]float64(nil), col...)
		before := floats.Norm(v, 2)
		after := orthogonalizeAgainst(v, out, nil)
		if before == 0 || after < dependentColumnTol*before {
			if v = randomOrthogonal(rng, n, out); v == nil {
				break
			}
			out = append(out, v)
			continue
		}
		floats.Scale(1/after, v)
		out = append(out, v)
	}

	return out
}

func applyBlock(op *operator, x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for j, col := range x {
		out[j] = make([]float64, op.n)
		op.apply(out[j], col)
	}

	return out
}
