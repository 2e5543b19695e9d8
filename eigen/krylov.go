// SPDX-License-Identifier: MIT

// Restarted Krylov eigensolvers.
//
// Symmetric operators use thick-restart Lanczos with full
// reorthogonalization: after every cycle the wanted Ritz vectors (plus a
// buffer) are kept, the residual direction is appended, and the projected
// matrix is rebuilt from exact inner products. General operators use Arnoldi
// with explicit restarts on the wanted Ritz vectors, growing the subspace
// when convergence stalls.

package eigen

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/chanhou/megaman/matrix"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// minKrylovDim is the smallest subspace built per cycle (ARPACK's ncv floor).
const minKrylovDim = 20

// selection picks which end of the spectrum a Krylov solver targets.
type selection int

const (
	largestMagnitude  selection = iota // LM
	smallestMagnitude                  // SM
	largestReal                        // LR
	smallestReal                       // SR
)

func (s selection) String() string {
	return [...]string{"LM", "SM", "LR", "SR"}[s]
}

// rank orders candidate eigenvalues from most to least wanted.
func (s selection) rank(values []complex128) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	key := func(v complex128) float64 {
		switch s {
		case largestMagnitude:
			return -cmplx.Abs(v)
		case smallestMagnitude:
			return cmplx.Abs(v)
		case largestReal:
			return -real(v)
		default:
			return real(v)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return key(values[idx[a]]) < key(values[idx[b]]) })

	return idx
}

// krylovSolver is the "arpack" strategy.
type krylovSolver struct{}

func (krylovSolver) solve(p *problem, k int, largest bool) (Pairs, error) {
	n := p.op.n
	if k >= n {
		p.engine.downgrade(Arpack, Dense, "Krylov solvers need k < N", zap.Int("k", k), zap.Int("size", n))
		return denseSolver{}.solve(p, k, largest)
	}
	v0 := uniformVector(p.rng, n, -1, 1)
	tol := p.tolerance(DefaultArpackTolerance)
	restarts := p.iterationLimit(DefaultArpackRestarts)

	var (
		values []float64
		vecs   [][]float64
		err    error
	)
	if p.symmetric {
		which := smallestMagnitude
		if largest {
			which = largestMagnitude
		}
		values, vecs, p.iterations, err = lanczos(p.op, k, which, v0, tol, restarts, p)
	} else {
		which := smallestReal
		if largest {
			which = largestReal
		}
		values, vecs, p.iterations, err = arnoldi(p.op, k, which, v0, tol, restarts, p)
	}
	if err != nil {
		return Pairs{}, err
	}

	return assemble(values, vecs, k, largest)
}

// krylovDim returns ncv = min(n, max(2k+1, 20)).
func krylovDim(n, k int) int {
	m := 2*k + 1
	if m < minKrylovDim {
		m = minKrylovDim
	}
	if m > n {
		m = n
	}

	return m
}

// lanczos runs thick-restart Lanczos for k eigenpairs of a symmetric op.
// Returns the k wanted Ritz pairs (unordered), the number of cycles used and
// ErrNotConverged when restarts are exhausted.
func lanczos(op *operator, k int, which selection, v0 []float64, tol float64, restarts int, p *problem) ([]float64, [][]float64, int, error) {
	n := op.n
	m := krylovDim(n, k)

	v := append([]float64(nil), v0...)
	if norm := floats.Norm(v, 2); norm > 0 {
		floats.Scale(1/norm, v)
	} else if v = randomOrthogonal(p.rng, n, nil); v == nil {
		return nil, nil, 0, eigenErrorf(opLanczos, ErrBreakdown)
	}

	basis := [][]float64{v}
	t := make([][]float64, m)
	for i := range t {
		t[i] = make([]float64, m)
	}
	scale := 0.0

	for cycle := 1; cycle <= restarts+1; cycle++ {
		var resid []float64
		var beta float64
		for j := len(basis) - 1; j < m; j++ {
			w := make([]float64, n)
			op.apply(w, basis[j])
			coef := make([]float64, j+1)
			beta = orthogonalizeAgainst(w, basis, coef)
			for i := 0; i <= j; i++ {
				t[i][j], t[j][i] = coef[i], coef[i]
				scale = math.Max(scale, math.Abs(coef[i]))
			}
			scale = math.Max(scale, beta)
			if j+1 == m {
				resid = w
				break
			}
			if beta < breakdownTol(scale) {
				nv := randomOrthogonal(p.rng, n, basis)
				if nv == nil {
					return nil, nil, cycle, eigenErrorf(opLanczos, ErrBreakdown)
				}
				basis = append(basis, nv)
				continue
			}
			floats.Scale(1/beta, w)
			basis = append(basis, w)
		}

		sym := mat.NewSymDense(m, nil)
		for i := 0; i < m; i++ {
			for j := i; j < m; j++ {
				sym.SetSym(i, j, t[i][j])
			}
		}
		var es mat.EigenSym
		if ok := es.Factorize(sym, true); !ok {
			return nil, nil, cycle, eigenErrorf(opLanczos, fmt.Errorf("projected eigensolver failed: %w", ErrBreakdown))
		}
		theta := es.Values(nil)
		var s mat.Dense
		es.VectorsTo(&s)

		ctheta := make([]complex128, m)
		for i, th := range theta {
			ctheta[i] = complex(th, 0)
		}
		order := which.rank(ctheta)

		converged := m == n || beta < breakdownTol(scale)
		if !converged {
			converged = true
			for _, i := range order[:k] {
				if beta*math.Abs(s.At(m-1, i)) > tol*math.Max(1, math.Abs(theta[i])) {
					converged = false
					break
				}
			}
		}
		if converged {
			values := make([]float64, k)
			vecs := make([][]float64, k)
			for r, i := range order[:k] {
				values[r] = theta[i]
				vecs[r] = combine(basis, mat.Col(nil, i, &s))
			}
			return values, vecs, cycle, nil
		}

		keep := k + (m-k)/2
		if keep > m-1 {
			keep = m - 1
		}
		kept := make([][]float64, 0, keep+1)
		for r := 0; r < m; r++ {
			for c := 0; c < m; c++ {
				t[r][c] = 0
			}
		}
		for r, i := range order[:keep] {
			kept = append(kept, combine(basis, mat.Col(nil, i, &s)))
			t[r][r] = theta[i]
		}
		floats.Scale(1/beta, resid)
		basis = append(kept, resid)
	}

	return nil, nil, restarts + 1, eigenErrorf(opLanczos, fmt.Errorf("%d restarts: %w", restarts, ErrNotConverged))
}

// arnoldi runs explicitly restarted Arnoldi for k eigenpairs of a general op.
// Eigenvalues and vectors are returned as real parts.
func arnoldi(op *operator, k int, which selection, v0 []float64, tol float64, restarts int, p *problem) ([]float64, [][]float64, int, error) {
	n := op.n
	m := krylovDim(n, k)
	start := append([]float64(nil), v0...)

	for cycle := 1; cycle <= restarts+1; cycle++ {
		v := start
		if norm := floats.Norm(v, 2); norm > 0 {
			floats.Scale(1/norm, v)
		} else if v = randomOrthogonal(p.rng, n, nil); v == nil {
			return nil, nil, cycle, eigenErrorf(opArnoldi, ErrBreakdown)
		}
		basis := [][]float64{v}
		h := mat.NewDense(m, m, nil)
		var beta, scale float64
		for j := 0; j < m; j++ {
			w := make([]float64, n)
			op.apply(w, basis[j])
			coef := make([]float64, j+1)
			beta = orthogonalizeAgainst(w, basis, coef)
			for i := 0; i <= j; i++ {
				h.Set(i, j, coef[i])
				scale = math.Max(scale, math.Abs(coef[i]))
			}
			scale = math.Max(scale, beta)
			if j+1 == m {
				break
			}
			if beta < breakdownTol(scale) {
				nv := randomOrthogonal(p.rng, n, basis)
				if nv == nil {
					return nil, nil, cycle, eigenErrorf(opArnoldi, ErrBreakdown)
				}
				basis = append(basis, nv)
				continue
			}
			h.Set(j+1, j, beta)
			floats.Scale(1/beta, w)
			basis = append(basis, w)
		}

		var eig mat.Eigen
		if ok := eig.Factorize(h, mat.EigenRight); !ok {
			return nil, nil, cycle, eigenErrorf(opArnoldi, fmt.Errorf("projected eigensolver failed: %w", ErrBreakdown))
		}
		lambda := eig.Values(nil)
		var y mat.CDense
		eig.VectorsTo(&y)
		order := which.rank(lambda)

		converged := m == n || beta < breakdownTol(scale)
		if !converged {
			converged = true
			for _, i := range order[:k] {
				if beta*cmplx.Abs(y.At(m-1, i)) > tol*math.Max(1, cmplx.Abs(lambda[i])) {
					converged = false
					break
				}
			}
		}
		if converged {
			values := make([]float64, k)
			vecs := make([][]float64, k)
			for r, i := range order[:k] {
				values[r] = real(lambda[i])
				vecs[r] = combine(basis, realColumn(&y, i, m))
			}
			return values, vecs, cycle, nil
		}

		next := make([]float64, n)
		for _, i := range order[:k] {
			floats.Add(next, combine(basis, realColumn(&y, i, m)))
			floats.Add(next, combine(basis, imagColumn(&y, i, m)))
		}
		start = next
		// Explicit restarts stall on clustered spectra; widen the subspace.
		if cycle%10 == 0 && m < n {
			m = krylovDim(n, m)
		}
	}

	return nil, nil, restarts + 1, eigenErrorf(opArnoldi, fmt.Errorf("%d restarts: %w", restarts, ErrNotConverged))
}

func realColumn(c *mat.CDense, j, m int) []float64 {
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = real(c.At(i, j))
	}

	return out
}

func imagColumn(c *mat.CDense, j, m int) []float64 {
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = imag(c.At(i, j))
	}

	return out
}

// shiftInvert returns the nev eigenpairs of p.m closest to sigma by running
// a Krylov solver on (M − σI)⁻¹ (dense LU) and mapping ν back to σ + 1/ν.
func shiftInvert(p *problem, nev int, sigma float64) ([]float64, [][]float64, error) {
	n := p.op.n
	if nev >= n {
		p.engine.downgrade(Arpack, Dense, "shift-invert needs k < N", zap.Int("k", nev), zap.Int("size", n))
		values, vecs, err := denseSpectrum(p.m, p.symmetric)
		if err != nil {
			return nil, nil, err
		}
		return values, vecs, nil
	}

	g, err := matrix.ToGonum(p.m)
	if err != nil {
		return nil, nil, eigenErrorf(opShiftInv, err)
	}
	for i := 0; i < n; i++ {
		g.Set(i, i, g.At(i, i)-sigma)
	}
	var lu mat.LU
	lu.Factorize(g)
	if c := lu.Cond(); math.IsInf(c, 1) || math.IsNaN(c) || c > mat.ConditionTolerance {
		return nil, nil, eigenErrorf(opShiftInv, fmt.Errorf("factorization of M - %g*I is singular (condition %g): %w", sigma, c, ErrBreakdown))
	}
	var solveErr error
	inv := &operator{n: n, apply: func(dst, src []float64) {
		x := mat.NewVecDense(n, dst)
		b := mat.NewVecDense(n, append([]float64(nil), src...))
		if err := lu.SolveVecTo(x, false, b); err != nil && solveErr == nil {
			solveErr = err
		}
	}}

	v0 := uniformVector(p.rng, n, -1, 1)
	tol := p.tolerance(DefaultNullSpaceTolerance)
	restarts := p.iterationLimit(DefaultNullSpaceIterations)
	var nu []float64
	var vecs [][]float64
	if p.symmetric {
		nu, vecs, p.iterations, err = lanczos(inv, nev, largestMagnitude, v0, tol, restarts, p)
	} else {
		nu, vecs, p.iterations, err = arnoldi(inv, nev, largestMagnitude, v0, tol, restarts, p)
	}
	if err != nil {
		return nil, nil, eigenErrorf(opShiftInv, err)
	}
	if solveErr != nil {
		return nil, nil, eigenErrorf(opShiftInv, fmt.Errorf("%v: %w", solveErr, ErrBreakdown))
	}
	values := make([]float64, len(nu))
	for i, v := range nu {
		if v == 0 {
			return nil, nil, eigenErrorf(opShiftInv, fmt.Errorf("zero Ritz value of the inverse: %w", ErrBreakdown))
		}
		values[i] = sigma + 1/v
	}

	return values, vecs, nil
}
