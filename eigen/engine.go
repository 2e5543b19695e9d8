// SPDX-License-Identifier: MIT

package eigen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/metrics"
	"go.uber.org/zap"
)

// Engine resolves solver names and runs eigen decompositions and null-space
// extractions. An Engine holds only immutable configuration and is safe for
// concurrent use.
type Engine struct {
	multigrid MultigridBackend
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMultigrid registers the backend that makes the amg solver available.
func WithMultigrid(b MultigridBackend) EngineOption {
	return func(e *Engine) { e.multigrid = b }
}

// WithLogger sets the logger used for downgrade and retry warnings.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine builds an Engine. Without WithMultigrid the amg solver is unavailable.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, fn := range opts {
		if fn != nil {
			fn(e)
		}
	}

	return e
}

// HasMultigrid reports whether a multigrid backend is registered.
func (e *Engine) HasMultigrid() bool { return e.multigrid != nil }

// SelectSolver validates requested and resolves it for a problem of the given
// size and vector count. Non-positive size or nvec means "unknown": the name
// is only validated and Auto is returned unresolved.
//
// Rules, in order:
//   - unknown name -> ErrUnsupportedSolver;
//   - amg without a backend -> ErrUnavailableSolver;
//   - lobpcg with size < 5*nvec+1 -> dense (warning, not an error);
//   - auto -> amg when size > 200 and nvec < 10 and a backend is present,
//     arpack under the same size condition without one, dense otherwise.
func (e *Engine) SelectSolver(requested Solver, size, nvec int) (Solver, error) {
	if !requested.valid() {
		return Auto, eigenErrorf(opSelect, fmt.Errorf("%s: %w", requested, ErrUnsupportedSolver))
	}
	if requested == AMG && e.multigrid == nil {
		return Auto, eigenErrorf(opSelect, ErrUnavailableSolver)
	}
	if size <= 0 || nvec <= 0 {
		return requested, nil
	}
	switch requested {
	case LOBPCG:
		if size < 5*nvec+1 {
			e.downgrade(LOBPCG, Dense, "lobpcg does not perform well with small matrices or with large numbers of vectors",
				zap.Int("size", size), zap.Int("nvec", nvec))
			return Dense, nil
		}
	case Auto:
		if size > autoSizeThreshold && nvec < autoVectorThreshold {
			if e.multigrid != nil {
				return AMG, nil
			}
			return Arpack, nil
		}
		return Dense, nil
	}

	return requested, nil
}

// downgrade logs and counts a solver substitution.
func (e *Engine) downgrade(from, to Solver, reason string, fields ...zap.Field) {
	metrics.SolverDowngradesTotal.WithLabelValues(from.String(), to.String()).Inc()
	e.logger.Warn("switching eigen solver",
		append([]zap.Field{zap.Stringer("from", from), zap.Stringer("to", to), zap.String("reason", reason)}, fields...)...)
}

// problem carries everything a strategy needs for one solve.
type problem struct {
	m          matrix.Matrix
	op         *operator
	symmetric  bool
	tol        float64
	maxIter    int
	rng        *rand.Rand
	engine     *Engine
	iterations int
}

func (p *problem) tolerance(def float64) float64 {
	if p.tol > 0 && !math.IsInf(p.tol, 0) {
		return p.tol
	}

	return def
}

func (p *problem) iterationLimit(def int) int {
	if p.maxIter > 0 {
		return p.maxIter
	}

	return def
}

// strategy computes k eigenpairs at the end of the spectrum selected by largest.
type strategy interface {
	solve(p *problem, k int, largest bool) (Pairs, error)
}

func (e *Engine) strategy(s Solver) strategy {
	switch s {
	case Arpack:
		return krylovSolver{}
	case LOBPCG:
		return lobpcgSolver{}
	case AMG:
		return lobpcgSolver{backend: e.multigrid}
	default:
		return denseSolver{}
	}
}

// Decompose computes k eigenpairs of m (k+1 when opts.DropFirst is set; the
// extra pair is returned, not dropped).
//
// Behavior highlights:
//   - Symmetry is max|M−Mᵀ| < 1e-8 over stored entries.
//   - arpack: seeded uniform(−1,1) start vector; symmetric input selects by
//     magnitude, general input by real part (imaginary parts discarded).
//   - lobpcg/amg: symmetric input only; block of min(N, 5+2k) columns, the
//     first holding the diagonal for amg.
//   - dense: full symmetric or general eigensolver.
//
// Returns pairs ordered non-increasing when opts.Largest, non-decreasing
// otherwise.
//
// Errors:
//   - matrix.ErrNonSquare, ErrInvalidCount, ErrUnsupportedSolver,
//     ErrUnavailableSolver, ErrSymmetryRequired, ErrNotConverged, ErrBreakdown.
func (e *Engine) Decompose(m matrix.Matrix, k int, opts DecomposeOptions) (Pairs, error) {
	if err := matrix.ValidateSquare(m); err != nil {
		return Pairs{}, eigenErrorf(opDecompose, err)
	}
	if err := matrix.ValidateFinite(m); err != nil {
		return Pairs{}, eigenErrorf(opDecompose, err)
	}
	n := m.Rows()
	if k < 1 {
		return Pairs{}, eigenErrorf(opDecompose, fmt.Errorf("k=%d: %w", k, ErrInvalidCount))
	}
	nComp := k
	if opts.DropFirst {
		nComp++
	}
	if nComp > n {
		return Pairs{}, eigenErrorf(opDecompose, fmt.Errorf("%d pairs of a %dx%d matrix: %w", nComp, n, n, ErrInvalidCount))
	}

	solver, err := e.SelectSolver(opts.Solver, n, nComp)
	if err != nil {
		return Pairs{}, eigenErrorf(opDecompose, err)
	}
	symmetric := matrix.IsSymmetric(m, SymmetryTolerance)
	if (solver == LOBPCG || solver == AMG) && !symmetric {
		return Pairs{}, eigenErrorf(opDecompose, fmt.Errorf("%s: %w", solver, ErrSymmetryRequired))
	}

	p, err := e.newProblem(m, symmetric, opts.Tolerance, opts.MaxIterations, opts.Seed)
	if err != nil {
		return Pairs{}, eigenErrorf(opDecompose, err)
	}
	start := time.Now()
	pairs, err := e.strategy(solver).solve(p, nComp, opts.Largest)
	e.observe(solver, "decompose", start, p, err)
	if err != nil {
		return Pairs{}, eigenErrorf(opDecompose, err)
	}

	return pairs, nil
}

func (e *Engine) newProblem(m matrix.Matrix, symmetric bool, tol float64, maxIter int, seed uint64) (*problem, error) {
	op, err := newOperator(m)
	if err != nil {
		return nil, err
	}

	return &problem{
		m:         m,
		op:        op,
		symmetric: symmetric,
		tol:       tol,
		maxIter:   maxIter,
		rng:       newRand(seed),
		engine:    e,
	}, nil
}

func (e *Engine) observe(s Solver, operation string, start time.Time, p *problem, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.SolverRunsTotal.WithLabelValues(s.String(), operation, outcome).Inc()
	metrics.SolverDurationSeconds.WithLabelValues(s.String(), operation).Observe(time.Since(start).Seconds())
	if p != nil && p.iterations > 0 {
		metrics.SolverIterations.WithLabelValues(s.String()).Observe(float64(p.iterations))
	}
	e.logger.Debug("eigen solve",
		zap.Stringer("solver", s),
		zap.String("operation", operation),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
}

// NullSpace returns eigenvectors of m associated with its smallest-magnitude
// eigenvalues, skipping the lowest opts.KSkip, together with the sum of the
// returned eigenvalues as a reconstruction error.
//
// Behavior highlights:
//   - arpack: shift-invert around 0 for k+KSkip pairs; returns columns [KSkip:].
//   - dense: full symmetric solve, eigenvalues 0..k+KSkip sorted by |λ|;
//     returns columns [KSkip : k+1].
//   - amg/lobpcg: smallest pairs of (I + M), shifted back; on non-convergence
//     retried once with (2I + M). Returns columns [KSkip : k+1].
//
// KSkip may exceed k; dense and amg/lobpcg then select no columns and the
// result has nil Vectors.
//
// Errors:
//   - matrix.ErrNonSquare, ErrInvalidCount, ErrUnsupportedSolver,
//     ErrUnavailableSolver, ErrSymmetryRequired, ErrNullSpaceComputation.
func (e *Engine) NullSpace(m matrix.Matrix, k int, opts NullSpaceOptions) (NullSpaceResult, error) {
	if err := matrix.ValidateSquare(m); err != nil {
		return NullSpaceResult{}, eigenErrorf(opNullSpace, err)
	}
	if err := matrix.ValidateFinite(m); err != nil {
		return NullSpaceResult{}, eigenErrorf(opNullSpace, err)
	}
	n := m.Rows()
	if k < 1 || opts.KSkip < 0 || k+opts.KSkip > n {
		return NullSpaceResult{}, eigenErrorf(opNullSpace,
			fmt.Errorf("k=%d k_skip=%d n=%d: %w", k, opts.KSkip, n, ErrInvalidCount))
	}
	solver, err := e.SelectSolver(opts.Solver, n, k+opts.KSkip)
	if err != nil {
		return NullSpaceResult{}, eigenErrorf(opNullSpace, err)
	}

	start := time.Now()
	var res NullSpaceResult
	switch solver {
	case Arpack:
		res, err = e.nullSpaceShiftInvert(m, k, opts)
	case Dense:
		res, err = e.nullSpaceDense(m, k, opts.KSkip)
	case AMG, LOBPCG:
		res, err = e.nullSpaceShifted(m, k, solver, opts)
	default:
		err = fmt.Errorf("%s: %w", solver, ErrUnsupportedSolver)
	}
	e.observe(solver, "nullspace", start, nil, err)
	if err != nil {
		return NullSpaceResult{}, eigenErrorf(opNullSpace, err)
	}

	return res, nil
}

// nullSpaceDense takes eigenvalues 0..k+kSkip of the full symmetric
// spectrum, reorders them by |λ| and returns columns [kSkip : k+1].
func (e *Engine) nullSpaceDense(m matrix.Matrix, k, kSkip int) (NullSpaceResult, error) {
	values, vecs, err := symmetricSpectrum(m)
	if err != nil {
		return NullSpaceResult{}, err
	}
	hi := k + kSkip + 1
	if hi > len(values) {
		hi = len(values)
	}

	return sliceByMagnitude(values[:hi], vecs[:hi], 0, kSkip, k+1)
}

// nullSpaceShiftInvert runs shift-invert Krylov around σ = 0.
func (e *Engine) nullSpaceShiftInvert(m matrix.Matrix, k int, opts NullSpaceOptions) (NullSpaceResult, error) {
	nev := k + opts.KSkip
	symmetric := matrix.IsSymmetric(m, SymmetryTolerance)
	p, err := e.newProblem(m, symmetric, opts.Tolerance, opts.MaxIterations, opts.Seed)
	if err != nil {
		return NullSpaceResult{}, nullSpaceError(Arpack, err)
	}
	if opts.Tolerance == 0 {
		p.tol = DefaultNullSpaceTolerance
	}
	values, vecs, err := shiftInvert(p, nev, 0)
	if err != nil {
		return NullSpaceResult{}, nullSpaceError(Arpack, err)
	}

	return sliceByMagnitude(values, vecs, 0, opts.KSkip, len(values))
}

// nullSpaceShifted solves the smallest pairs of (shift·I + M) with an
// iterative block solver and shifts the eigenvalues back.
func (e *Engine) nullSpaceShifted(m matrix.Matrix, k int, solver Solver, opts NullSpaceOptions) (NullSpaceResult, error) {
	csr, err := matrix.ToCSR(m)
	if err != nil {
		return NullSpaceResult{}, err
	}
	n := m.Rows()
	nComp := k + opts.KSkip + 10
	if nComp > n {
		nComp = n
	}
	attempt := func(shift float64) (NullSpaceResult, error) {
		shifted, err := matrix.ShiftDiagonal(csr, shift)
		if err != nil {
			return NullSpaceResult{}, err
		}
		pairs, err := e.Decompose(shifted, nComp, DecomposeOptions{
			Solver:        solver,
			Tolerance:     opts.Tolerance,
			MaxIterations: opts.MaxIterations,
			Seed:          opts.Seed,
			DropFirst:     false,
			Largest:       false,
		})
		if err != nil {
			return NullSpaceResult{}, err
		}

		return sliceByMagnitude(pairs.Values, columns(pairs), shift, opts.KSkip, k+1)
	}

	res, err := attempt(1)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrNotConverged) && !errors.Is(err, ErrBreakdown) {
		return NullSpaceResult{}, err
	}
	metrics.NullSpaceRetriesTotal.WithLabelValues(solver.String()).Inc()
	e.logger.Warn("null space solver failed the first time, increasing positive-definite adjustment",
		zap.Stringer("solver", solver), zap.Error(err))
	res, err = attempt(2)
	if err != nil {
		return NullSpaceResult{}, nullSpaceError(solver, err)
	}

	return res, nil
}

// sliceByMagnitude subtracts shift from every eigenvalue, orders the pairs
// by |λ| and returns columns [lo, hi) with the sum of their eigenvalues.
// An empty range yields a result with nil Vectors and zero Error.
func sliceByMagnitude(values []float64, vecs [][]float64, shift float64, lo, hi int) (NullSpaceResult, error) {
	shifted := make([]float64, len(values))
	for i, v := range values {
		shifted[i] = v - shift
	}
	order := magnitudeOrder(shifted)
	if hi > len(order) {
		hi = len(order)
	}
	if lo >= hi {
		return NullSpaceResult{}, nil
	}
	pairs, err := pack(shifted, vecs, order[lo:hi])
	if err != nil {
		return NullSpaceResult{}, err
	}
	var sum float64
	for _, v := range pairs.Values {
		sum += v
	}

	return NullSpaceResult{Vectors: pairs.Vectors, Error: sum}, nil
}
