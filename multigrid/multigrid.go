// SPDX-License-Identifier: MIT

// Package multigrid implements a smoothed-aggregation algebraic multigrid
// hierarchy used as a preconditioner by the eigen package's amg solver.
//
// Setup, per level:
//   - strength of connection: j is strong for i when |a_ij| ≥ θ·sqrt(|a_ii·a_jj|);
//   - greedy three-pass aggregation over the strength graph;
//   - tentative prolongator with normalized constant columns;
//   - prolongator smoothing P = (I − ω D⁻¹A)·T, ω = (4/3)/ρ(D⁻¹A);
//   - Galerkin coarse operator Pᵀ·A·P.
//
// Apply runs one V-cycle with damped Jacobi pre/post smoothing and a
// pseudo-inverse solve on the coarsest grid.
package multigrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/chanhou/megaman/eigen"
	"github.com/chanhou/megaman/matrix"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Defaults.
const (
	DefaultStrength     = 0.0
	DefaultMaxLevels    = 10
	DefaultMaxCoarse    = 10
	DefaultSweeps       = 1
	DefaultJacobiWeight = 2.0 / 3.0

	// denseCoarseLimit caps the coarsest grid handled by the pseudo-inverse.
	denseCoarseLimit = 800
	// powerIterations estimates ρ(D⁻¹A) for prolongator smoothing.
	powerIterations = 20
)

// Options configures hierarchy construction.
type Options struct {
	Strength     float64
	MaxLevels    int
	MaxCoarse    int
	PreSweeps    int
	PostSweeps   int
	JacobiWeight float64
	Logger       *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithStrength sets the strength-of-connection threshold θ ∈ [0, 1].
func WithStrength(theta float64) Option {
	return func(o *Options) {
		if theta >= 0 && theta <= 1 {
			o.Strength = theta
		}
	}
}

// WithMaxLevels bounds the hierarchy depth (≥ 1).
func WithMaxLevels(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.MaxLevels = n
		}
	}
}

// WithMaxCoarse stops coarsening once a grid has at most n unknowns.
func WithMaxCoarse(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.MaxCoarse = n
		}
	}
}

// WithSweeps sets the pre- and post-smoothing sweep counts.
func WithSweeps(pre, post int) Option {
	return func(o *Options) {
		if pre >= 0 {
			o.PreSweeps = pre
		}
		if post >= 0 {
			o.PostSweeps = post
		}
	}
}

// WithLogger sets the logger for hierarchy statistics.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Backend builds smoothed-aggregation hierarchies; it satisfies
// eigen.MultigridBackend.
type Backend struct {
	opts Options
}

var _ eigen.MultigridBackend = (*Backend)(nil)

// NewBackend returns a Backend with defaults overridden by opts.
func NewBackend(opts ...Option) *Backend {
	o := Options{
		Strength:     DefaultStrength,
		MaxLevels:    DefaultMaxLevels,
		MaxCoarse:    DefaultMaxCoarse,
		PreSweeps:    DefaultSweeps,
		PostSweeps:   DefaultSweeps,
		JacobiWeight: DefaultJacobiWeight,
		Logger:       zap.NewNop(),
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return &Backend{opts: o}
}

// Preconditioner builds a hierarchy for a and returns it as a preconditioner.
func (b *Backend) Preconditioner(a *matrix.CSR) (eigen.Preconditioner, error) {
	h, err := b.Build(a)
	if err != nil {
		return nil, err
	}

	return h, nil
}

// level holds one fine grid and its transfer operators to the next.
type level struct {
	a       *matrix.CSR
	p       *matrix.CSR
	r       *matrix.CSR
	invDiag []float64
}

// Hierarchy is a built multigrid preconditioner.
type Hierarchy struct {
	levels  []level
	coarseA *matrix.CSR
	coarse  func(x, b []float64)
	opts    Options
}

// Build constructs the hierarchy for the square matrix a.
// Errors: matrix.ErrNilMatrix, matrix.ErrNonSquare, and eigensolver failures
// of the coarsest grid.
func (b *Backend) Build(a *matrix.CSR) (*Hierarchy, error) {
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, fmt.Errorf("multigrid: %w", err)
	}
	h := &Hierarchy{opts: b.opts}
	cur := a
	for len(h.levels)+1 < b.opts.MaxLevels && cur.Rows() > b.opts.MaxCoarse {
		agg, nAgg := aggregate(strength(cur, b.opts.Strength))
		if nAgg >= cur.Rows() || nAgg == 0 {
			break
		}
		inv := inverseDiagonal(cur)
		p, err := smoothedProlongator(cur, inv, tentative(agg, nAgg))
		if err != nil {
			return nil, err
		}
		r, err := matrix.Transpose(p)
		if err != nil {
			return nil, err
		}
		ap, err := matrix.Mul(cur, p)
		if err != nil {
			return nil, err
		}
		next, err := matrix.Mul(r, ap)
		if err != nil {
			return nil, err
		}
		h.levels = append(h.levels, level{a: cur, p: p, r: r, invDiag: inv})
		cur = next
	}
	h.coarseA = cur
	coarse, err := b.coarseSolver(cur)
	if err != nil {
		return nil, err
	}
	h.coarse = coarse

	b.opts.Logger.Debug("multigrid hierarchy built",
		zap.Int("levels", h.Levels()),
		zap.Int("fine_size", a.Rows()),
		zap.Int("coarse_size", cur.Rows()),
		zap.Float64("operator_complexity", h.OperatorComplexity()))

	return h, nil
}

// Levels returns the number of grids, the coarsest included.
func (h *Hierarchy) Levels() int { return len(h.levels) + 1 }

// OperatorComplexity is Σ nnz(A_l) / nnz(A_0).
func (h *Hierarchy) OperatorComplexity() float64 {
	fine := h.coarseA.NNZ()
	if len(h.levels) > 0 {
		fine = h.levels[0].a.NNZ()
	}
	if fine == 0 {
		return 1
	}
	total := h.coarseA.NNZ()
	for _, l := range h.levels {
		total += l.a.NNZ()
	}

	return float64(total) / float64(fine)
}

// Apply writes one V-cycle approximation of A⁻¹·src into dst.
func (h *Hierarchy) Apply(dst, src []float64) {
	for i := range dst {
		dst[i] = 0
	}
	h.cycle(0, dst, src)
}

func (h *Hierarchy) cycle(lvl int, x, b []float64) {
	if lvl == len(h.levels) {
		h.coarse(x, b)
		return
	}
	l := h.levels[lvl]
	n := l.a.Rows()
	tmp := make([]float64, n)
	h.jacobi(l, x, b, tmp, h.opts.PreSweeps)

	_ = l.a.MulVecTo(tmp, x)
	res := make([]float64, n)
	floats.SubTo(res, b, tmp)
	rc := make([]float64, l.r.Rows())
	_ = l.r.MulVecTo(rc, res)
	xc := make([]float64, len(rc))
	h.cycle(lvl+1, xc, rc)
	corr := make([]float64, n)
	_ = l.p.MulVecTo(corr, xc)
	floats.Add(x, corr)

	h.jacobi(l, x, b, tmp, h.opts.PostSweeps)
}

// jacobi runs damped Jacobi sweeps x ← x + ω D⁻¹(b − A x).
func (h *Hierarchy) jacobi(l level, x, b, tmp []float64, sweeps int) {
	w := h.opts.JacobiWeight
	for s := 0; s < sweeps; s++ {
		_ = l.a.MulVecTo(tmp, x)
		for i := range x {
			x[i] += w * l.invDiag[i] * (b[i] - tmp[i])
		}
	}
}

// coarseSolver returns a pseudo-inverse solve for small grids and Jacobi
// sweeps for grids that failed to coarsen below denseCoarseLimit.
func (b *Backend) coarseSolver(a *matrix.CSR) (func(x, rhs []float64), error) {
	n := a.Rows()
	if n > denseCoarseLimit {
		l := level{a: a, invDiag: inverseDiagonal(a)}
		w := b.opts.JacobiWeight
		return func(x, rhs []float64) {
			tmp := make([]float64, n)
			for s := 0; s < 20; s++ {
				_ = a.MulVecTo(tmp, x)
				for i := range x {
					x[i] += w * l.invDiag[i] * (rhs[i] - tmp[i])
				}
			}
		}, nil
	}

	sym, err := matrix.ToGonumSym(a)
	if err != nil {
		return nil, fmt.Errorf("multigrid: coarse grid: %w", err)
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, errors.New("multigrid: coarse grid eigensolver failed")
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	cut := 1e-12 * math.Max(math.Abs(vals[0]), math.Abs(vals[n-1]))
	cols := make([][]float64, 0, n)
	inv := make([]float64, 0, n)
	for j, v := range vals {
		if math.Abs(v) > cut {
			cols = append(cols, mat.Col(nil, j, &vecs))
			inv = append(inv, 1/v)
		}
	}

	return func(x, rhs []float64) {
		for i := range x {
			x[i] = 0
		}
		for j, u := range cols {
			floats.AddScaled(x, inv[j]*floats.Dot(u, rhs), u)
		}
	}, nil
}
