// SPDX-License-Identifier: MIT

// Package laplacian builds graph Laplacians from an affinity matrix.
//
// Sign convention: every Laplacian here is negative semi-definite in the
// symmetric case (A − D rather than D − A), so the trivial mode has
// eigenvalue 0 and the interesting ones are the largest.
//
// Methods (A affinity, D = diag(row sums of A)):
//
//	unnormalized         A − D
//	symmetricnormalized  D^{-1/2} A D^{-1/2} − I
//	randomwalk           D^{-1} A − I
//	renormalized         Ã = D^{-e} A D^{-e}, then D̃^{-1} Ã − I   (e = renormalization_exponent)
//	geometric            renormalized with e = 1 (the default for "auto")
//
// Full output adds a symmetric form S and weights w with L = diag(1/w)·S.
// For the symmetric methods S = L and w = 1. For the others S = Ã − D̃ and
// w = diag(D̃), where Ã = A for randomwalk.
//
// Params:
//   - "symmetrize" (bool, default false): replace A by (A + Aᵀ)/2 first.
//     Symmetry is never checked.
//   - "scaling_epps" (float): when > 0, multiply L and S by 4/ε².
//   - "renormalization_exponent" (float, default 1): e for renormalized.
//
// Rows with zero degree are left unscaled and get weight 1.
package laplacian

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/params"
)

// Method names.
const (
	MethodAuto                = "auto"
	MethodUnnormalized        = "unnormalized"
	MethodSymmetricNormalized = "symmetricnormalized"
	MethodGeometric           = "geometric"
	MethodRenormalized        = "renormalized"
	MethodRandomWalk          = "randomwalk"
)

// DefaultRenormalizationExponent is e for the renormalized method.
const DefaultRenormalizationExponent = 1.0

// ErrUnknownMethod indicates an unsupported Laplacian type.
var ErrUnknownMethod = errors.New("laplacian: unknown method")

// Result is the Laplacian with its optional symmetric form and weights.
// Symmetric and Weights are nil unless full output was requested.
type Result struct {
	Laplacian matrix.Matrix
	Symmetric matrix.Matrix
	Weights   []float64
}

// Methods lists the accepted method names, "auto" excluded.
func Methods() []string {
	return []string{MethodUnnormalized, MethodSymmetricNormalized, MethodGeometric, MethodRenormalized, MethodRandomWalk}
}

// Compute returns the Laplacian of aff. aff is not modified.
func Compute(aff matrix.Matrix, method string, fullOutput bool, p params.Params) (Result, error) {
	method = strings.ToLower(method)
	if method == "" || method == MethodAuto {
		method = MethodGeometric
	}
	if err := matrix.ValidateSquare(aff); err != nil {
		return Result{}, fmt.Errorf("laplacian: %w", err)
	}
	symmetrize, err := p.Bool("symmetrize", false)
	if err != nil {
		return Result{}, fmt.Errorf("laplacian: %w", err)
	}
	epps, err := p.Float("scaling_epps", 0)
	if err != nil {
		return Result{}, fmt.Errorf("laplacian: %w", err)
	}
	exponent, err := p.Float("renormalization_exponent", DefaultRenormalizationExponent)
	if err != nil {
		return Result{}, fmt.Errorf("laplacian: %w", err)
	}

	a, err := matrix.ToCSR(aff, matrix.WithKeepZeros())
	if err != nil {
		return Result{}, fmt.Errorf("laplacian: %w", err)
	}
	if symmetrize {
		a, err = matrix.Symmetrize(a)
	} else {
		a = a.CloneCSR()
	}
	if err != nil {
		return Result{}, fmt.Errorf("laplacian: %w", err)
	}

	var lap, sym *matrix.CSR
	var w []float64
	switch method {
	case MethodUnnormalized:
		lap, err = subtractDiagonal(a, a.RowSums())
	case MethodSymmetricNormalized:
		lap, err = symmetricNormalized(a)
	case MethodRandomWalk:
		lap, sym, w, err = randomWalk(a)
	case MethodGeometric:
		lap, sym, w, err = renormalized(a, 1)
	case MethodRenormalized:
		lap, sym, w, err = renormalized(a, exponent)
	default:
		return Result{}, fmt.Errorf("laplacian: %q: %w", method, ErrUnknownMethod)
	}
	if err != nil {
		return Result{}, fmt.Errorf("laplacian: %s: %w", method, err)
	}

	if epps > 0 {
		scale := 4 / (epps * epps)
		scaleAll(lap, scale)
		if sym != nil {
			scaleAll(sym, scale)
		}
	}
	if !fullOutput {
		return Result{Laplacian: lap}, nil
	}
	if sym == nil {
		sym = lap.CloneCSR()
		w = ones(lap.Rows())
	}

	return Result{Laplacian: lap, Symmetric: sym, Weights: w}, nil
}

func symmetricNormalized(a *matrix.CSR) (*matrix.CSR, error) {
	d := a.RowSums()
	inv := make([]float64, len(d))
	for i, v := range d {
		inv[i] = 1
		if v > 0 {
			inv[i] = 1 / math.Sqrt(v)
		}
	}
	if err := scaleBoth(a, inv); err != nil {
		return nil, err
	}

	return matrix.ShiftDiagonal(a, -1)
}

func randomWalk(a *matrix.CSR) (lap, sym *matrix.CSR, w []float64, err error) {
	w = nonZeroWeights(a.RowSums())
	if sym, err = subtractDiagonal(a, w); err != nil {
		return nil, nil, nil, err
	}
	lap, err = rowNormalized(sym, w)

	return lap, sym, w, err
}

// renormalized divides A by d^e on both sides, then random-walk normalizes.
func renormalized(a *matrix.CSR, exponent float64) (lap, sym *matrix.CSR, w []float64, err error) {
	d := a.RowSums()
	inv := make([]float64, len(d))
	for i, v := range d {
		inv[i] = 1
		if v > 0 {
			inv[i] = math.Pow(v, -exponent)
		}
	}
	if err = scaleBoth(a, inv); err != nil {
		return nil, nil, nil, err
	}

	return randomWalk(a)
}

// rowNormalized returns diag(1/w)·s as a new matrix.
func rowNormalized(s *matrix.CSR, w []float64) (*matrix.CSR, error) {
	out := s.CloneCSR()
	inv := make([]float64, len(w))
	for i, v := range w {
		inv[i] = 1 / v
	}
	if err := out.ScaleRows(inv); err != nil {
		return nil, err
	}

	return out, nil
}

func scaleBoth(a *matrix.CSR, s []float64) error {
	if err := a.ScaleRows(s); err != nil {
		return err
	}

	return a.ScaleCols(s)
}

// subtractDiagonal returns A − diag(d); every diagonal entry is stored.
func subtractDiagonal(a *matrix.CSR, d []float64) (*matrix.CSR, error) {
	dm, err := matrix.NewCSRDiag(d)
	if err != nil {
		return nil, err
	}

	return matrix.AddScaled(1, a, -1, dm)
}

func nonZeroWeights(d []float64) []float64 {
	for i, v := range d {
		if v == 0 {
			d[i] = 1
		}
	}

	return d
}

func scaleAll(a *matrix.CSR, s float64) {
	a.Apply(func(_, _ int, v float64) float64 { return v * s })
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}
