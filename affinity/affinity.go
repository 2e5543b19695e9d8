// SPDX-License-Identifier: MIT

// Package affinity turns a neighbor-distance graph into a similarity graph.
//
// The only kernel is the Gaussian a_ij = exp(−d_ij²/radius²), evaluated on
// stored entries only (absent entries stay absent; a dense input has every
// entry stored). The result is symmetrized as (A + Aᵀ)/2 unless
// "symmetrize" is false, and its diagonal is always stored as 1.0.
package affinity

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
	MethodAuto     = "auto"
	MethodGaussian = "gaussian"
)

// DefaultRadius is the kernel bandwidth when "radius" is not given.
const DefaultRadius = 1.5

var (
	// ErrUnknownMethod indicates a method other than auto/gaussian.
	ErrUnknownMethod = errors.New("affinity: unknown method")
	// ErrBadRadius indicates a non-positive or non-finite bandwidth.
	ErrBadRadius = errors.New("affinity: radius must be positive and finite")
)

// Compute returns the affinity matrix of the adjacency adj. adj is not modified.
func Compute(adj matrix.Matrix, method string, p params.Params) (matrix.Matrix, error) {
	switch strings.ToLower(method) {
	case "", MethodAuto, MethodGaussian:
	default:
		return nil, fmt.Errorf("affinity: %q: %w", method, ErrUnknownMethod)
	}
	if err := matrix.ValidateSquare(adj); err != nil {
		return nil, fmt.Errorf("affinity: %w", err)
	}
	radius, err := p.Float("radius", DefaultRadius)
	if err != nil {
		return nil, fmt.Errorf("affinity: %w", err)
	}
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("affinity: radius=%g: %w", radius, ErrBadRadius)
	}
	symmetrize, err := p.Bool("symmetrize", true)
	if err != nil {
		return nil, fmt.Errorf("affinity: %w", err)
	}

	a, err := matrix.ToCSR(adj, matrix.WithKeepZeros())
	if err != nil {
		return nil, fmt.Errorf("affinity: %w", err)
	}
	a = a.CloneCSR()
	gaussian(a, radius)
	if symmetrize {
		if a, err = matrix.Symmetrize(a); err != nil {
			return nil, fmt.Errorf("affinity: %w", err)
		}
	}
	if err = matrix.SetDiagonal(a, 1); err != nil {
		return nil, fmt.Errorf("affinity: %w", err)
	}

	return a, nil
}

// gaussian applies exp(−d²/r²) to every stored entry in place.
func gaussian(a *matrix.CSR, radius float64) {
	gamma := 1 / (radius * radius)
	a.Apply(func(_, _ int, d float64) float64 {
		return math.Exp(-gamma * d * d)
	})
}
