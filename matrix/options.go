// SPDX-License-Identifier: MIT
// Package matrix: functional options for conversions and numeric policy.
//
// Purpose:
//   - Keep a single source of truth for the numeric policy (finite-only
//     ingestion) and for sparsification thresholds used by conversions.
//   - Offer a small, composable Option surface: ToCSR(m, WithEpsilon(1e-12)).
//
// Determinism:
//   - Options are applied left to right; the last writer wins.

package matrix

import "math"

// Default policy values.
const (
	// DefaultValidateNaNInf enables finite-only enforcement on Set and ingestion.
	DefaultValidateNaNInf = true

	// DefaultEpsilon is the magnitude at or below which a dense entry is
	// treated as absent when sparsifying. Zero means "only exact zeros".
	DefaultEpsilon = 0.0

	// DefaultKeepZeros controls whether exact zeros survive sparsification.
	DefaultKeepZeros = false
)

// Option mutates Options; see With* constructors.
type Option func(*Options)

// Options carries the numeric policy for constructors and conversions.
type Options struct {
	// Epsilon: dense entries with |v| <= Epsilon are dropped by ToCSR unless
	// KeepZeros is set. Negative or non-finite inputs are ignored.
	Epsilon float64

	// ValidateNaNInf rejects NaN/±Inf values with ErrNaNInf.
	ValidateNaNInf bool

	// KeepZeros stores every dense cell when converting to sparse.
	KeepZeros bool
}

// WithEpsilon sets the sparsification threshold.
// Non-finite or negative values are ignored so the default stays in effect.
func WithEpsilon(eps float64) Option {
	return func(o *Options) {
		if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
			return
		}
		o.Epsilon = eps
	}
}

// WithValidateNaNInf enables finite-only enforcement.
func WithValidateNaNInf() Option {
	return func(o *Options) { o.ValidateNaNInf = true }
}

// WithNoValidateNaNInf disables finite-only enforcement.
// Use only for controlled ingestion where NaN is a legitimate marker.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.ValidateNaNInf = false }
}

// WithKeepZeros makes ToCSR store every dense cell, zeros included.
func WithKeepZeros() Option {
	return func(o *Options) { o.KeepZeros = true }
}

// NewOptions returns the defaults with user options applied in order.
func NewOptions(opts ...Option) Options {
	o := Options{
		Epsilon:        DefaultEpsilon,
		ValidateNaNInf: DefaultValidateNaNInf,
		KeepZeros:      DefaultKeepZeros,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
