// SPDX-License-Identifier: MIT

package dijkstra

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors.
var (
	// ErrNilGraph is returned when the adjacency matrix is nil.
	ErrNilGraph = errors.New("dijkstra: graph is nil")

	// ErrSourceOutOfRange is returned when the source row is not in [0, N).
	ErrSourceOutOfRange = errors.New("dijkstra: source row out of range")

	// ErrNegativeWeight is returned when a stored distance is negative.
	ErrNegativeWeight = errors.New("dijkstra: negative edge weight encountered")

	// ErrBadMaxDistance is returned for a negative or NaN MaxDistance.
	ErrBadMaxDistance = errors.New("dijkstra: MaxDistance must be non-negative")
)

// Options configures a single-source run.
type Options struct {
	Source      int     // source row
	ReturnPath  bool    // whether to return predecessors
	MaxDistance float64 // rows farther than this stay at +Inf

	err error
}

// Option mutates Options.
type Option func(*Options)

// Source sets the source row.
func Source(row int) Option {
	return func(o *Options) { o.Source = row }
}

// WithReturnPath requests the predecessor slice.
func WithReturnPath() Option {
	return func(o *Options) { o.ReturnPath = true }
}

// WithMaxDistance prunes the search at max.
func WithMaxDistance(max float64) Option {
	return func(o *Options) {
		if max < 0 || math.IsNaN(max) {
			o.err = fmt.Errorf("%w: %g", ErrBadMaxDistance, max)
			return
		}
		o.MaxDistance = max
	}
}

// DefaultOptions returns the options for an unbounded run from source.
func DefaultOptions(source int) Options {
	return Options{
		Source:      source,
		MaxDistance: math.Inf(1),
	}
}
