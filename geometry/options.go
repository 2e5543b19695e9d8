// SPDX-License-Identifier: MIT

package geometry

import (
	"github.com/chanhou/megaman/adjacency"
	"github.com/chanhou/megaman/affinity"
	"github.com/chanhou/megaman/laplacian"
	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/params"
	"go.uber.org/zap"
)

// Params is the sticky keyword configuration of one stage.
type Params = params.Params

// LaplacianResult is the Laplacian with its optional symmetric form and
// renormalization weights.
type LaplacianResult = laplacian.Result

// AdjacencyFunc computes a neighbor-distance matrix from a dataset.
type AdjacencyFunc func(x matrix.Matrix, method string, p Params) (matrix.Matrix, error)

// AffinityFunc computes a similarity matrix from an adjacency matrix.
type AffinityFunc func(adj matrix.Matrix, method string, p Params) (matrix.Matrix, error)

// LaplacianFunc computes a Laplacian from an affinity matrix. fullOutput
// asks for the symmetric form and weights as well.
type LaplacianFunc func(aff matrix.Matrix, method string, fullOutput bool, p Params) (LaplacianResult, error)

// Default method names.
const (
	DefaultAdjacencyMethod = adjacency.MethodAuto
	DefaultAffinityMethod  = affinity.MethodAuto
	DefaultLaplacianMethod = laplacian.MethodAuto
)

// Option configures a Geometry at construction.
type Option func(*Geometry)

// WithAdjacency sets the adjacency method and its initial params.
func WithAdjacency(method string, p Params) Option {
	return func(g *Geometry) {
		g.adjacency.method = method
		g.adjacency.params = p.Clone()
	}
}

// WithAffinity sets the affinity method and its initial params.
func WithAffinity(method string, p Params) Option {
	return func(g *Geometry) {
		g.affinity.method = method
		g.affinity.params = p.Clone()
	}
}

// WithLaplacian sets the Laplacian method and its initial params.
func WithLaplacian(method string, p Params) Option {
	return func(g *Geometry) {
		g.laplacian.method = method
		g.laplacian.params = p.Clone()
	}
}

// WithAdjacencyFunc replaces the adjacency collaborator.
func WithAdjacencyFunc(fn AdjacencyFunc) Option {
	return func(g *Geometry) {
		if fn != nil {
			g.adjacencyFn = fn
		}
	}
}

// WithAffinityFunc replaces the affinity collaborator.
func WithAffinityFunc(fn AffinityFunc) Option {
	return func(g *Geometry) {
		if fn != nil {
			g.affinityFn = fn
		}
	}
}

// WithLaplacianFunc replaces the Laplacian collaborator.
func WithLaplacianFunc(fn LaplacianFunc) Option {
	return func(g *Geometry) {
		if fn != nil {
			g.laplacianFn = fn
		}
	}
}

// WithLogger sets the logger used for derivation events.
func WithLogger(l *zap.Logger) Option {
	return func(g *Geometry) {
		if l != nil {
			g.logger = l
		}
	}
}
