// SPDX-License-Identifier: MIT

// Package adjacency builds neighbor-distance graphs from a dataset whose rows
// are observations.
//
// The result is an N×N *matrix.CSR: stored entries are Euclidean distances
// between neighbors, absent entries mean "not a neighbor", and every diagonal
// entry is stored as an explicit 0.0. k-NN graphs are not symmetric.
//
// Methods:
//   - "brute": exact pairwise search, O(N²·D);
//   - "hnsw": approximate k-NN through a hierarchical navigable small-world
//     graph (github.com/coder/hnsw), distances recomputed in float64;
//   - "auto" (or ""): brute.
//
// Params:
//   - "radius" (float, default 1.5): radius graph, neighbors with d ≤ radius;
//   - "n_neighbors" (int): k-NN graph instead of a radius graph (required by hnsw);
//   - "m", "ef_search", "seed" (int): hnsw graph tuning.
package adjacency

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/params"
)

// Method names.
const (
	MethodAuto  = "auto"
	MethodBrute = "brute"
	MethodHNSW  = "hnsw"
)

// DefaultRadius is the neighborhood radius used when neither "radius" nor
// "n_neighbors" is given.
const DefaultRadius = 1.5

var (
	// ErrUnknownMethod indicates a method name outside auto/brute/hnsw.
	ErrUnknownMethod = errors.New("adjacency: unknown method")
	// ErrBadNeighbors indicates n_neighbors < 1 or ≥ N, or radius ≤ 0.
	ErrBadNeighbors = errors.New("adjacency: invalid neighborhood size")
	// ErrEmptyData indicates a dataset with no rows or columns.
	ErrEmptyData = errors.New("adjacency: empty dataset")
)

// Compute returns the adjacency matrix of the rows of x.
func Compute(x matrix.Matrix, method string, p params.Params) (matrix.Matrix, error) {
	if err := matrix.ValidateNotNil(x); err != nil {
		return nil, fmt.Errorf("adjacency: %w", err)
	}
	if x.Rows() == 0 || x.Cols() == 0 {
		return nil, ErrEmptyData
	}
	points, err := rowsOf(x)
	if err != nil {
		return nil, fmt.Errorf("adjacency: %w", err)
	}
	n := len(points)

	k, err := p.Int("n_neighbors", 0)
	if err != nil {
		return nil, fmt.Errorf("adjacency: %w", err)
	}
	if p.Has("n_neighbors") && (k < 1 || k >= n) {
		return nil, fmt.Errorf("adjacency: n_neighbors=%d with %d points: %w", k, n, ErrBadNeighbors)
	}

	switch strings.ToLower(method) {
	case "", MethodAuto, MethodBrute:
		if k > 0 {
			return bruteKNN(points, k), nil
		}
		radius, err := p.Float("radius", DefaultRadius)
		if err != nil {
			return nil, fmt.Errorf("adjacency: %w", err)
		}
		if radius <= 0 || math.IsNaN(radius) {
			return nil, fmt.Errorf("adjacency: radius=%g: %w", radius, ErrBadNeighbors)
		}
		return bruteRadius(points, radius), nil
	case MethodHNSW:
		if k == 0 {
			return nil, fmt.Errorf("adjacency: hnsw requires n_neighbors: %w", ErrBadNeighbors)
		}
		cfg, err := hnswConfigFrom(p)
		if err != nil {
			return nil, fmt.Errorf("adjacency: %w", err)
		}
		return hnswKNN(points, k, cfg), nil
	}

	return nil, fmt.Errorf("adjacency: %q: %w", method, ErrUnknownMethod)
}

// rowsOf materializes every row of x as a float64 slice.
func rowsOf(x matrix.Matrix) ([][]float64, error) {
	d, err := matrix.ToDense(x)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, d.Rows())
	for i := range out {
		row, err := d.Row(i)
		if err != nil {
			return nil, err
		}
		out[i] = append([]float64(nil), row...)
	}

	return out, nil
}

func distance(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}

	return math.Sqrt(s)
}

// neighbor is a candidate column with its distance.
type neighbor struct {
	col  int
	dist float64
}

// builder accumulates rows in order and emits a CSR with an explicit zero
// diagonal.
type builder struct {
	indptr  []int
	indices []int
	data    []float64
}

func newBuilder(n int) *builder {
	return &builder{indptr: make([]int, 1, n+1)}
}

// addRow stores the diagonal zero of row i plus the given neighbors.
func (b *builder) addRow(i int, nb []neighbor) {
	nb = append(nb, neighbor{col: i})
	sort.Slice(nb, func(a, c int) bool { return nb[a].col < nb[c].col })
	for _, e := range nb {
		b.indices = append(b.indices, e.col)
		b.data = append(b.data, e.dist)
	}
	b.indptr = append(b.indptr, len(b.indices))
}

func (b *builder) build(n int) *matrix.CSR {
	m, _ := matrix.NewCSR(n, n, b.indptr, b.indices, b.data)

	return m
}

func bruteRadius(points [][]float64, radius float64) *matrix.CSR {
	n := len(points)
	b := newBuilder(n)
	for i := 0; i < n; i++ {
		var nb []neighbor
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			if d := distance(points[i], points[j]); d <= radius {
				nb = append(nb, neighbor{col: j, dist: d})
			}
		}
		b.addRow(i, nb)
	}

	return b.build(n)
}

func bruteKNN(points [][]float64, k int) *matrix.CSR {
	n := len(points)
	b := newBuilder(n)
	all := make([]neighbor, 0, n-1)
	for i := 0; i < n; i++ {
		all = all[:0]
		for j := 0; j < n; j++ {
			if j != i {
				all = append(all, neighbor{col: j, dist: distance(points[i], points[j])})
			}
		}
		sort.SliceStable(all, func(a, c int) bool { return all[a].dist < all[c].dist })
		b.addRow(i, append([]neighbor(nil), all[:k]...))
	}

	return b.build(n)
}
