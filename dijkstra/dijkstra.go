// SPDX-License-Identifier: MIT

package dijkstra

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/chanhou/megaman/matrix"
)

// Graph is the weighted, undirected view of an adjacency matrix: every stored
// (i, j, d) is an edge i–j of length d. Build it once with NewGraph and reuse
// it for many sources.
type Graph struct {
	nbrs    [][]int
	weights [][]float64
}

// NewGraph indexes the stored entries of the square matrix adj. When both
// (i, j) and (j, i) are stored the shorter length wins.
// Errors: ErrNilGraph, matrix.ErrNonSquare, ErrNegativeWeight.
func NewGraph(adj matrix.Matrix) (*Graph, error) {
	if adj == nil {
		return nil, ErrNilGraph
	}
	if err := matrix.ValidateSquare(adj); err != nil {
		return nil, fmt.Errorf("dijkstra: %w", err)
	}
	csr, err := matrix.ToCSR(adj, matrix.WithKeepZeros())
	if err != nil {
		return nil, fmt.Errorf("dijkstra: %w", err)
	}
	n := csr.Rows()
	g := &Graph{nbrs: make([][]int, n), weights: make([][]float64, n)}
	for i := 0; i < n; i++ {
		cols, vals := csr.RowView(i)
		for p, j := range cols {
			if j == i {
				continue
			}
			if vals[p] < 0 {
				return nil, fmt.Errorf("%w: (%d,%d)=%g", ErrNegativeWeight, i, j, vals[p])
			}
			g.nbrs[i] = append(g.nbrs[i], j)
			g.weights[i] = append(g.weights[i], vals[p])
			g.nbrs[j] = append(g.nbrs[j], i)
			g.weights[j] = append(g.weights[j], vals[p])
		}
	}

	return g, nil
}

// Len returns the number of rows.
func (g *Graph) Len() int { return len(g.nbrs) }

// Dijkstra computes shortest path lengths from the source row of adj.
// Unreached rows get +Inf; prev is nil unless WithReturnPath is given, and
// holds -1 for the source and unreached rows.
func Dijkstra(adj matrix.Matrix, opts ...Option) ([]float64, []int, error) {
	g, err := NewGraph(adj)
	if err != nil {
		return nil, nil, err
	}

	return g.From(opts...)
}

// From runs Dijkstra on a prepared Graph.
func (g *Graph) From(opts ...Option) ([]float64, []int, error) {
	cfg := DefaultOptions(0)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.err != nil {
		return nil, nil, cfg.err
	}
	if cfg.Source < 0 || cfg.Source >= g.Len() {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSourceOutOfRange, cfg.Source, g.Len())
	}

	r := g.newRunner(cfg)
	r.process()
	if !cfg.ReturnPath {
		return r.dist, nil, nil
	}

	return r.dist, r.prev, nil
}

// AllPairs returns the N×N shortest path length matrix of adj.
func AllPairs(adj matrix.Matrix) (*matrix.Dense, error) {
	g, err := NewGraph(adj)
	if err != nil {
		return nil, err
	}
	n := g.Len()
	out, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("dijkstra: %w", err)
	}
	for s := 0; s < n; s++ {
		dist, _, err := g.From(Source(s))
		if err != nil {
			return nil, err
		}
		row, _ := out.Row(s)
		copy(row, dist)
	}

	return out, nil
}

// runner holds the per-source state.
type runner struct {
	g       *Graph
	options Options
	dist    []float64
	prev    []int
	visited []bool
	pq      nodePQ
}

func (g *Graph) newRunner(cfg Options) *runner {
	n := g.Len()
	r := &runner{
		g:       g,
		options: cfg,
		dist:    make([]float64, n),
		visited: make([]bool, n),
		pq:      make(nodePQ, 0, n),
	}
	if cfg.ReturnPath {
		r.prev = make([]int, n)
	}
	for v := 0; v < n; v++ {
		r.dist[v] = math.Inf(1)
		if r.prev != nil {
			r.prev[v] = -1
		}
	}
	r.dist[cfg.Source] = 0
	heap.Init(&r.pq)
	heap.Push(&r.pq, &nodeItem{row: cfg.Source, dist: 0})

	return r
}

// process pops rows in distance order; stale heap entries are skipped.
func (r *runner) process() {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*nodeItem)
		u := item.row
		if r.visited[u] {
			continue
		}
		if item.dist > r.options.MaxDistance {
			break
		}
		r.visited[u] = true
		r.relax(u)
	}
}

func (r *runner) relax(u int) {
	for p, v := range r.g.nbrs[u] {
		next := r.dist[u] + r.g.weights[u][p]
		if next > r.options.MaxDistance || next >= r.dist[v] {
			continue
		}
		r.dist[v] = next
		if r.prev != nil {
			r.prev[v] = u
		}
		heap.Push(&r.pq, &nodeItem{row: v, dist: next})
	}
}

// nodeItem is a heap entry.
type nodeItem struct {
	row  int
	dist float64
}

// nodePQ is a min-heap on dist.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool { return pq[i].dist < pq[j].dist }

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x any) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
