// SPDX-License-Identifier: MIT

package bfs

import (
	"fmt"

	"github.com/chanhou/megaman/matrix"
)

// queueItem pairs a row with its BFS depth.
type queueItem struct {
	row   int
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	nbrs  [][]int
	opts  Options
	queue []queueItem
	res   *Result
}

// BFS runs breadth-first search over the pattern of adj from start.
// Returns ErrGraphNil, matrix.ErrNonSquare or ErrStartOutOfRange for invalid
// input, ErrOptionViolation for bad options, the context error on
// cancellation, or any OnVisit error.
func BFS(adj matrix.Matrix, start int, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.err != nil {
		return nil, o.err
	}
	nbrs, err := Neighbors(adj)
	if err != nil {
		return nil, err
	}
	if start < 0 || start >= len(nbrs) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrStartOutOfRange, start, len(nbrs))
	}

	w := newWalker(nbrs, o)
	w.enqueue(start, 0, -1)

	return w.res, w.loop()
}

// Components labels every row of adj with its connected component.
// Labels are dense in [0, count), assigned in order of the lowest row of
// each component.
func Components(adj matrix.Matrix) (labels []int, count int, err error) {
	nbrs, err := Neighbors(adj)
	if err != nil {
		return nil, 0, err
	}
	w := newWalker(nbrs, DefaultOptions())
	labels = make([]int, len(nbrs))
	for i := range labels {
		labels[i] = -1
	}
	for i := range nbrs {
		if labels[i] >= 0 {
			continue
		}
		w.opts.OnVisit = func(row, _ int) error {
			labels[row] = count
			return nil
		}
		w.enqueue(i, 0, -1)
		if err = w.loop(); err != nil {
			return nil, 0, err
		}
		count++
	}

	return labels, count, nil
}

// Neighbors returns the symmetrized, diagonal-free adjacency lists of adj's
// stored entries, each sorted ascending.
func Neighbors(adj matrix.Matrix) ([][]int, error) {
	if adj == nil {
		return nil, ErrGraphNil
	}
	if err := matrix.ValidateSquare(adj); err != nil {
		return nil, fmt.Errorf("bfs: %w", err)
	}
	csr, err := matrix.ToCSR(adj, matrix.WithKeepZeros())
	if err != nil {
		return nil, fmt.Errorf("bfs: %w", err)
	}
	tr, err := matrix.Transpose(csr)
	if err != nil {
		return nil, fmt.Errorf("bfs: %w", err)
	}
	n := csr.Rows()
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		a, _ := csr.RowView(i)
		b, _ := tr.RowView(i)
		out[i] = mergeSorted(i, a, b)
	}

	return out, nil
}

// mergeSorted unions two ascending index lists, dropping self.
func mergeSorted(self int, a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var v int
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			v = a[i]
			i++
		case i == len(a) || b[j] < a[i]:
			v = b[j]
			j++
		default:
			v = a[i]
			i++
			j++
		}
		if v != self {
			out = append(out, v)
		}
	}

	return out
}

func newWalker(nbrs [][]int, o Options) *walker {
	n := len(nbrs)
	res := &Result{
		Order:  make([]int, 0, n),
		Depth:  make([]int, n),
		Parent: make([]int, n),
	}
	for i := 0; i < n; i++ {
		res.Depth[i] = -1
		res.Parent[i] = -1
	}

	return &walker{nbrs: nbrs, opts: o, queue: make([]queueItem, 0, n), res: res}
}

// enqueue marks row visited at depth d and records its parent.
func (w *walker) enqueue(row, d, parent int) {
	w.res.Depth[row] = d
	w.res.Parent[row] = parent
	w.queue = append(w.queue, queueItem{row: row, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.opts.Ctx.Done():
			return w.opts.Ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		w.res.Order = append(w.res.Order, item.row)
		if err := w.opts.OnVisit(item.row, item.depth); err != nil {
			return fmt.Errorf("bfs: OnVisit error at row %d: %w", item.row, err)
		}

		next := item.depth + 1
		if w.opts.MaxDepth > 0 && next > w.opts.MaxDepth {
			continue
		}
		for _, nbr := range w.nbrs[item.row] {
			if w.res.Depth[nbr] < 0 {
				w.enqueue(nbr, next, item.row)
			}
		}
	}

	return nil
}
