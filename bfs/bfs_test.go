package bfs_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/chanhou/megaman/bfs"
	"github.com/chanhou/megaman/matrix"
)

// graph builds an n×n pattern holding each directed pair once.
func graph(t *testing.T, n int, edges ...[2]int) *matrix.CSR {
	t.Helper()
	coo, err := matrix.NewCOO(n, n)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range edges {
		if err = coo.Append(e[0], e[1], 1); err != nil {
			t.Fatal(err)
		}
	}

	return coo.ToCSR()
}

// TestBFS_Errors verifies that invalid inputs and options are rejected.
func TestBFS_Errors(t *testing.T) {
	if _, err := bfs.BFS(nil, 0); !errors.Is(err, bfs.ErrGraphNil) {
		t.Errorf("nil graph: want ErrGraphNil, got %v", err)
	}
	g := graph(t, 2)
	if _, err := bfs.BFS(g, 5); !errors.Is(err, bfs.ErrStartOutOfRange) {
		t.Errorf("bad start: want ErrStartOutOfRange, got %v", err)
	}
	if _, err := bfs.BFS(g, 0, bfs.WithMaxDepth(-1)); !errors.Is(err, bfs.ErrOptionViolation) {
		t.Errorf("negative depth: want ErrOptionViolation, got %v", err)
	}
	rect, err := matrix.NewDense(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = bfs.BFS(rect, 0); !errors.Is(err, matrix.ErrNonSquare) {
		t.Errorf("rectangular: want ErrNonSquare, got %v", err)
	}
}

// TestCycleAndDepths covers a 4-cycle stored one direction only.
func TestCycleAndDepths(t *testing.T) {
	g := graph(t, 4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 0})
	res, err := bfs.BFS(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 3, 2}; !reflect.DeepEqual(res.Order, want) {
		t.Errorf("Order = %v; want %v", res.Order, want)
	}
	if want := []int{0, 1, 2, 1}; !reflect.DeepEqual(res.Depth, want) {
		t.Errorf("Depth = %v; want %v", res.Depth, want)
	}
	path, err := res.PathTo(2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(path, want) {
		t.Errorf("PathTo(2) = %v; want %v", path, want)
	}
}

// TestMaxDepth stops expansion past the limit.
func TestMaxDepth(t *testing.T) {
	g := graph(t, 4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})
	res, err := bfs.BFS(g, 0, bfs.WithMaxDepth(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Reached(2) || !res.Reached(1) {
		t.Errorf("Depth = %v; want rows 0,1 only", res.Depth)
	}
	if _, err = res.PathTo(3); err == nil {
		t.Error("PathTo(3): want error for unreached row")
	}
}

// TestOnVisitAbort propagates hook errors.
func TestOnVisitAbort(t *testing.T) {
	stop := errors.New("stop")
	g := graph(t, 3, [2]int{0, 1}, [2]int{1, 2})
	_, err := bfs.BFS(g, 0, bfs.WithOnVisit(func(row, _ int) error {
		if row == 1 {
			return stop
		}
		return nil
	}))
	if !errors.Is(err, stop) {
		t.Errorf("want hook error, got %v", err)
	}
}

// TestCancellation returns the context error.
func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := graph(t, 2, [2]int{0, 1})
	if _, err := bfs.BFS(g, 0, bfs.WithContext(ctx)); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

// TestComponents labels two chains and an isolated row.
func TestComponents(t *testing.T) {
	g := graph(t, 6, [2]int{0, 2}, [2]int{3, 4}, [2]int{4, 5}, [2]int{1, 1})
	labels, count, err := bfs.Components(g)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("count = %d; want 3", count)
	}
	if want := []int{0, 1, 0, 2, 2, 2}; !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v; want %v", labels, want)
	}
}

// TestExplicitZeroIsEdge keeps coincident points connected.
func TestExplicitZeroIsEdge(t *testing.T) {
	coo, err := matrix.NewCOO(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err = coo.Append(0, 1, 0); err != nil {
		t.Fatal(err)
	}
	_, count, err := bfs.Components(coo.ToCSR())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d; want 1", count)
	}
}
