// SPDX-License-Identifier: MIT

package adjacency

import (
	"math/rand"

	"github.com/chanhou/megaman/matrix"
	"github.com/chanhou/megaman/params"
	"github.com/coder/hnsw"
)

// hnsw defaults.
const (
	DefaultHNSWM        = 16
	DefaultHNSWEfSearch = 64
	DefaultHNSWSeed     = 1
)

type hnswConfig struct {
	m        int
	efSearch int
	seed     int64
}

func hnswConfigFrom(p params.Params) (hnswConfig, error) {
	m, err := p.Int("m", DefaultHNSWM)
	if err != nil {
		return hnswConfig{}, err
	}
	ef, err := p.Int("ef_search", DefaultHNSWEfSearch)
	if err != nil {
		return hnswConfig{}, err
	}
	seed, err := p.Int("seed", DefaultHNSWSeed)
	if err != nil {
		return hnswConfig{}, err
	}
	if m < 2 {
		m = DefaultHNSWM
	}

	return hnswConfig{m: m, efSearch: ef, seed: int64(seed)}, nil
}

// hnswKNN indexes every point and queries its k+1 nearest nodes (the point
// itself included). The search width is never below k+1.
func hnswKNN(points [][]float64, k int, cfg hnswConfig) *matrix.CSR {
	n := len(points)
	g := hnsw.NewGraph[int]()
	g.M = cfg.m
	g.Distance = hnsw.EuclideanDistance
	g.EfSearch = max(cfg.efSearch, k+1)
	g.Rng = rand.New(rand.NewSource(cfg.seed))

	vecs := make([][]float32, n)
	for i, p := range points {
		v := make([]float32, len(p))
		for j, x := range p {
			v[j] = float32(x)
		}
		vecs[i] = v
		g.Add(hnsw.MakeNode(i, v))
	}

	b := newBuilder(n)
	for i := 0; i < n; i++ {
		found := g.Search(vecs[i], k+1)
		nb := make([]neighbor, 0, k)
		for _, node := range found {
			if node.Key == i || len(nb) == k {
				continue
			}
			nb = append(nb, neighbor{col: node.Key, dist: distance(points[i], points[node.Key])})
		}
		b.addRow(i, nb)
	}

	return b.build(n)
}
