// SPDX-License-Identifier: MIT

package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chanhou/megaman/matrix"
)

// SwissRoll samples n points of the 3-D swiss roll
//
//	t ~ U(1.5π, 4.5π), h ~ U(0, 21), (t·cos t, h, t·sin t) + N(0, noise²)
//
// and returns them with their intrinsic coordinate t. Equal seeds give
// equal samples.
func SwissRoll(n int, noise float64, seed uint64) (*matrix.Dense, []float64, error) {
	if n < 1 {
		return nil, nil, datasetErrorf("SwissRoll", fmt.Errorf("n=%d: %w", n, ErrEmpty))
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	x, err := matrix.NewDense(n, 3)
	if err != nil {
		return nil, nil, datasetErrorf("SwissRoll", err)
	}
	ts := make([]float64, n)
	for i := 0; i < n; i++ {
		t := 1.5 * math.Pi * (1 + 2*rng.Float64())
		h := 21 * rng.Float64()
		ts[i] = t
		row, _ := x.Row(i)
		row[0] = t*math.Cos(t) + noise*rng.NormFloat64()
		row[1] = h + noise*rng.NormFloat64()
		row[2] = t*math.Sin(t) + noise*rng.NormFloat64()
	}

	return x, ts, nil
}

// Grid returns the nx·ny points (i·step, j·step) in row-major order.
func Grid(nx, ny int, step float64) (*matrix.Dense, error) {
	if nx < 1 || ny < 1 {
		return nil, datasetErrorf("Grid", fmt.Errorf("%dx%d: %w", nx, ny, ErrEmpty))
	}
	x, err := matrix.NewDense(nx*ny, 2)
	if err != nil {
		return nil, datasetErrorf("Grid", err)
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			row, _ := x.Row(i*ny + j)
			row[0] = float64(i) * step
			row[1] = float64(j) * step
		}
	}

	return x, nil
}
