// SPDX-License-Identifier: MIT

package eigen

import (
	"fmt"

	"github.com/chanhou/megaman/matrix"
	"gonum.org/v1/gonum/mat"
)

// denseSolver materializes the matrix and runs a full eigensolver:
// gonum EigenSym for symmetric input, gonum Eigen (right vectors, real parts)
// otherwise.
type denseSolver struct{}

func (denseSolver) solve(p *problem, k int, largest bool) (Pairs, error) {
	values, vecs, err := denseSpectrum(p.m, p.symmetric)
	if err != nil {
		return Pairs{}, err
	}

	return assemble(values, vecs, k, largest)
}

// denseSpectrum returns every eigenpair of m, eigenvalues ascending
// (by real part for the general case).
func denseSpectrum(m matrix.Matrix, symmetric bool) ([]float64, [][]float64, error) {
	if symmetric {
		return symmetricSpectrum(m)
	}
	g, err := matrix.ToGonum(m)
	if err != nil {
		return nil, nil, eigenErrorf(opDense, err)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(g, mat.EigenRight); !ok {
		return nil, nil, eigenErrorf(opDense, fmt.Errorf("general eigensolver failed: %w", ErrBreakdown))
	}
	cvals := eig.Values(nil)
	var cv mat.CDense
	eig.VectorsTo(&cv)

	n := len(cvals)
	values := make([]float64, n)
	vecs := make([][]float64, n)
	for j := 0; j < n; j++ {
		values[j] = real(cvals[j])
		v := make([]float64, n)
		for i := 0; i < n; i++ {
			v[i] = real(cv.At(i, j))
		}
		vecs[j] = v
	}
	order := ascendingOrder(values, false)
	sortedVals := make([]float64, n)
	sortedVecs := make([][]float64, n)
	for i, o := range order {
		sortedVals[i], sortedVecs[i] = values[o], vecs[o]
	}

	return sortedVals, sortedVecs, nil
}

// symmetricSpectrum runs gonum EigenSym on the upper triangle of m.
func symmetricSpectrum(m matrix.Matrix) ([]float64, [][]float64, error) {
	sym, err := matrix.ToGonumSym(m)
	if err != nil {
		return nil, nil, eigenErrorf(opDense, err)
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, eigenErrorf(opDense, fmt.Errorf("symmetric eigensolver failed: %w", ErrBreakdown))
	}
	values := es.Values(nil)
	var ev mat.Dense
	es.VectorsTo(&ev)

	n := len(values)
	vecs := make([][]float64, n)
	for j := 0; j < n; j++ {
		vecs[j] = mat.Col(nil, j, &ev)
	}

	return values, vecs, nil
}
