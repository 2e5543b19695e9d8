// Package matrix offers the storage layouts and kernels shared by the
// geometry pipeline and the eigen engine.
//
// The matrix package provides:
//
//   - Dense, a row-major matrix with safe At/Set and a finite-only numeric policy.
//   - CSR, a compressed-sparse-row matrix that keeps explicit zeros as stored
//     entries (an absent entry means "no edge", a stored 0 means "distance 0").
//   - COO, a triplet assembly format converted to CSR with duplicates summed.
//   - Validators (square, finite, symmetric within a tolerance) and sparse
//     kernels (transpose, union-pattern sums, diagonal shift, products).
//   - A gonum bridge (ToGonum, ToGonumSym, FromGonum) for dense factorizations.
//
// Sparse layouts fit neighborhood graphs where each row holds O(k) entries;
// Dense fits datasets and small operators handed to gonum.
package matrix
