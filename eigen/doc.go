// Package eigen computes extreme eigenpairs and null spaces of square
// matrices with four interchangeable strategies:
//
//   - dense:  full symmetric (gonum EigenSym) or general (gonum Eigen) solve;
//   - arpack: restarted Krylov iteration (thick-restart Lanczos for symmetric
//     input, Arnoldi otherwise) and shift-invert for null spaces;
//   - lobpcg: block preconditioned conjugate gradient, symmetric input only;
//   - amg:    lobpcg preconditioned by an injected MultigridBackend.
//
// "auto" picks a strategy from the problem size. Every strategy returns the
// same conventions: real eigenvalues, unit-norm eigenvectors whose
// largest-magnitude entry is positive, ordered by the caller's Largest flag.
//
// Randomized starts are driven by an explicit seed, so equal seeds give equal
// results. Failures are reported through the sentinels in errors.go.
//
// Quick example:
//
//	eng := eigen.NewEngine(eigen.WithMultigrid(multigrid.NewBackend()))
//	opts := eigen.DefaultDecomposeOptions()
//	opts.Seed = 42
//	pairs, err := eng.Decompose(laplacian, 2, opts)
package eigen
