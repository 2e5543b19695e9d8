// Package megaman is a toolkit for manifold learning on point clouds: it
// derives neighborhood graphs from data and computes spectral embeddings and
// Laplacian null spaces with interchangeable eigensolvers.
//
// What is in the box?
//
//	A pipeline of small packages, each usable on its own:
//		• Geometry store: data → adjacency → affinity → Laplacian, cached per stage
//		• Neighborhoods: radius and k-nearest-neighbor graphs (brute force or HNSW)
//		• Affinity: gaussian kernel on stored distances
//		• Laplacians: unnormalized, symmetric normalized, random walk, renormalized, geometric
//		• Isomap on graph geodesics
//		• Eigen engine: dense, Lanczos (arpack), LOBPCG and AMG-preconditioned LOBPCG
//		• Null space extraction with shift-invert and shifted block solvers
//		• Datasets: CSV and Parquet I/O, swiss roll and grid generators
//
// Layout:
//
//	matrix/     — Dense, CSR and COO layouts, sparse kernels, gonum bridge
//	params/     — parameter maps shared by the pipeline stages
//	adjacency/  — neighborhood graphs
//	affinity/   — kernels over adjacency distances
//	laplacian/  — graph Laplacians and their symmetric forms
//	geometry/   — the caching geometry store
//	eigen/      — solver selection, eigendecomposition, null space
//	multigrid/  — smoothed-aggregation AMG backend for the amg solver
//	embedding/  — spectral and Isomap embeddings
//	bfs/        — traversal and connected components of neighborhood graphs
//	dijkstra/   — geodesic distances over neighborhood graphs
//	dataset/    — point set I/O and generators
//	config/     — YAML and environment configuration
//	logging/    — zap loggers
//	metrics/    — Prometheus collectors
//	cmd/megaman — the command-line interface
//
// Quick start:
//
//	g := geometry.New(geometry.WithLaplacian("geometric", nil))
//	_ = g.SetData(x)
//	res, err := embedding.Spectral(g, 2, eigen.NewEngine(), embedding.Options{})
//
//	go install github.com/chanhou/megaman/cmd/megaman@latest
package megaman
