// SPDX-License-Identifier: MIT

// Package bfs runs breadth-first search over the stored-entry pattern of a
// square sparse matrix, treating every stored (i, j) as an edge i–j.
//
// What
//
//   - BFS explores rows in non-decreasing hop distance from a start row and
//     returns a Result holding the visit Order, the Depth of every row
//     (-1 when unreached) and the Parent link of the BFS tree.
//   - Components labels every row with its connected component.
//
// Edges are undirected: a stored (i, j) lets the search move i→j and j→i,
// so an asymmetric k-nearest-neighbor adjacency yields the components of its
// symmetrization. Diagonal entries are ignored. A stored 0 is still an edge:
// it marks two coincident points, not a missing neighbor.
//
// Determinism
//
//	Neighbors are visited in ascending column order, so the visit sequence and
//	the component labels are reproducible.
//
// Complexity (N = rows, E = stored entries)
//
//   - Time:   O(N + E)
//   - Memory: O(N + E) for the symmetrized neighbor lists.
package bfs
