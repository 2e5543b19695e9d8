// SPDX-License-Identifier: MIT

// Package dijkstra computes graph geodesic distances over a sparse distance
// adjacency matrix, as used by Isomap.
//
// Every stored entry (i, j, d) is an undirected edge of length d ≥ 0; a stored
// 0 joins coincident points. Absent entries are not edges. Rows that cannot be
// reached keep distance +Inf.
//
// Complexity (N rows, E stored entries):
//
//   - Dijkstra / Graph.From: O((N + E) log N) with a lazy binary heap.
//   - AllPairs: N runs, O(N·(N + E) log N) time and O(N²) memory.
package dijkstra
