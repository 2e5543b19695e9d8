// SPDX-License-Identifier: MIT

// Package geometry holds a dataset and the matrices derived from it:
// the adjacency (neighbor distances), affinity (kernel similarities) and
// Laplacian matrices used by spectral embeddings.
//
// Each derived matrix lives in its own slot with three entry points:
//
//	Compute*  derive lazily, merging params over the slot's sticky params,
//	          and serve from cache while the merged params are unchanged;
//	Set*      inject a precomputed square matrix;
//	Clear*    empty the slot.
//
// Slots are independent. Replacing the dataset does not invalidate a cached
// adjacency matrix, and clearing the Laplacian leaves the affinity in place.
// Callers that change inputs recompute downstream stages explicitly.
//
// Example:
//
//	g := geometry.New(
//		geometry.WithAdjacency("brute", geometry.Params{"radius": 1.0}),
//		geometry.WithLaplacian("geometric", nil),
//	)
//	if err := g.SetData(x); err != nil {
//		return err
//	}
//	res, err := g.ComputeLaplacian(nil, false, true)
//
// The collaborators default to the adjacency, affinity and laplacian
// packages and can be replaced with WithAdjacencyFunc and friends.
package geometry
