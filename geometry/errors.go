// SPDX-License-Identifier: MIT

package geometry

import (
	"errors"
	"fmt"

	"github.com/chanhou/megaman/matrix"
)

var (
	// ErrInvalidInput: the dataset is nil, empty, or uses an unsupported layout.
	ErrInvalidInput = errors.New("geometry: invalid input")

	// ErrMissingData: a derivation was requested with no upstream source.
	ErrMissingData = errors.New("geometry: no data matrix exists, adjacency matrix cannot be computed")

	// ErrShape: a matrix injected into a square slot is not square.
	ErrShape = matrix.ErrNonSquare
)

func geometryErrorf(op string, err error) error {
	return fmt.Errorf("geometry.%s: %w", op, err)
}
