// Package mat holds small helpers for building gonum matrices out of plain slices
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrColMismatch = errors.New("column size mismatch")

// NewDenseFromArray converts a slice of observation rows into a dense matrix. Every row must
// have the same number of features.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewColumn wraps a response slice as a single column matrix. The slice is shared.
func NewColumn(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, y)
}

// WithIntercept returns a new matrix with a constant 1.0 column placed before the columns
// of x. x is left untouched.
func WithIntercept(x mat.Matrix) *mat.Dense {
	m, n := x.Dims()

	ones := make([]float64, m)
	floats.AddConst(1.0, ones)

	out := mat.NewDense(m, n+1, nil)
	out.SetCol(0, ones)
	if n > 0 {
		out.Slice(0, m, 1, n+1).(*mat.Dense).Copy(x)
	}
	return out
}
