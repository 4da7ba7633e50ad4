// Package dataset holds tabular observations used to fit and evaluate linear models
package dataset

import (
	"errors"
	"fmt"

	mat_ "github.com/aouyang1/go-ols/mat"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoObservations    = errors.New("no observations")
	ErrMismatchedDataLen = errors.New("features have a different length than responses")
	ErrRaggedRows        = errors.New("observations have different numbers of features")
	ErrLabelLenMismatch  = errors.New("number of labels does not match number of features")
	ErrNoResponses       = errors.New("dataset has no responses")
	ErrNoFeatures        = errors.New("observations have no features")
)

// Dataset stores one row of feature values per observation along with the optional response
// of each observation. Y is nil for prediction inputs.
type Dataset struct {
	Labels []string
	X      [][]float64
	Y      []float64
}

// New returns a Dataset after checking that every observation has the same non-zero number of
// features and, when y is provided, exactly one response. Inputs are copied.
func New(x [][]float64, y []float64) (*Dataset, error) {
	if len(x) == 0 {
		return nil, ErrNoObservations
	}
	if y != nil && len(y) != len(x) {
		return nil, fmt.Errorf(
			"features have length of %d, but responses have a length of %d, %w",
			len(x), len(y), ErrMismatchedDataLen,
		)
	}

	n := len(x[0])
	if n == 0 {
		return nil, ErrNoFeatures
	}
	xCopy := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d features, expected %d, %w", i, len(row), n, ErrRaggedRows)
		}
		xCopy[i] = make([]float64, n)
		copy(xCopy[i], row)
	}

	var yCopy []float64
	if y != nil {
		yCopy = make([]float64, len(y))
		copy(yCopy, y)
	}

	return &Dataset{
		X: xCopy,
		Y: yCopy,
	}, nil
}

// WithLabels names the features of the dataset
func (d *Dataset) WithLabels(labels []string) (*Dataset, error) {
	if len(labels) != d.NumFeatures() {
		return nil, fmt.Errorf("got %d labels for %d features, %w", len(labels), d.NumFeatures(), ErrLabelLenMismatch)
	}
	d.Labels = labels
	return d, nil
}

// Len returns the number of observations
func (d *Dataset) Len() int {
	return len(d.X)
}

// NumFeatures returns the number of features per observation
func (d *Dataset) NumFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// FeatureMatrix returns the observations as a rows by features matrix
func (d *Dataset) FeatureMatrix() (*mat.Dense, error) {
	if len(d.X) == 0 {
		return nil, ErrNoObservations
	}
	return mat_.NewDenseFromArray(d.X)
}

// Matrices returns the feature matrix and the single column response matrix
func (d *Dataset) Matrices() (*mat.Dense, *mat.Dense, error) {
	if d.Y == nil {
		return nil, nil, ErrNoResponses
	}
	if len(d.Y) != len(d.X) {
		return nil, nil, fmt.Errorf(
			"features have length of %d, but responses have a length of %d, %w",
			len(d.X), len(d.Y), ErrMismatchedDataLen,
		)
	}
	x, err := d.FeatureMatrix()
	if err != nil {
		return nil, nil, err
	}
	return x, mat_.NewColumn(d.Y), nil
}
