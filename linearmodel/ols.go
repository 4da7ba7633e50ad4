// Package linearmodel fits ordinary least squares models with QR factorization and applies
// them to new observations.
package linearmodel

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-ols/floatsunrolled"
	mat_ "github.com/aouyang1/go-ols/mat"
	"github.com/aouyang1/go-ols/persist"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultRankTolerance is the smallest ratio between a diagonal entry of R and the norm of the
// matching design matrix column that is still considered linearly independent
const DefaultRankTolerance = 1e-10

// OLSOptions represents input options to run the OLS Regression
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true. When false
	// the intercept is fixed at 0.0.
	FitIntercept bool

	// RankTolerance controls rank deficiency detection. A value of 0 only rejects exactly
	// singular systems.
	RankTolerance float64
}

// Validate runs basic validation on OLS options
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	if o.RankTolerance < 0 || math.IsNaN(o.RankTolerance) {
		return nil, fmt.Errorf("got %f, %w", o.RankTolerance, ErrNegativeTolerance)
	}

	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS Regression options
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept:  true,
		RankTolerance: DefaultRankTolerance,
	}
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	fitted    bool
}

// NewOLSRegression initializes an ordinary least squares model ready for fitting
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// NewOLSRegressionFromParameters builds a ready to use model from a parameter vector with the
// intercept at index 0 followed by one coefficient per feature. At least one coefficient is
// required. The input is copied.
func NewOLSRegressionFromParameters(params []float64) (*OLSRegression, error) {
	o, err := NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := o.setParameters(params); err != nil {
		return nil, err
	}
	return o, nil
}

// NewOLSRegressionFromFile loads a parameter vector written by Save
func NewOLSRegressionFromFile(path string) (*OLSRegression, error) {
	o, err := NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := o.Load(path); err != nil {
		return nil, err
	}
	return o, nil
}

// Fit is a shorthand for fitting a model with default options
func Fit(x, y mat.Matrix) (*OLSRegression, error) {
	o, err := NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := o.Fit(x, y); err != nil {
		return nil, err
	}
	return o, nil
}

// Fit the model according to the given training data. x has one row per observation and y is
// a single column with one response per observation. Neither input is modified. A failed fit
// leaves any previous parameters in place.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()
	if n == 0 {
		return ErrNoFeatures
	}

	ym, yn := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}
	if yn != 1 {
		return fmt.Errorf("target has %d columns, %w", yn, ErrTargetNotColumn)
	}

	if o.opt.FitIntercept {
		n++
	}
	if m < n {
		return fmt.Errorf("got %d observations for %d parameters, %w", m, n, ErrUnderdetermined)
	}

	a := x
	if o.opt.FitIntercept {
		a = mat_.WithIntercept(x)
	}

	yT := y.T()

	qr := new(mat.QR)
	qr.Factorize(a)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)

	if err := o.checkRank(a, r, n); err != nil {
		return err
	}

	yq := new(mat.Dense)
	yq.Mul(yT, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.intercept = 0.0
		o.coef = c
	}
	o.fitted = true

	return nil
}

// checkRank rejects an upper triangular R whose diagonal has an entry that is negligible
// relative to the norm of its design matrix column. R_ii is the part of column i orthogonal to
// the columns before it, so the ratio does not depend on the units of each feature.
func (o *OLSRegression) checkRank(a, r mat.Matrix, n int) error {
	m, _ := a.Dims()
	col := make([]float64, m)
	for i := 0; i < n; i++ {
		mat.Col(col, i, a)
		cutoff := o.opt.RankTolerance * floats.Norm(col, 2)

		d := math.Abs(r.At(i, i))
		if d == 0 || d <= cutoff || math.IsNaN(d) {
			return fmt.Errorf("column %d of the design matrix is linearly dependent, %w", i, ErrRankDeficient)
		}
	}
	return nil
}

// Predict using the OLS model. Returns one prediction per row of x in the same order.
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	return o.PredictTo(nil, x)
}

// PredictTo writes one prediction per row of x into dst. A nil dst is allocated, otherwise
// it must have one slot per row of x.
func (o *OLSRegression) PredictTo(dst []float64, x mat.Matrix) ([]float64, error) {
	if !o.fitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	if dst == nil {
		dst = make([]float64, m)
	} else if len(dst) != m {
		return nil, fmt.Errorf("got output length %d, but design matrix has %d rows, %w", len(dst), m, ErrOutputLenMismatch)
	}

	obs := make([]float64, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			obs[j] = x.At(i, j)
		}
		dst[i] = o.intercept + floatsunrolled.Dot(o.coef, obs)
	}
	return dst, nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// Parameters returns a copy of the full parameter vector, intercept first
func (o *OLSRegression) Parameters() []float64 {
	if !o.fitted {
		return nil
	}
	p := make([]float64, 0, len(o.coef)+1)
	p = append(p, o.intercept)
	return append(p, o.coef...)
}

// NumFeatures returns the number of features expected by Predict
func (o *OLSRegression) NumFeatures() int {
	return len(o.coef)
}

// Save writes the parameter vector to path. The encoding follows the file extension.
func (o *OLSRegression) Save(path string) error {
	if !o.fitted {
		return ErrNotFitted
	}
	return persist.Save(path, o.Parameters())
}

// Load replaces the parameter vector with the one stored at path. On failure the model is
// left unchanged.
func (o *OLSRegression) Load(path string) error {
	params, err := persist.Load(path)
	if err != nil {
		return err
	}
	return o.setParameters(params)
}

func (o *OLSRegression) setParameters(params []float64) error {
	if len(params) < 2 {
		return fmt.Errorf("got %d parameters, %w", len(params), ErrNoParameters)
	}
	coef := make([]float64, len(params)-1)
	copy(coef, params[1:])

	o.intercept = params[0]
	o.coef = coef
	o.fitted = true
	return nil
}
