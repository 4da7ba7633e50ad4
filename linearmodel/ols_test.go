package linearmodel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	mat_ "github.com/aouyang1/go-ols/mat"
	"github.com/aouyang1/go-ols/persist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *OLSOptions
		err      error
		expected *OLSOptions
	}{
		"nil": {nil, nil, NewDefaultOLSOptions()},
		"valid": {
			&OLSOptions{
				FitIntercept: true,
			}, nil,
			&OLSOptions{
				FitIntercept: true,
			},
		},
		"negative tolerance": {
			&OLSOptions{
				RankTolerance: -1.0,
			}, ErrNegativeTolerance,
			nil,
		},
		"nan tolerance": {
			&OLSOptions{
				RankTolerance: math.NaN(),
			}, ErrNegativeTolerance,
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestOLSRegression(t *testing.T) {
	tol := 1e-5
	testData := map[string]struct {
		x         [][]float64
		y         []float64
		opt       *OLSOptions
		intercept float64
		coef      []float64
	}{
		"single feature": {
			x:         [][]float64{{1}, {2}, {3}},
			y:         []float64{3, 5, 7},
			intercept: 1.0,
			coef:      []float64{2.0},
		},
		"intercept and slope": {
			x:         [][]float64{{0}, {1}, {2}, {3}, {4}},
			y:         []float64{2, 5, 8, 11, 14},
			intercept: 2.0,
			coef:      []float64{3.0},
		},
		"ols model intercept": {
			x: [][]float64{
				{0, 0},
				{3, 5},
				{9, 20},
				{12, 6},
				{15, 10},
			},
			y:         []float64{2, 31, 109, 62, 87},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"ols model no intercept": {
			x: [][]float64{
				{1, 0, 0},
				{1, 3, 5},
				{1, 9, 20},
				{1, 12, 6},
				{1, 15, 10},
			},
			y: []float64{2, 31, 109, 62, 87},
			opt: &OLSOptions{
				FitIntercept: false,
			},
			intercept: 0.0,
			coef:      []float64{2.0, 3.0, 4.0},
		},
		"minimal observations interpolate": {
			x: [][]float64{
				{1, 2},
				{4, -1},
				{0, 5},
			},
			y:         []float64{3.5, -1, 9},
			intercept: -1.0,
			coef:      []float64{0.5, 2.0},
		},
		"features on very different scales": {
			x: [][]float64{
				{1e-4, 1e7},
				{2e-4, 3e7},
				{3e-4, 2e7},
				{5e-4, 7e7},
			},
			y:         []float64{31.2, 91.4, 61.6, 212},
			intercept: 1.0,
			coef:      []float64{2000.0, 3e-6},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := mat_.NewDenseFromArray(td.x)
			require.Nil(t, err)

			y := mat.NewDense(len(td.y), 1, td.y)

			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			testModel(t, model, x, y, td.intercept, td.coef, tol)
		})
	}
}

func TestOLSRegressionLeastSquares(t *testing.T) {
	// points scattered around y = 1 + 2x, solution from the normal equations
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewDense(4, 1, []float64{1.1, 2.9, 5.2, 6.8})

	model, err := Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, 1.09, model.Intercept(), 1e-9)
	assert.InDeltaSlice(t, []float64{1.94}, model.Coef(), 1e-9)
}

func TestOLSRegressionFitErrors(t *testing.T) {
	testData := map[string]struct {
		x   mat.Matrix
		y   mat.Matrix
		opt *OLSOptions
		err error
	}{
		"no training matrix": {
			y:   mat.NewDense(1, 1, nil),
			err: ErrNoTrainingMatrix,
		},
		"no target matrix": {
			x:   mat.NewDense(1, 1, nil),
			err: ErrNoTargetMatrix,
		},
		"target length mismatch": {
			x:   mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:   mat.NewDense(2, 1, []float64{1, 2}),
			err: ErrTargetLenMismatch,
		},
		"target not a column": {
			x:   mat.NewDense(3, 1, []float64{1, 2, 3}),
			y:   mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}),
			err: ErrTargetNotColumn,
		},
		"underdetermined with intercept": {
			x:   mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
			y:   mat.NewDense(2, 1, []float64{1, 2}),
			err: ErrUnderdetermined,
		},
		"underdetermined without intercept": {
			x:   mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
			y:   mat.NewDense(2, 1, []float64{1, 2}),
			opt: &OLSOptions{FitIntercept: false, RankTolerance: DefaultRankTolerance},
			err: ErrUnderdetermined,
		},
		"duplicate feature": {
			x:   mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4}),
			y:   mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			err: ErrRankDeficient,
		},
		"constant feature collides with intercept": {
			x:   mat.NewDense(3, 1, []float64{5, 5, 5}),
			y:   mat.NewDense(3, 1, []float64{1, 2, 3}),
			err: ErrRankDeficient,
		},
		"all zero design": {
			x:   mat.NewDense(3, 1, []float64{0, 0, 0}),
			y:   mat.NewDense(3, 1, []float64{1, 2, 3}),
			opt: &OLSOptions{FitIntercept: false},
			err: ErrRankDeficient,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)

			err = model.Fit(td.x, td.y)
			assert.ErrorIs(t, err, td.err)
			assert.Nil(t, model.Parameters())
		})
	}
}

func TestOLSRegressionFailedFitKeepsParameters(t *testing.T) {
	model, err := Fit(
		mat.NewDense(3, 1, []float64{1, 2, 3}),
		mat.NewDense(3, 1, []float64{3, 5, 7}),
	)
	require.Nil(t, err)

	err = model.Fit(
		mat.NewDense(3, 1, []float64{5, 5, 5}),
		mat.NewDense(3, 1, []float64{3, 5, 7}),
	)
	require.ErrorIs(t, err, ErrRankDeficient)
	assert.InDeltaSlice(t, []float64{1, 2}, model.Parameters(), 1e-9)
}

func TestOLSRegressionDoesNotMutateInput(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{0, 0, 3, 5, 9, 20, 12, 6})
	y := mat.NewDense(4, 1, []float64{2, 31, 109, 62})
	xBefore := mat.DenseCopyOf(x)
	yBefore := mat.DenseCopyOf(y)

	_, err := Fit(x, y)
	require.Nil(t, err)

	xm, xn := x.Dims()
	assert.Equal(t, 4, xm)
	assert.Equal(t, 2, xn)
	assert.True(t, mat.Equal(xBefore, x))
	assert.True(t, mat.Equal(yBefore, y))
}

func TestOLSRegressionPredict(t *testing.T) {
	model, err := Fit(
		mat.NewDense(3, 1, []float64{1, 2, 3}),
		mat.NewDense(3, 1, []float64{3, 5, 7}),
	)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, model.Parameters(), 1e-9)

	points := mat.NewDense(1, 1, []float64{4})
	res, err := model.Predict(points)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{9}, res, 1e-9)

	again, err := model.Predict(points)
	require.Nil(t, err)
	assert.Equal(t, res, again)
}

func TestOLSRegressionPredictTo(t *testing.T) {
	model, err := NewOLSRegressionFromParameters([]float64{1, 2, -1, 0.5, 3, 4})
	require.Nil(t, err)

	x := mat.NewDense(2, 5, []float64{
		1, 1, 1, 1, 1,
		0, 2, 0, 0, 1,
	})

	dst := make([]float64, 2)
	res, err := model.PredictTo(dst, x)
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1 + 2 - 1 + 0.5 + 3 + 4, 1 - 2 + 4}, dst, 1e-12)
	assert.Equal(t, dst, res)

	_, err = model.PredictTo(make([]float64, 3), x)
	assert.ErrorIs(t, err, ErrOutputLenMismatch)
}

func TestOLSRegressionPredictErrors(t *testing.T) {
	unfitted, err := NewOLSRegression(nil)
	require.Nil(t, err)
	_, err = unfitted.Predict(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, ErrNotFitted)

	model, err := NewOLSRegressionFromParameters([]float64{1, 2})
	require.Nil(t, err)

	_, err = model.Predict(nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)

	_, err = model.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)
}

func TestNewOLSRegressionFromParameters(t *testing.T) {
	params := []float64{1, 2, 3}
	model, err := NewOLSRegressionFromParameters(params)
	require.Nil(t, err)

	params[0] = 100
	assert.Equal(t, 1.0, model.Intercept())
	assert.Equal(t, []float64{2, 3}, model.Coef())
	assert.Equal(t, 2, model.NumFeatures())

	out := model.Parameters()
	out[1] = 100
	assert.Equal(t, []float64{1, 2, 3}, model.Parameters())

	_, err = NewOLSRegressionFromParameters(nil)
	assert.ErrorIs(t, err, ErrNoParameters)

	_, err = NewOLSRegressionFromParameters([]float64{4})
	assert.ErrorIs(t, err, ErrNoParameters)
}

func TestOLSRegressionSaveLoad(t *testing.T) {
	x, y, err := generateBenchData(200, 5)
	require.Nil(t, err)

	model, err := Fit(x, y)
	require.Nil(t, err)

	for _, ext := range []string{"json", "csv", "txt", "bin"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model."+ext)
			require.Nil(t, model.Save(path))

			loaded, err := NewOLSRegressionFromFile(path)
			require.Nil(t, err)
			assert.InDeltaSlice(t, model.Parameters(), loaded.Parameters(), 1e-12)

			expected, err := model.Predict(x)
			require.Nil(t, err)
			res, err := loaded.Predict(x)
			require.Nil(t, err)
			assert.InDeltaSlice(t, expected, res, 1e-9)
		})
	}
}

func TestOLSRegressionLoadFailureKeepsParameters(t *testing.T) {
	model, err := NewOLSRegressionFromParameters([]float64{1, 2})
	require.Nil(t, err)

	dir := t.TempDir()
	err = model.Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, []float64{1, 2}, model.Parameters())

	bad := filepath.Join(dir, "bad.csv")
	require.Nil(t, os.WriteFile(bad, []byte("1\nnope\n"), 0o644))
	err = model.Load(bad)
	assert.ErrorIs(t, err, persist.ErrParseValue)
	assert.Equal(t, []float64{1, 2}, model.Parameters())

	interceptOnly := filepath.Join(dir, "intercept.json")
	require.Nil(t, persist.Save(interceptOnly, []float64{4}))
	err = model.Load(interceptOnly)
	assert.ErrorIs(t, err, ErrNoParameters)
	assert.Equal(t, []float64{1, 2}, model.Parameters())

	unfitted, err := NewOLSRegression(nil)
	require.Nil(t, err)
	assert.ErrorIs(t, unfitted.Save(filepath.Join(dir, "out.json")), ErrNotFitted)
}

func BenchmarkOLSRegression(b *testing.B) {
	x, y, err := generateBenchData(1000, 100)
	if err != nil {
		b.Fatal(err)
	}

	for i := 0; i < b.N; i++ {
		model, err := NewOLSRegression(nil)
		if err != nil {
			b.Error(err)
			continue
		}
		if err := model.Fit(x, y); err != nil {
			b.Error(err)
			continue
		}
	}
}

func BenchmarkOLSRegressionPredict(b *testing.B) {
	x, y, err := generateBenchData(1000, 100)
	if err != nil {
		b.Fatal(err)
	}
	model, err := Fit(x, y)
	if err != nil {
		b.Fatal(err)
	}

	dst := make([]float64, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := model.PredictTo(dst, x); err != nil {
			b.Error(err)
		}
	}
}
