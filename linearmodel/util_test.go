package linearmodel

import (
	"testing"

	mat_ "github.com/aouyang1/go-ols/mat"

	"github.com/aouyang1/go-ols/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testModel(t *testing.T, model Regression, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol, "intercept")

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol, "coefficients")

	res, err := model.Predict(x)
	require.Nil(t, err)
	assert.InDeltaSlice(t, mat.Col(nil, 0, y), res, tol, "fitted values")
}

func generateBenchData(nObs, nFeat int) (mat.Matrix, mat.Matrix, error) {
	coef := make([]float64, nFeat)
	for i := range coef {
		coef[i] = float64(i%7) - 3.0
	}

	ds, err := dataset.Simulate(&dataset.SimulateOptions{
		NumObservations: nObs,
		Intercept:       98.3,
		Coef:            coef,
		FeatureMin:      -10.0,
		FeatureMax:      10.0,
		NoiseScale:      3.2,
		Seed:            1,
	})
	if err != nil {
		return nil, nil, err
	}

	x, err := mat_.NewDenseFromArray(ds.X)
	if err != nil {
		return nil, nil, err
	}

	y := mat_.NewColumn(ds.Y)
	return x, y, nil
}
