// Package plot renders fitted regressions as Apache Echarts html pages
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrSeriesLenMismatch = errors.New("series have different lengths")

// LineSeries generates an echart multi-line chart indexed by observation number. Every series
// in y must have the same length. Observations where any series is NaN are dropped.
func LineSeries(title string, seriesName []string, y [][]float64) (*charts.Line, error) {
	if len(seriesName) != len(y) {
		return nil, fmt.Errorf("got %d names for %d series, %w", len(seriesName), len(y), ErrSeriesLenMismatch)
	}

	n := 0
	if len(y) > 0 {
		n = len(y[0])
	}
	for i := range y {
		if len(y[i]) != n {
			return nil, fmt.Errorf("series %s has length %d, expected %d, %w", seriesName[i], len(y[i]), n, ErrSeriesLenMismatch)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	idx := make([]int, 0, n)
	lineData := make([][]opts.LineData, len(y))
	for i := range lineData {
		lineData[i] = make([]opts.LineData, 0, n)
	}
	for j := 0; j < n; j++ {
		skip := false
		for i := range y {
			if math.IsNaN(y[i][j]) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		idx = append(idx, j)
		for i := range y {
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(idx)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line, nil
}

// LineFit plots the observed responses against the model predictions
func LineFit(actual, predicted []float64) (*charts.Line, error) {
	return LineSeries(
		"Regression Fit",
		[]string{"Actual", "Predicted"},
		[][]float64{actual, predicted},
	)
}

// PlotFit writes an html page with the fit and the residual of each observation
func PlotFit(w io.Writer, actual, predicted []float64) error {
	fit, err := LineFit(actual, predicted)
	if err != nil {
		return err
	}

	residual := make([]float64, len(actual))
	for i := range actual {
		residual[i] = actual[i] - predicted[i]
	}
	res, err := LineSeries("Regression Residual", []string{"Residual"}, [][]float64{residual})
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.AddCharts(fit, res)
	return page.Render(w)
}
