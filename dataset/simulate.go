package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidObservations = errors.New("number of observations must be positive")
	ErrInvalidFeatureRange = errors.New("feature min must be less than feature max")
	ErrNegativeNoise       = errors.New("noise scale must be non-negative")
)

// SimulateOptions describes a synthetic affine relationship
// y = Intercept + sum(Coef[k]*x[k]) + N(0, NoiseScale^2) with features drawn uniformly from
// [FeatureMin, FeatureMax).
type SimulateOptions struct {
	NumObservations int
	Intercept       float64
	Coef            []float64
	FeatureMin      float64
	FeatureMax      float64
	NoiseScale      float64

	// Seed makes the draw reproducible. The same seed and options always yield the same data.
	Seed uint64
}

// NewDefaultSimulateOptions returns 100 noiseless observations of y = 1 + 2x
func NewDefaultSimulateOptions() *SimulateOptions {
	return &SimulateOptions{
		NumObservations: 100,
		Intercept:       1.0,
		Coef:            []float64{2.0},
		FeatureMin:      0.0,
		FeatureMax:      10.0,
	}
}

// Validate runs basic validation on simulate options
func (s *SimulateOptions) Validate() (*SimulateOptions, error) {
	if s == nil {
		s = NewDefaultSimulateOptions()
	}
	if s.NumObservations <= 0 {
		return nil, fmt.Errorf("got %d, %w", s.NumObservations, ErrInvalidObservations)
	}
	if s.FeatureMin >= s.FeatureMax {
		return nil, fmt.Errorf("got [%f, %f), %w", s.FeatureMin, s.FeatureMax, ErrInvalidFeatureRange)
	}
	if s.NoiseScale < 0 {
		return nil, fmt.Errorf("got %f, %w", s.NoiseScale, ErrNegativeNoise)
	}
	return s, nil
}

// Simulate draws a synthetic dataset following the options
func Simulate(opt *SimulateOptions) (*Dataset, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))

	m := opt.NumObservations
	n := len(opt.Coef)

	x := make([][]float64, m)
	for i := range x {
		obs := make([]float64, n)
		for j := range obs {
			obs[j] = opt.FeatureMin + rng.Float64()*(opt.FeatureMax-opt.FeatureMin)
		}
		x[i] = obs
	}

	y := GenerateConstY(m, opt.Intercept).
		Add(GenerateLinearY(x, opt.Coef)).
		Add(GenerateNoise(rng, m, opt.NoiseScale))

	return &Dataset{
		X: x,
		Y: y,
	}, nil
}

// Series is a response vector that can be built up from several components
type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateLinearY returns the weighted sum of each observation's features
func GenerateLinearY(x [][]float64, coef []float64) Series {
	y := make([]float64, 0, len(x))
	for _, obs := range x {
		y = append(y, floats.Dot(obs, coef))
	}
	return Series(y)
}

func GenerateNoise(rng *rand.Rand, n int, noiseScale float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if noiseScale == 0 {
			y = append(y, 0)
			continue
		}
		y = append(y, rng.NormFloat64()*noiseScale)
	}
	return Series(y)
}
