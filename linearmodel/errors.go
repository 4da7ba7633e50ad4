package linearmodel

import (
	"errors"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrNegativeTolerance  = errors.New("rank tolerance must be non-negative")
	ErrTargetLenMismatch  = errors.New("target length does not match training rows")
	ErrTargetNotColumn    = errors.New("target must be a single column")
	ErrNoTrainingMatrix   = errors.New("no training matrix")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoFeatures         = errors.New("training matrix has no feature columns")
	ErrUnderdetermined    = errors.New("fewer observations than model parameters")
	ErrRankDeficient      = errors.New("design matrix is rank deficient")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrOutputLenMismatch  = errors.New("output slice length does not match design matrix rows")
	ErrNotFitted          = errors.New("model has not been fit or loaded")
	ErrNoParameters       = errors.New("parameter vector must hold the intercept and at least one coefficient")
	ErrLabelLenMismatch   = errors.New("number of labels does not match number of coefficients")
)
