package predictor

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrPredictorFailed = errors.New("predictor invocation failed")
)
