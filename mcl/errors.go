package mcl

import "github.com/pkg/errors"

// ErrDegenerateWeights is returned when the population's total weight is
// not strictly positive, which leaves no distribution to normalize. The
// failing cycle aborts rather than resampling from NaN weights.
var ErrDegenerateWeights = errors.New("particle weights do not sum to a positive total")

// ErrNotInitialized is returned when state is requested before the filter
// has seen its first scan/odometry pair.
var ErrNotInitialized = errors.New("filter has no particle population yet")
