package forkreduce

import "errors"

// Sentinel errors for fatal setup failures. Worker-internal failures are
// never surfaced as errors; they are logged and the job continues.
var (
	ErrNilSpec           = errors.New("nil job spec")
	ErrNilResult         = errors.New("nil job result")
	ErrInvalidSplitCount = errors.New("split count must be positive")
	ErrMissingMapFunc    = errors.New("job spec has no map function")
	ErrMissingReduceFunc = errors.New("job spec has no reduce function")
)
