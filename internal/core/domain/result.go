package domain

import "time"

// BuildStatus is the outcome of a build attempt.
type BuildStatus uint8

const (
	// StatusOK means compilation and post-processing succeeded.
	StatusOK BuildStatus = iota
	// StatusFailed means a step of the attempt reported an error.
	StatusFailed
)

// String returns the status name.
func (s BuildStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BuildResult is returned by every build attempt.
type BuildResult struct {
	Status BuildStatus
	// Reason holds the underlying error when Status is StatusFailed.
	Reason  error
	Modules int
	Elapsed time.Duration
}

// OK reports whether the attempt succeeded.
func (r BuildResult) OK() bool {
	return r.Status == StatusOK
}

// Succeeded creates a successful BuildResult.
func Succeeded(modules int, elapsed time.Duration) BuildResult {
	return BuildResult{Status: StatusOK, Modules: modules, Elapsed: elapsed}
}

// Failed creates a failed BuildResult carrying its reason.
func Failed(reason error, elapsed time.Duration) BuildResult {
	return BuildResult{Status: StatusFailed, Reason: reason, Elapsed: elapsed}
}
