package analysis

import "fmt"

// InsufficientDataError reports that an operation's statistical
// precondition is not met (too few plots or observations). No partial
// result accompanies it.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}

// AnalysisError wraps a computational failure from the numeric layer.
// These are deterministic for a given input, so callers should not
// retry.
type AnalysisError struct {
	Reason string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis error: %s", e.Reason)
}
