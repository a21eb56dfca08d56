package loader

import "errors"

var (
	// ErrEmptyDocuments indicates a fetch that completed without yielding
	// any documents, even after the single empty-result retry.
	ErrEmptyDocuments = errors.New("no documents extracted")

	// ErrUnsupportedStrategy indicates an unknown strategy name.
	ErrUnsupportedStrategy = errors.New("unsupported loader strategy")

	// ErrHTTPStatus indicates a non-2xx response from the target.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// ReasonSkipped is the failure reason recorded for URLs excluded by the
// skip list. Skipping is a policy outcome, not an error.
const ReasonSkipped = "Skipped"
