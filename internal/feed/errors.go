package feed

import (
	"fmt"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseNotHTML          ExtractionErrorCause = "not html"
	ErrCauseAbstractNotFound ExtractionErrorCause = "abstract not found"
	ErrCauseLinkNotFound     ExtractionErrorCause = "link not found"
	ErrCauseBadEntry         ExtractionErrorCause = "malformed listing entry"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapExtractionErrorToMetadataCause maps feed-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseAbstractNotFound, ErrCauseLinkNotFound, ErrCauseBadEntry:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
