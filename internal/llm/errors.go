package llm

import (
	"fmt"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
)

type LLMErrorCause string

const (
	ErrCauseUnknownProvider       LLMErrorCause = "unknown provider"
	ErrCauseMissingAPIKey         LLMErrorCause = "missing api key"
	ErrCauseRequestFailed         LLMErrorCause = "completion request failed"
	ErrCauseEmptyCompletion       LLMErrorCause = "empty completion"
	ErrCausePDFUnreadable         LLMErrorCause = "pdf unreadable"
	ErrCauseMalformedAffiliations LLMErrorCause = "malformed affiliations"
)

type LLMError struct {
	Message   string
	Retryable bool
	Cause     LLMErrorCause
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm error: %s: %s", e.Cause, e.Message)
}

func (e *LLMError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *LLMError) IsRetryable() bool {
	return e.Retryable
}

// mapLLMErrorToMetadataCause maps llm-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapLLMErrorToMetadataCause(err *LLMError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseRequestFailed, ErrCauseEmptyCompletion, ErrCauseUnknownProvider, ErrCauseMissingAPIKey:
		return metadata.CauseLLMFailure
	case ErrCausePDFUnreadable, ErrCauseMalformedAffiliations:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
