package sheet

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"google.golang.org/api/googleapi"
)

type SheetErrorCause string

const (
	ErrCauseClientInit    SheetErrorCause = "client init failed"
	ErrCauseCreateFailure SheetErrorCause = "create failed"
	ErrCauseWriteFailure  SheetErrorCause = "write failed"
	ErrCauseFormatFailure SheetErrorCause = "format failed"
	ErrCauseShareFailure  SheetErrorCause = "share failed"
	ErrCauseReadFailure   SheetErrorCause = "read failed"
	ErrCauseEmptyTable    SheetErrorCause = "empty table"
)

type SheetError struct {
	Message   string
	Retryable bool
	Cause     SheetErrorCause
	// StatusCode is the API status when the service answered, 0 otherwise.
	StatusCode int
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet error: %s: %s", e.Cause, e.Message)
}

func (e *SheetError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *SheetError) IsRetryable() bool {
	return e.Retryable
}

func newSheetError(cause SheetErrorCause, err error) *SheetError {
	sheetErr := &SheetError{
		Message: err.Error(),
		Cause:   cause,
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		sheetErr.StatusCode = apiErr.Code
		sheetErr.Retryable = apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
		if apiErr.Message != "" {
			sheetErr.Message = apiErr.Message
		}
	}
	return sheetErr
}

// mapSheetErrorToMetadataCause maps sheet-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapSheetErrorToMetadataCause(err *SheetError) metadata.ErrorCause {
	switch {
	case err.StatusCode == http.StatusUnauthorized,
		err.StatusCode == http.StatusForbidden,
		err.StatusCode == http.StatusTooManyRequests:
		return metadata.CausePolicyDisallow
	case err.Cause == ErrCauseEmptyTable:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseSpreadsheetFailure
	}
}
