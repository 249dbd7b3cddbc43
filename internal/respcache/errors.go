package respcache

import (
	"fmt"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCausePathError     StoreErrorCause = "path error"
	ErrCauseOpenFailure   StoreErrorCause = "open failed"
	ErrCauseReadFailure   StoreErrorCause = "read failed"
	ErrCauseWriteFailure  StoreErrorCause = "write failed"
	ErrCauseDiskFull      StoreErrorCause = "disk is full"
	ErrCauseEncodeFailure StoreErrorCause = "encode failed"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
	Path      string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache store error: %s: %s", e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStoreErrorToMetadataCause maps store-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStoreErrorToMetadataCause(err *StoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseEncodeFailure:
		return metadata.CauseCacheCorrupt
	case ErrCausePathError, ErrCauseOpenFailure, ErrCauseReadFailure, ErrCauseWriteFailure, ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
