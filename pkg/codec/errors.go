package codec

import (
	"fmt"

	"github.com/rohmanhakim/paper-review/pkg/failure"
)

type CodecErrorCause string

const (
	ErrCauseInvalidUTF8   CodecErrorCause = "invalid utf-8"
	ErrCauseInvalidBase64 CodecErrorCause = "invalid base64"
	ErrCauseInvalidGzip   CodecErrorCause = "invalid gzip"
	ErrCauseCompress      CodecErrorCause = "compression failed"
	ErrCauseSerialize     CodecErrorCause = "serialize failed"
)

type CodecError struct {
	Message string
	Cause   CodecErrorCause
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec error: %s: %s", e.Cause, e.Message)
}

// A payload that cannot be encoded or decoded never heals on retry.
func (e *CodecError) Severity() failure.Severity {
	return failure.SeverityFatal
}
