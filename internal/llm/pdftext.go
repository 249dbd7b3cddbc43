package llm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dslipak/pdf"
)

// PDFTextLimit is how many characters of paper text are sent to the model.
const PDFTextLimit = 4000

var pdfMagic = []byte("%PDF-")

// ExtractPDFText returns the plain text of a PDF document, cut to at most
// limit characters. A non-positive limit keeps the whole text.
func ExtractPDFText(data []byte, limit int) (text string, err error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", &LLMError{
			Message:   "document does not start with a PDF header",
			Retryable: false,
			Cause:     ErrCausePDFUnreadable,
		}
	}

	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &LLMError{
				Message:   fmt.Sprintf("parse pdf: %v", r),
				Retryable: false,
				Cause:     ErrCausePDFUnreadable,
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &LLMError{
			Message:   fmt.Sprintf("open pdf: %v", err),
			Retryable: false,
			Cause:     ErrCausePDFUnreadable,
		}
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &LLMError{
			Message:   fmt.Sprintf("read pdf text: %v", err),
			Retryable: false,
			Cause:     ErrCausePDFUnreadable,
		}
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", &LLMError{
			Message:   fmt.Sprintf("read pdf text: %v", err),
			Retryable: false,
			Cause:     ErrCausePDFUnreadable,
		}
	}

	return truncateRunes(string(raw), limit), nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
