// Package codec turns arbitrary text into a single-line token and back.
//
// A token is the base64 (standard alphabet) encoding of the gzip-compressed
// UTF-8 bytes of the text. Tokens never contain newlines or control
// characters, so they can be embedded in one line of a line-oriented file.
package codec

import (
	"bytes"
	"encoding/base64"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// Encode compresses text and maps the compressed bytes to base64.
func Encode(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", &CodecError{
			Message: "value is not valid UTF-8 text",
			Cause:   ErrCauseInvalidUTF8,
		}
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(text)); err != nil {
		return "", &CodecError{
			Message: err.Error(),
			Cause:   ErrCauseCompress,
		}
	}
	if err := zw.Close(); err != nil {
		return "", &CodecError{
			Message: err.Error(),
			Cause:   ErrCauseCompress,
		}
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode. A corrupt payload is reported as *CodecError and
// never yields partial text.
func Decode(token string) (string, error) {
	compressed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", &CodecError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidBase64,
		}
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", &CodecError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidGzip,
		}
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", &CodecError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidGzip,
		}
	}

	if !utf8.Valid(raw) {
		return "", &CodecError{
			Message: "decompressed payload is not valid UTF-8",
			Cause:   ErrCauseInvalidUTF8,
		}
	}

	return string(raw), nil
}
