package respcache

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/fileutil"
)

/*
LineStore is the append-only JSON-Lines file behind one cache.

- One record per line, one write call per record
- Every append is fsynced before it returns
- Replay tolerates garbage: bad lines are reported and skipped
- A line torn by a crash is terminated before the next append
*/
type LineStore struct {
	path         string
	metadataSink metadata.MetadataSink
	tailChecked  bool
}

func NewLineStore(path string, metadataSink metadata.MetadataSink) *LineStore {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &LineStore{
		path:         path,
		metadataSink: metadataSink,
	}
}

func (s *LineStore) Path() string {
	return s.path
}

// Append persists one record. The file and its parent directory are
// created on first use.
func (s *LineStore) Append(record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      s.path,
		}
	}

	if err := fileutil.EnsureDir(filepath.Dir(s.path)); err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      s.path,
		}
	}

	prefix := []byte{}
	if !s.tailChecked {
		torn, err := endsMidLine(s.path)
		if err != nil {
			return &StoreError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseReadFailure,
				Path:      s.path,
			}
		}
		if torn {
			prefix = []byte{'\n'}
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
			Path:      s.path,
		}
	}
	defer f.Close()

	buf := make([]byte, 0, len(prefix)+len(line)+1)
	buf = append(buf, prefix...)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	if _, err := f.Write(buf); err != nil {
		return writeError(err, s.path)
	}
	if err := f.Sync(); err != nil {
		return writeError(err, s.path)
	}
	s.tailChecked = true
	return nil
}

// Replay feeds every well-formed record to fn in file order. A missing
// file replays nothing. Returning an error from fn stops the replay.
func (s *LineStore) Replay(fn func(lineNo int, record Record) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
			Path:      s.path,
		}
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 64*1024)
	lineNo := 0
	for {
		raw, readErr := reader.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			if err := s.visit(lineNo, raw, fn); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return &StoreError{
				Message:   readErr.Error(),
				Retryable: false,
				Cause:     ErrCauseReadFailure,
				Path:      s.path,
			}
		}
	}
}

func (s *LineStore) visit(lineNo int, raw []byte, fn func(int, Record) error) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	var wire wireRecord
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		s.reportSkipped(lineNo, "", "malformed json: "+err.Error())
		return nil
	}
	if wire.Key == nil || wire.Response == nil {
		s.reportSkipped(lineNo, "", "record is missing key or response")
		return nil
	}

	return fn(lineNo, Record{Key: *wire.Key, Response: *wire.Response})
}

func (s *LineStore) reportSkipped(lineNo int, key string, details string) {
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrPath, s.path),
		metadata.NewAttr(metadata.AttrLine, strconv.Itoa(lineNo)),
	}
	if key != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrKey, key))
	}
	s.metadataSink.RecordError(
		time.Now(),
		"respcache",
		"LineStore.Replay",
		metadata.CauseCacheCorrupt,
		details,
		attrs,
	)
}

func writeError(err error, path string) *StoreError {
	if errors.Is(err, syscall.ENOSPC) {
		return &StoreError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseDiskFull,
			Path:      path,
		}
	}
	return &StoreError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     ErrCauseWriteFailure,
		Path:      path,
	}
}

// endsMidLine reports whether a non-empty file lacks its trailing newline.
func endsMidLine(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}
