package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/fileutil"
)

/*
Responsibilities
- Persist digest documents as <name>.md and <name>.html
- Ensure deterministic filenames

Output Characteristics
- Stable directory layout
- Idempotent writes
- Overwrite-safe reruns
*/

type Sink interface {
	Write(outputDir string, doc Document) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) *LocalSink {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	outputDir string,
	doc Document,
) (WriteResult, failure.ClassifiedError) {
	writeResult, storageError := write(outputDir, doc)
	if storageError != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			storageError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactDigestMarkdown,
		writeResult.MarkdownPath(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.MarkdownPath()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
		},
	)
	if writeResult.HTMLPath() != "" {
		s.metadataSink.RecordArtifact(
			metadata.ArtifactDigestHTML,
			writeResult.HTMLPath(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, writeResult.HTMLPath()),
			},
		)
	}
	return writeResult, nil
}

func write(outputDir string, doc Document) (WriteResult, *StorageError) {
	name := doc.Name()
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return WriteResult{}, &StorageError{
			Message:   "document name must be a plain file stem",
			Retryable: false,
			Cause:     ErrCauseInvalidName,
			Path:      name,
		}
	}

	if err := fileutil.EnsureDir(outputDir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      outputDir,
		}
	}

	markdownPath := filepath.Join(outputDir, name+".md")
	if err := writeFile(markdownPath, doc.Markdown()); err != nil {
		return WriteResult{}, err
	}

	var htmlPath string
	if len(doc.HTML()) > 0 {
		htmlPath = filepath.Join(outputDir, name+".html")
		if err := writeFile(htmlPath, doc.HTML()); err != nil {
			return WriteResult{}, err
		}
	}

	return NewWriteResult(name, markdownPath, htmlPath, doc.ContentHash()), nil
}

func writeFile(path string, content []byte) *StorageError {
	if err := os.WriteFile(path, content, 0644); err != nil {
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      path,
		}
	}
	return nil
}
