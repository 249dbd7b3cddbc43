package storage_test

import (
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
)

type artifactCall struct {
	kind metadata.ArtifactKind
	path string
}

// metadataSinkMock is a mock for metadata.MetadataSink
type metadataSinkMock struct {
	metadata.NoopSink
	recordErrorCalled bool
	recordErrorAction string
	recordErrorCause  metadata.ErrorCause
	recordErrorAttrs  []metadata.Attribute
	recordedArtifacts []artifactCall
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalled = true
	m.recordErrorAction = action
	m.recordErrorCause = cause
	m.recordErrorAttrs = attrs
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.recordedArtifacts = append(m.recordedArtifacts, artifactCall{kind: kind, path: path})
}
