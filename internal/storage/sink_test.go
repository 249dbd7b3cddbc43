package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSink_Write_MarkdownAndHTML(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "output")
	mockSink := &metadataSinkMock{}
	sink := storage.NewLocalSink(mockSink)
	doc := storage.NewDocument("digest-2024-08-05", []byte("# Week\n"), []byte("<h1>Week</h1>\n"), "abc123")

	result, err := sink.Write(outputDir, doc)

	require.Nil(t, err)
	assert.Equal(t, "digest-2024-08-05", result.Name())
	assert.Equal(t, filepath.Join(outputDir, "digest-2024-08-05.md"), result.MarkdownPath())
	assert.Equal(t, filepath.Join(outputDir, "digest-2024-08-05.html"), result.HTMLPath())
	assert.Equal(t, "abc123", result.ContentHash())

	markdown, readErr := os.ReadFile(result.MarkdownPath())
	require.NoError(t, readErr)
	assert.Equal(t, "# Week\n", string(markdown))
	html, readErr := os.ReadFile(result.HTMLPath())
	require.NoError(t, readErr)
	assert.Equal(t, "<h1>Week</h1>\n", string(html))

	assert.False(t, mockSink.recordErrorCalled)
	require.Len(t, mockSink.recordedArtifacts, 2)
	assert.Equal(t, metadata.ArtifactDigestMarkdown, mockSink.recordedArtifacts[0].kind)
	assert.Equal(t, metadata.ArtifactDigestHTML, mockSink.recordedArtifacts[1].kind)
}

func TestLocalSink_Write_WithoutHTML(t *testing.T) {
	outputDir := t.TempDir()
	mockSink := &metadataSinkMock{}
	sink := storage.NewLocalSink(mockSink)

	result, err := sink.Write(outputDir, storage.NewDocument("digest", []byte("text"), nil, ""))

	require.Nil(t, err)
	assert.Empty(t, result.HTMLPath())
	_, statErr := os.Stat(filepath.Join(outputDir, "digest.html"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Len(t, mockSink.recordedArtifacts, 1)
}

func TestLocalSink_Write_OverwritesOnRerun(t *testing.T) {
	outputDir := t.TempDir()
	sink := storage.NewLocalSink(nil)

	_, err := sink.Write(outputDir, storage.NewDocument("digest", []byte("first version that is longer"), nil, ""))
	require.Nil(t, err)
	result, err := sink.Write(outputDir, storage.NewDocument("digest", []byte("second"), nil, ""))
	require.Nil(t, err)

	content, readErr := os.ReadFile(result.MarkdownPath())
	require.NoError(t, readErr)
	assert.Equal(t, "second", string(content))
}

func TestLocalSink_Write_ErrorHandling(t *testing.T) {
	tests := []struct {
		name      string
		outputDir func(t *testing.T) string
		docName   string
		wantCause storage.StorageErrorCause
		wantMeta  metadata.ErrorCause
	}{
		{
			name:      "name with path separator",
			outputDir: func(t *testing.T) string { return t.TempDir() },
			docName:   "../escape",
			wantCause: storage.ErrCauseInvalidName,
			wantMeta:  metadata.CauseContentInvalid,
		},
		{
			name:      "empty name",
			outputDir: func(t *testing.T) string { return t.TempDir() },
			docName:   "",
			wantCause: storage.ErrCauseInvalidName,
			wantMeta:  metadata.CauseContentInvalid,
		},
		{
			name: "output path is a file",
			outputDir: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "occupied")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
				return path
			},
			docName:   "digest",
			wantCause: storage.ErrCausePathError,
			wantMeta:  metadata.CauseStorageFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSink := &metadataSinkMock{}
			sink := storage.NewLocalSink(mockSink)

			_, err := sink.Write(tt.outputDir(t), storage.NewDocument(tt.docName, []byte("x"), nil, ""))

			require.NotNil(t, err)
			storageErr, ok := err.(*storage.StorageError)
			require.True(t, ok)
			assert.Equal(t, tt.wantCause, storageErr.Cause)
			assert.True(t, mockSink.recordErrorCalled)
			assert.Equal(t, "LocalSink.Write", mockSink.recordErrorAction)
			assert.Equal(t, tt.wantMeta, mockSink.recordErrorCause)
			assert.Empty(t, mockSink.recordedArtifacts)
		})
	}
}
