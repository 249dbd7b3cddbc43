package respcache_test

import (
	"bufio"
	"os"
	"testing"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/stretchr/testify/require"
)

type recordedError struct {
	action  string
	cause   metadata.ErrorCause
	details string
	attrs   []metadata.Attribute
}

type lookup struct {
	cache string
	key   string
	hit   bool
}

// recordingSink is a test double capturing errors and cache lookups
type recordingSink struct {
	errors  []recordedError
	lookups []lookup
}

func (s *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.errors = append(s.errors, recordedError{action: action, cause: cause, details: details, attrs: attrs})
}

func (s *recordingSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (s *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
}

func (s *recordingSink) RecordCacheLookup(cacheName string, key string, hit bool) {
	s.lookups = append(s.lookups, lookup{cache: cacheName, key: key, hit: hit})
}

func attrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
