package metadata

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

/*
Metadata Collected
- Fetch timestamps, status codes and durations
- Cache hits and misses per named cache
- Skipped (corrupt) cache lines
- Written artifacts (spreadsheets, digests)

Metadata is write-only.
No component may read metadata to influence pipeline decisions.
*/

/*
Recorder captures structured run events and forwards them to a logrus
logger and, when configured, to Prometheus counters.

It must not:
- perform I/O decisions
- affect control flow
*/
type Recorder struct {
	runID   string
	logger  *logrus.Logger
	metrics *Metrics
}

// NewRecorder builds a recorder tagged with runID. A nil logger discards
// log output; a nil metrics disables counters.
func NewRecorder(runID string, logger *logrus.Logger, metrics *Metrics) *Recorder {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Recorder{
		runID:   runID,
		logger:  logger,
		metrics: metrics,
	}
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(level string, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(parsed)
	}
	return logger
}

func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) Logger() *logrus.Logger {
	return r.logger
}

func (r *Recorder) entry(attrs []Attribute) *logrus.Entry {
	fields := logrus.Fields{"run_id": r.runID}
	for _, attr := range attrs {
		fields[string(attr.Key)] = attr.Value
	}
	return r.logger.WithFields(fields)
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.entry(attrs).
		WithTime(observedAt).
		WithField("package", packageName).
		WithField("action", action).
		WithField("cause", cause.String()).
		Warn(errorString)

	if r.metrics != nil {
		r.metrics.errors.WithLabelValues(packageName, cause.String()).Inc()
	}
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	host := ""
	if parsed, err := url.Parse(fetchUrl); err == nil {
		host = parsed.Host
	}
	r.entry(nil).WithFields(logrus.Fields{
		"url":          fetchUrl,
		"http_status":  httpStatus,
		"duration_ms":  duration.Milliseconds(),
		"content_type": contentType,
		"retry_count":  retryCount,
	}).Debug("fetch")

	if r.metrics != nil {
		r.metrics.fetches.WithLabelValues(host, strconv.Itoa(httpStatus)).Inc()
	}
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	r.entry(attrs).
		WithField("kind", string(kind)).
		WithField("path", path).
		Info("artifact written")
}

func (r *Recorder) RecordCacheLookup(cacheName string, key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.entry(nil).WithFields(logrus.Fields{
		"cache":  cacheName,
		"key":    key,
		"result": result,
	}).Debug("cache lookup")

	if r.metrics != nil {
		r.metrics.cacheLookups.WithLabelValues(cacheName, result).Inc()
	}
}

/*
RecordFinalRunStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run, after it terminates.
  - The provided numbers MUST be derived from pipeline state.
*/
func (r *Recorder) RecordFinalRunStats(
	totalPapers int,
	totalErrors int,
	duration time.Duration,
) {
	stats := runStats{
		totalPapers: totalPapers,
		totalErrors: totalErrors,
		durationMs:  duration.Milliseconds(),
	}
	r.entry(nil).WithFields(logrus.Fields{
		"total_papers": stats.totalPapers,
		"total_errors": stats.totalErrors,
		"duration_ms":  stats.durationMs,
	}).Info(fmt.Sprintf("run finished with %d papers", stats.totalPapers))
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
	RecordCacheLookup(cacheName string, key string, hit bool)
}

type RunFinalizer interface {
	RecordFinalRunStats(
		totalPapers int,
		totalErrors int,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink and RunFinalizer but does nothing.
// Callers (or tests) decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordCacheLookup(cacheName string, key string, hit bool) {}

func (n *NoopSink) RecordFinalRunStats(totalPapers int, totalErrors int, duration time.Duration) {}

var (
	_ MetadataSink = (*Recorder)(nil)
	_ RunFinalizer = (*Recorder)(nil)
	_ MetadataSink = (*NoopSink)(nil)
	_ RunFinalizer = (*NoopSink)(nil)
)
