package metadata

/*
runStats
  - Represents a terminal, derived summary of a completed review run
  - Contains only aggregate counts and durations
  - Is computed by the pipeline after the run terminates
  - Is recorded exactly once
*/
type runStats struct {
	totalPapers int
	totalErrors int
	durationMs  int64
}

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause MUST NOT influence control flow.
  - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
  - Packages MAY map their local errors to ErrorCause,
    but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport failures, remote 5xx, timeouts, exhausted retries.

# CausePolicyDisallow
  - HTTP 401/403/429 interpreted as access denial or rate limiting.

# CauseContentInvalid
  - Content was fetched but could not be processed meaningfully
    (missing abstract, missing PDF link, unreadable PDF).

# CauseStorageFailure
  - Disk full, write permission errors, filesystem I/O failures.

# CauseCacheCorrupt
  - A persisted cache line could not be parsed or decoded.

# CauseLLMFailure
  - The language model call failed or returned an unusable answer.

# CauseSpreadsheetFailure
  - The spreadsheet or drive API rejected a request.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseCacheCorrupt
	CauseLLMFailure
	CauseSpreadsheetFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseCacheCorrupt:
		return "cache_corrupt"
	case CauseLLMFailure:
		return "llm_failure"
	case CauseSpreadsheetFailure:
		return "spreadsheet_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	ArtifactDigestMarkdown ArtifactKind = "digest_markdown"
	ArtifactDigestHTML     ArtifactKind = "digest_html"
	ArtifactSpreadsheet    ArtifactKind = "spreadsheet"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrLine       AttributeKey = "line"
	AttrKey        AttributeKey = "key"
	AttrCache      AttributeKey = "cache"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrArxivID    AttributeKey = "arxiv_id"
	AttrDate       AttributeKey = "date"
	AttrMessage    AttributeKey = "message"
	AttrModel      AttributeKey = "model"
)
