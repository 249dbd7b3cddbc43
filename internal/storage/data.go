package storage

// Persistence

// Document is a rendered digest: one Markdown body and its HTML twin.
type Document struct {
	name        string // file stem, e.g. "digest-2024-08-05"
	markdown    []byte
	html        []byte
	contentHash string
}

func NewDocument(
	name string,
	markdown []byte,
	html []byte,
	contentHash string,
) Document {
	return Document{
		name:        name,
		markdown:    markdown,
		html:        html,
		contentHash: contentHash,
	}
}

func (d Document) Name() string {
	return d.name
}

func (d Document) Markdown() []byte {
	return d.markdown
}

func (d Document) HTML() []byte {
	return d.html
}

func (d Document) ContentHash() string {
	return d.contentHash
}

type WriteResult struct {
	name         string
	markdownPath string
	htmlPath     string
	contentHash  string
}

func NewWriteResult(
	name string,
	markdownPath string,
	htmlPath string,
	contentHash string,
) WriteResult {
	return WriteResult{
		name:         name,
		markdownPath: markdownPath,
		htmlPath:     htmlPath,
		contentHash:  contentHash,
	}
}

func (w *WriteResult) Name() string {
	return w.name
}

func (w *WriteResult) MarkdownPath() string {
	return w.markdownPath
}

// HTMLPath is empty when the document had no HTML rendition.
func (w *WriteResult) HTMLPath() string {
	return w.htmlPath
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
