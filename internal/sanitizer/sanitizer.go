/*
Responsibilities
- Drop markup that never belongs in an abstract (scripts, widgets, comments)
- Remove empty nodes left behind
- Render the fragment back to stable HTML

This stage keeps the Markdown conversion of scraped fragments deterministic.
*/
package sanitizer

import (
	"bytes"
	"strings"
	"time"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/failure"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dropped elements are removed together with their subtree.
var dropped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Button:   true,
	atom.Iframe:   true,
	atom.Form:     true,
	atom.Input:    true,
	atom.Template: true,
}

type FragmentSanitizer struct {
	metadataSink metadata.MetadataSink
}

func NewFragmentSanitizer(metadataSink metadata.MetadataSink) *FragmentSanitizer {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	return &FragmentSanitizer{metadataSink: metadataSink}
}

// Sanitize cleans an HTML fragment as it would appear inside <body>.
func (s *FragmentSanitizer) Sanitize(fragment string) (string, failure.ClassifiedError) {
	cleaned, err := sanitize(fragment)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"sanitizer",
			"FragmentSanitizer.Sanitize",
			mapSanitizationErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{},
		)
		return "", err
	}
	return cleaned, nil
}

func sanitize(fragment string) (string, *SanitizationError) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return "", &SanitizationError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseBrokenDOM,
		}
	}

	// Reparent under a detached root so bottom-up removal can unlink top-level nodes.
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	removeDropped(root)
	removeEmptyNodesBottomUp(root)

	var buf bytes.Buffer
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&buf, child); err != nil {
			return "", &SanitizationError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseBrokenDOM,
			}
		}
	}

	cleaned := strings.TrimSpace(buf.String())
	if cleaned == "" {
		return "", &SanitizationError{
			Message:   "nothing left after sanitizing",
			Retryable: false,
			Cause:     ErrCauseEmptyFragment,
		}
	}
	return cleaned, nil
}

func removeDropped(node *html.Node) {
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	for _, child := range children {
		if child.Type == html.CommentNode || (child.Type == html.ElementNode && dropped[child.DataAtom]) {
			node.RemoveChild(child)
			continue
		}
		removeDropped(child)
	}
}
