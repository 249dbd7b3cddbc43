package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

// void elements are valid when empty.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// removeEmptyNodesBottomUp performs a post-order traversal to remove empty nodes.
// Nested empty containers are cleaned innermost first.
func removeEmptyNodesBottomUp(node *html.Node) {
	if node == nil {
		return
	}

	// Collect first: removing a child breaks the sibling links.
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	for _, child := range children {
		removeEmptyNodesBottomUp(child)
	}

	if node.Type == html.ElementNode && isEmptyNode(node) && !voidElements[node.Data] && node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

// isEmptyNode reports whether an element has no child elements and only
// whitespace text.
func isEmptyNode(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				return false
			}
		}
	}
	return true
}
