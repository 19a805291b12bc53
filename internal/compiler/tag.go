package compiler

import (
	"github.com/conneroisu/unidom/internal/markup"
	"golang.org/x/net/html"
)

// DefaultBehaviorTag is the element name that carries explicit behavior code.
const DefaultBehaviorTag = "script"

// FindBehaviorTag returns the first direct child of n that is an element
// named tag, or nil.
func FindBehaviorTag(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if markup.IsElement(c) && c.Data == tag {
			return c
		}
	}
	return nil
}

// RemoveBehaviorTag detaches the child FindBehaviorTag would return and
// reports whether one was removed. The remaining children keep their order.
func RemoveBehaviorTag(n *html.Node, tag string) bool {
	found := FindBehaviorTag(n, tag)
	if found == nil {
		return false
	}
	markup.Detach(found)
	return true
}
