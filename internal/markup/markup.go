// Package markup adapts golang.org/x/net/html to the operations the
// compiler needs: parse-from-string, serialize-to-string, child traversal,
// in-place removal and entity unescaping.
package markup

import (
	"fmt"
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses src as a complete document. The parser synthesizes the
// html, head and body elements when src omits them.
func Parse(src string) (*nethtml.Node, error) {
	doc, err := nethtml.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return doc, nil
}

// Render serializes n and its descendants.
func Render(n *nethtml.Node) (string, error) {
	var sb strings.Builder
	if err := nethtml.Render(&sb, n); err != nil {
		return "", fmt.Errorf("rendering markup: %w", err)
	}
	return sb.String(), nil
}

// RenderChildren serializes the children of n without n itself.
func RenderChildren(n *nethtml.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := nethtml.Render(&sb, c); err != nil {
			return "", fmt.Errorf("rendering markup: %w", err)
		}
	}
	return sb.String(), nil
}

// Find returns the first element named tag in document order, or nil.
func Find(root *nethtml.Node, tag string) *nethtml.Node {
	if root == nil {
		return nil
	}
	if IsElement(root) && root.Data == tag {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Children returns the direct children of n in order.
func Children(n *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Detach removes n from its parent. Detaching an unparented node is a no-op.
func Detach(n *nethtml.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// IsElement reports whether n is an element node.
func IsElement(n *nethtml.Node) bool {
	return n != nil && n.Type == nethtml.ElementNode
}

// IsText reports whether n is a text node.
func IsText(n *nethtml.Node) bool {
	return n != nil && n.Type == nethtml.TextNode
}

// IsRootLike reports whether n is a document container rather than an
// element, such as a fragment grafted under a template wrapper.
func IsRootLike(n *nethtml.Node) bool {
	return n != nil && n.Type == nethtml.DocumentNode
}

// InnerText returns the content of n restored to literal form. Raw text
// elements such as script are returned verbatim; for any other element the
// serialized children are unescaped so entity encoding added by the
// serializer does not leak into behavior code.
func InnerText(n *nethtml.Node) (string, error) {
	if isRawText(n) {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if IsText(c) {
				sb.WriteString(c.Data)
			}
		}
		return sb.String(), nil
	}

	inner, err := RenderChildren(n)
	if err != nil {
		return "", err
	}
	return Unescape(inner), nil
}

// Unescape reverses the entity encoding applied by Render.
func Unescape(s string) string {
	return html.UnescapeString(s)
}

func isRawText(n *nethtml.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Xmp, atom.Iframe, atom.Noembed, atom.Noframes:
		return true
	}
	return false
}
