package web

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML parses an HTML document.
func ParseHTML(body []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Matcher selects element nodes.
type Matcher func(n *html.Node) bool

// ByID matches an element with the given id attribute.
func ByID(id string) Matcher {
	return func(n *html.Node) bool {
		return Attr(n, "id") == id
	}
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) Matcher {
	return func(n *html.Node) bool {
		return n.Data == tag
	}
}

// ByClass matches elements carrying the given class.
func ByClass(class string) Matcher {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(Attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

// ByClassPrefix matches elements whose class attribute starts with prefix,
// the equivalent of the CSS selector [class^="prefix"].
func ByClassPrefix(prefix string) Matcher {
	return func(n *html.Node) bool {
		return strings.HasPrefix(Attr(n, "class"), prefix)
	}
}

// FindAll returns every element below root, in document order, that
// matches m. Matches are not searched for nested matches.
func FindAll(root *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && m(c) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// Descendants returns every element below root, in document order, that
// matches m, including matches nested inside other matches. It is the
// equivalent of a CSS descendant selector.
func Descendants(root *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && m(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// HasAncestor reports whether an element between n and root (both excluded)
// matches m.
func HasAncestor(n, root *html.Node, m Matcher) bool {
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if p.Type == html.ElementNode && m(p) {
			return true
		}
	}
	return false
}

// Find returns the first element below root that matches m, or nil.
func Find(root *html.Node, m Matcher) *html.Node {
	if root == nil {
		return nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && m(c) {
			return c
		}
		if found := Find(c, m); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of an attribute, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Text returns the text content of n with whitespace collapsed.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Render returns the outer HTML of the given nodes joined by newlines.
func Render(nodes ...*html.Node) (string, error) {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

// Resolve makes href absolute against base. Unparseable hrefs are returned as is.
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
