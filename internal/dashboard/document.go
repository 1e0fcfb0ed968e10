package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrElementNotFound is returned when a named element is missing from the document.
var ErrElementNotFound = errors.New("element not found")

// Document is a parsed dashboard page. All render operations write into it.
// A Document is not safe for concurrent use.
type Document struct {
	root *html.Node
}

// ParseDocument parses page markup into a Document.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard markup: %w", err)
	}
	return &Document{root: root}, nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document to a string, mostly for tests and logs.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// ElementByID returns the element with the given id attribute.
func (d *Document) ElementByID(id string) (*html.Node, error) {
	n := find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	})
	if n == nil {
		return nil, fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return n, nil
}

// ElementsByClass returns every element carrying the class, in document order.
func (d *Document) ElementsByClass(class string) []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode && HasClass(n, class) {
			out = append(out, n)
		}
	})
	return out
}

// SetText replaces the content of the element with a single text node.
func (d *Document) SetText(id, text string) error {
	n, err := d.ElementByID(id)
	if err != nil {
		return err
	}
	clearChildren(n)
	n.AppendChild(textNode(text))
	return nil
}

// TableBody returns the first tbody of the table with the given id.
func (d *Document) TableBody(tableID string) (*html.Node, error) {
	table, err := d.ElementByID(tableID)
	if err != nil {
		return nil, err
	}
	body := find(table, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Tbody
	})
	if body == nil {
		return nil, fmt.Errorf("%w: #%s tbody", ErrElementNotFound, tableID)
	}
	return body, nil
}

// TextContent returns the concatenated text below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

// Attr returns the value of the attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether n carries the class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds the class to n if it is not already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	classes := append(strings.Fields(Attr(n, "class")), class)
	setAttr(n, "class", strings.Join(classes, " "))
}

// RemoveClass removes every occurrence of the class from n.
func RemoveClass(n *html.Node, class string) {
	fields := strings.Fields(Attr(n, "class"))
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// element builds a detached element with alternating key/value attributes.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func clearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}
