// Package page loads HTML pages and exposes their counter elements.
package page

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page.
type Document struct {
	Path  string
	Title string

	root *html.Node

	mu       sync.Mutex
	elements map[*html.Node]*Element
	order    []*Element
	keys     map[string]int
	onChange func(*Element)
}

// Load parses the HTML file at path.
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only page.
			_ = cerr
		}
	}()
	doc, err := Parse(file)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	doc := &Document{
		root:     root,
		elements: map[*html.Node]*Element{},
		keys:     map[string]int{},
	}
	if title := findFirst(root, atom.Title); title != nil {
		doc.Title = collapseSpace(textContent(title))
	}
	return doc, nil
}

// QueryAll returns the elements matching a CSS selector in document order.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	nodes := sel.MatchAll(d.root)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.element(n))
	}
	return out, nil
}

// Elements returns every element handed out by QueryAll, in the order they
// were first seen.
func (d *Document) Elements() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Element(nil), d.order...)
}

// OnChange installs a hook called after any element's text changes. The hook
// runs on the writer's goroutine.
func (d *Document) OnChange(fn func(*Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// WriteHTML renders the document with every element's current text.
func (d *Document) WriteHTML(w io.Writer) error {
	for _, el := range d.Elements() {
		el.replaceChildren()
	}
	return html.Render(w, d.root)
}

func (d *Document) element(n *html.Node) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.elements[n]; ok {
		return el
	}
	key := attr(n, "id")
	if key == "" {
		key = "counter-" + strconv.Itoa(len(d.order)+1)
	}
	if seen := d.keys[key]; seen > 0 {
		d.keys[key] = seen + 1
		key = key + "-" + strconv.Itoa(seen+1)
	} else {
		d.keys[key] = 1
	}
	el := &Element{
		doc:  d,
		node: n,
		key:  key,
		text: collapseSpace(textContent(n)),
	}
	d.elements[n] = el
	d.order = append(d.order, el)
	return el
}

func (d *Document) lookup(n *html.Node) (*Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.elements[n]
	return el, ok
}

func (d *Document) changed(el *Element) {
	d.mu.Lock()
	fn := d.onChange
	d.mu.Unlock()
	if fn != nil {
		fn(el)
	}
}

// Element is a display region inside a Document.
type Element struct {
	doc  *Document
	node *html.Node
	key  string

	mu   sync.Mutex
	text string
}

// Key identifies the element: its id attribute, or a generated name.
func (e *Element) Key() string {
	return e.key
}

// Data returns the value of the data-<key> attribute.
func (e *Element) Data(key string) (string, bool) {
	name := "data-" + key
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Label returns the element's aria-label or title attribute, falling back to
// the key.
func (e *Element) Label() string {
	for _, name := range []string{"aria-label", "title", "data-label"} {
		if v := strings.TrimSpace(attr(e.node, name)); v != "" {
			return v
		}
	}
	return e.key
}

// SetText replaces the element's text content.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
	e.doc.changed(e)
}

// Text returns the element's current text content.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *Element) replaceChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: e.Text()})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
