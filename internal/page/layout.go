package page

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Span is the line range a block occupies in a Layout.
type Span struct {
	Top    int
	Height int
}

// Ratio returns the fraction of the span inside the window of height lines
// starting at top.
func (s Span) Ratio(top, height int) float64 {
	if s.Height <= 0 || height <= 0 {
		return 0
	}
	lo := maxInt(s.Top, top)
	hi := minInt(s.Top+s.Height, top+height)
	if hi <= lo {
		return 0
	}
	return float64(hi-lo) / float64(s.Height)
}

// Layout is a document flattened into terminal lines.
type Layout struct {
	Width int
	Lines []string
	Spans map[*Element]Span
}

// Content joins the lines for display.
func (l Layout) Content() string {
	return strings.Join(l.Lines, "\n")
}

// Span returns the block span of el.
func (l Layout) Span(el *Element) (Span, bool) {
	s, ok := l.Spans[el]
	return s, ok
}

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	subheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	cardStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

var blockAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.P: true, atom.Li: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Main: true, atom.Blockquote: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tbody: true, atom.Thead: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Body: true, atom.Html: true, atom.Nav: true, atom.Aside: true, atom.Figure: true,
}

var skipAtoms = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Template: true, atom.Noscript: true,
}

type paragraph struct {
	tag      atom.Atom
	text     string
	elements []*Element
}

// Layout renders the document into lines no wider than width.
func (d *Document) Layout(width int) Layout {
	if width < 8 {
		width = 8
	}
	var paras []paragraph
	d.collect(d.root, &paras)

	out := Layout{Width: width, Spans: map[*Element]Span{}}
	for _, p := range paras {
		rendered := renderParagraph(p, width)
		if rendered == "" {
			continue
		}
		if len(out.Lines) > 0 {
			out.Lines = append(out.Lines, "")
		}
		span := Span{Top: len(out.Lines), Height: lipgloss.Height(rendered)}
		out.Lines = append(out.Lines, strings.Split(rendered, "\n")...)
		for _, el := range p.elements {
			out.Spans[el] = span
		}
	}
	return out
}

func (d *Document) collect(n *html.Node, out *[]paragraph) {
	if n.Type == html.ElementNode && skipAtoms[n.DataAtom] {
		return
	}
	// A counter's text replaces its children, so it is laid out whole.
	if _, ok := d.lookup(n); ok || !hasBlockChild(n) {
		if n.Type == html.ElementNode && blockAtoms[n.DataAtom] || n.Type == html.DocumentNode {
			*out = append(*out, d.inline(n.DataAtom, []*html.Node{n}))
		}
		return
	}
	// Runs of inline content between blocks form anonymous paragraphs.
	var run []*html.Node
	flush := func() {
		if len(run) > 0 {
			*out = append(*out, d.inline(0, run))
			run = nil
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && skipAtoms[c.DataAtom] {
			continue
		}
		if isBlock(c) {
			flush()
			d.collect(c, out)
			continue
		}
		run = append(run, c)
	}
	flush()
}

func (d *Document) inline(tag atom.Atom, nodes []*html.Node) paragraph {
	p := paragraph{tag: tag}
	var b strings.Builder
	for _, n := range nodes {
		d.writeInline(&b, n, &p)
	}
	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = collapseSpace(line)
	}
	p.text = strings.TrimSpace(strings.Join(lines, "\n"))
	return p
}

// writeInline flattens n into b. Source newlines collapse to spaces; only
// <br> breaks a line. Known elements contribute their current text.
func (d *Document) writeInline(b *strings.Builder, n *html.Node, p *paragraph) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return r
		}, n.Data))
		return
	case html.ElementNode:
		if skipAtoms[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
		if el, ok := d.lookup(n); ok {
			p.elements = append(p.elements, el)
			b.WriteString(el.Text())
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.writeInline(b, c, p)
	}
}

func renderParagraph(p paragraph, width int) string {
	if p.text == "" && len(p.elements) == 0 {
		return ""
	}
	switch {
	case len(p.elements) > 0:
		return cardStyle.Render(truncateLines(p.text, width-4))
	case p.tag == atom.H1 || p.tag == atom.H2:
		return headingStyle.Render(truncateLines(p.text, width))
	case p.tag == atom.H3 || p.tag == atom.H4 || p.tag == atom.H5 || p.tag == atom.H6:
		return subheadStyle.Render(truncateLines(p.text, width))
	default:
		return textStyle.Width(width).Render(p.text)
	}
}

func truncateLines(text string, width int) string {
	if width < 1 {
		width = 1
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = runewidth.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockAtoms[n.DataAtom] || n.Type == html.DocumentNode
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
