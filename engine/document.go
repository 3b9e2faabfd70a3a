package engine

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// BlockKind classifies a rendered block of page text.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	Preformatted
	ListItem
	Quote
)

// Block is one run of text laid out on its own line.
type Block struct {
	Kind  BlockKind
	Level int // heading level 1-6
	Text  string
}

// Document is the engine's text model of a loaded page.
type Document struct {
	Title   string
	URL     *url.URL
	Blocks  []Block
	Scripts []string // inline script sources in document order
	Failed  bool
}

// ParseHTML builds a Document from HTML bytes, decoding them according
// to contentType when it names a charset.
func ParseHTML(content []byte, contentType string, u *url.URL) (*Document, error) {
	r, err := charset.NewReader(bytes.NewReader(content), contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := &blockBuilder{doc: &Document{URL: u}}
	b.walk(root)
	b.flush(Paragraph, 0)
	b.doc.Title = collapseSpace(b.doc.Title)
	return b.doc, nil
}

// TextDocument wraps non-HTML text in a single preformatted block.
func TextDocument(r io.Reader, u *url.URL) (*Document, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	doc := &Document{URL: u, Title: titleFromURL(u)}
	if text := strings.TrimRight(string(body), "\n"); text != "" {
		doc.Blocks = []Block{{Kind: Preformatted, Text: text}}
	}
	return doc, nil
}

// ErrorDocument describes a failed navigation.
func ErrorDocument(u *url.URL, err error) *Document {
	target := "(empty)"
	if u != nil {
		target = u.String()
	}
	return &Document{
		Title:  "Failed to open page",
		URL:    u,
		Failed: true,
		Blocks: []Block{
			{Kind: Heading, Level: 1, Text: "Failed to open page"},
			{Kind: Paragraph, Text: target},
			{Kind: Preformatted, Text: err.Error()},
		},
	}
}

func titleFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		return base
	}
	return u.String()
}

type blockBuilder struct {
	doc *Document
	buf strings.Builder
}

func (b *blockBuilder) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.buf.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Title:
			if b.doc.Title == "" {
				b.doc.Title = textContent(n)
			}
			return
		case atom.Script:
			if !hasAttr(n, "src") && isJavaScript(attr(n, "type")) {
				b.doc.Scripts = append(b.doc.Scripts, textContent(n))
			}
			return
		case atom.Style, atom.Noscript, atom.Template, atom.Svg:
			return
		case atom.Br:
			b.buf.WriteRune(lineBreak)
			return
		case atom.Img:
			if alt := attr(n, "alt"); alt != "" {
				b.buf.WriteString(alt)
			}
			return
		case atom.Pre:
			b.flush(Paragraph, 0)
			b.add(Block{Kind: Preformatted, Text: strings.Trim(textContent(n), "\n")})
			return
		}
	}

	kind, level, isBlock := blockKind(n)
	if isBlock {
		b.flush(Paragraph, 0)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c)
	}
	if isBlock {
		b.flush(kind, level)
	}
}

func (b *blockBuilder) flush(kind BlockKind, level int) {
	text := collapseSpace(b.buf.String())
	b.buf.Reset()
	if text == "" {
		return
	}
	b.add(Block{Kind: kind, Level: level, Text: text})
}

func (b *blockBuilder) add(blk Block) {
	if blk.Text == "" {
		return
	}
	b.doc.Blocks = append(b.doc.Blocks, blk)
}

func blockKind(n *html.Node) (BlockKind, int, bool) {
	if n.Type != html.ElementNode {
		return Paragraph, 0, false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return Heading, int(n.Data[1] - '0'), true
	case atom.Li, atom.Dt, atom.Dd:
		return ListItem, 0, true
	case atom.Blockquote:
		return Quote, 0, true
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer,
		atom.Nav, atom.Main, atom.Aside, atom.Ul, atom.Ol, atom.Dl, atom.Table,
		atom.Tr, atom.Form, atom.Figure, atom.Figcaption, atom.Body:
		return Paragraph, 0, true
	}
	return Paragraph, 0, false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func isJavaScript(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	}
	return false
}

// lineBreak marks a <br> inside collected inline text.
const lineBreak = '\u2028'

// collapseSpace folds runs of whitespace into single spaces. Explicit
// line breaks become newlines.
func collapseSpace(s string) string {
	lines := strings.Split(s, string(lineBreak))
	out := lines[:0]
	for _, line := range lines {
		if f := strings.Join(strings.Fields(line), " "); f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, "\n")
}
