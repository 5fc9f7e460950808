// Package markdown converts markdown source to HTML and exposes the result
// as a templ component.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// DefaultStyle is the chroma style used for fenced code blocks.
const DefaultStyle = "github"

// Heading is one entry of a document's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Document is a rendered markdown file.
type Document struct {
	HTML     string
	Title    string // text of the first level-1 heading, if any
	Headings []Heading
}

// Component returns the rendered HTML as a templ component.
func (d Document) Component() templ.Component {
	return templ.Raw(d.HTML)
}

// Renderer converts markdown with tables, fenced code highlighting and
// heading ids enabled. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer that highlights code with the given chroma style.
// An empty style selects DefaultStyle.
func New(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(style),
					highlighting.WithFormatOptions(chromahtml.TabWidth(4)),
				),
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Content lives in the site's own repository, so inline HTML is trusted.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render parses src once, collects its headings and renders it to HTML.
func (r *Renderer) Render(src []byte) (Document, error) {
	root := r.md.Parser().Parse(text.NewReader(src))

	var doc Document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: string(h.Text(src))}
		if v, ok := h.AttributeString("id"); ok {
			if id, ok := v.([]byte); ok {
				heading.ID = string(id)
			}
		}
		if h.Level == 1 && doc.Title == "" {
			doc.Title = heading.Text
		}
		doc.Headings = append(doc.Headings, heading)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return Document{}, fmt.Errorf("walk markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, root); err != nil {
		return Document{}, fmt.Errorf("render markdown: %w", err)
	}
	doc.HTML = buf.String()
	return doc, nil
}
