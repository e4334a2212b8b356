package services

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"site-cms/pkg/models"
)

// MarkdownRenderer renders article bodies to HTML with GFM and heading ids.
// Raw HTML in the source is escaped.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return &MarkdownRenderer{md: md}
}

type MarkdownResult struct {
	HTML     string
	Headings []models.Heading
}

func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	ctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	heads := []models.Heading{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var id string
		if v, ok := h.AttributeString("id"); ok {
			switch val := v.(type) {
			case string:
				id = val
			case []byte:
				id = string(val)
			}
		}

		var buf bytes.Buffer
		collectText(&buf, h, src)
		heads = append(heads, models.Heading{Level: h.Level, ID: id, Text: buf.String()})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return MarkdownResult{}, err
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{HTML: buf.String(), Headings: heads}, nil
}

func collectText(buf *bytes.Buffer, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			collectText(buf, c, src)
		}
	}
}
