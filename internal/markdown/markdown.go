// Package markdown renders post bodies to HTML and provides analysis helpers
// over raw Markdown.
package markdown

import (
	"bytes"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Renderer converts Markdown bodies to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// Options tunes renderer construction.
type Options struct {
	// HighlightStyle selects the chroma style for fenced code blocks.
	// Empty means the default ("github").
	HighlightStyle string

	// Unsafe allows raw HTML in post bodies to pass through. Bodies are
	// authored content, not user input, so builds default this to true.
	Unsafe bool
}

// NewRenderer builds a goldmark instance with the extensions the site
// relies on: GFM tables/strikethrough/autolinks, typographic quotes, stable
// heading anchors, and syntax-highlighted fenced code blocks.
func NewRenderer(opts Options) *Renderer {
	style := opts.HighlightStyle
	if style == "" {
		style = "github"
	}

	rendererOpts := []renderer.Option{}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Renderer{md: md}
}

// Render converts a Markdown body to HTML.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LinkKind distinguishes how a link appeared in the source.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindAuto   LinkKind = "auto"
	LinkKindImage  LinkKind = "image"
)

// Link is a destination extracted from a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
}

// ExtractLinks walks the Markdown AST and collects link destinations.
func ExtractLinks(body []byte) []Link {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(body))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}
