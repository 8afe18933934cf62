// Package markdown renders blog bodies and generated strategies from
// Markdown to sanitized HTML.
package markdown

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// LinkClass is applied to every rendered link.
const LinkClass = "underline decoration-2 underline-offset-4"

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(linkClasses{}, 100)),
		),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("a", "code", "pre", "span", "div")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// linkClasses tags links so they pick up the site's link styling.
type linkClasses struct{}

func (linkClasses) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindLink, ast.KindAutoLink:
			n.SetAttributeString("class", []byte(LinkClass))
		}
		return ast.WalkContinue, nil
	})
}

// Render converts src to sanitized HTML.
func Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return policy.Sanitize(buf.String()), nil
}

// Component returns a templ.Component that writes src as HTML.
func Component(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := Render(src)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// PlainText strips Markdown and HTML from src, for feed descriptions and
// meta tags.
func PlainText(src string) string {
	out, err := Render(src)
	if err != nil {
		return strings.TrimSpace(src)
	}
	return strings.Join(strings.Fields(bluemonday.StrictPolicy().Sanitize(out)), " ")
}
