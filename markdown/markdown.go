// Package markdown renders article markdown to sanitized HTML as a templ
// component, and derives plain-text excerpts for meta descriptions.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
		),
	)

	policy = newPolicy()
	strip  = bluemonday.StrictPolicy()

	reSpace = regexp.MustCompile(`\s+`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("div", "span", "pre", "code")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderMarkdown(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderMarkdown writes the sanitized HTML for content to buf. Markdown
// that fails to convert is written as escaped text.
func RenderMarkdown(buf *bytes.Buffer, content string) {
	var raw bytes.Buffer
	if err := md.Convert([]byte(content), &raw); err != nil {
		buf.WriteString("<p>" + html.EscapeString(content) + "</p>")
		return
	}
	buf.Write(policy.SanitizeBytes(raw.Bytes()))
}

// HTML is RenderMarkdown returning a string.
func HTML(content string) string {
	var buf bytes.Buffer
	RenderMarkdown(&buf, content)
	return buf.String()
}

// PlainText renders content and strips every tag, collapsing whitespace.
func PlainText(content string) string {
	var raw bytes.Buffer
	if err := md.Convert([]byte(content), &raw); err != nil {
		return strings.TrimSpace(reSpace.ReplaceAllString(content, " "))
	}
	text := html.UnescapeString(strip.Sanitize(raw.String()))
	return strings.TrimSpace(reSpace.ReplaceAllString(text, " "))
}

// Truncate shortens s to at most limit runes, ending in "..." when cut.
func Truncate(s string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:limit-3]), func(r rune) bool { return r == ' ' }) + "..."
}

// Excerpt is the plain text of content truncated to limit runes.
func Excerpt(content string, limit int) string {
	return Truncate(PlainText(content), limit)
}

// codeBlockRenderer wraps fenced code with a language badge when a
// language is given.
type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeBlockRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	if lang != "" {
		esc := html.EscapeString(lang)
		w.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + esc + `">` + esc + `</span>`)
		w.WriteString(`<pre class="code-block"><code class="language-` + esc + `">`)
	} else {
		w.WriteString(`<pre class="code-block"><code>`)
	}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.WriteString(html.EscapeString(string(seg.Value(source))))
	}
	w.WriteString("</code></pre>")
	if lang != "" {
		w.WriteString("</div>")
	}
	w.WriteString("\n")
	return ast.WalkSkipChildren, nil
}
