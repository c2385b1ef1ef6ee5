// Package render turns a stored post body into the HTML that is sent for
// translation, and builds the public URL of a post.
package render

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/hawknews/hawk-translation/internal"
)

// Filter transforms rendered content. Filters run in registration order.
type Filter func(content string) string

// Renderer applies the content pipeline: Markdown/HTML to HTML, then filters.
type Renderer struct {
	filters []Filter
}

// New returns a Renderer with the default filters followed by extra.
func New(extra ...Filter) *Renderer {
	filters := []Filter{StripShortcodes, strings.TrimSpace}
	return &Renderer{filters: append(filters, extra...)}
}

// AddFilter appends a filter to the chain.
func (r *Renderer) AddFilter(f Filter) {
	r.filters = append(r.filters, f)
}

// Render returns the post body as it would be displayed to readers.
func (r *Renderer) Render(p *internal.Post) string {
	out := ToHTML([]byte(p.Body))
	for _, f := range r.filters {
		out = f(out)
	}
	return out
}

func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

func StripHTMLTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}

// shortcodeRe matches [name ...] and [/name] editor shortcodes.
var shortcodeRe = regexp.MustCompile(`\[/?[a-zA-Z][a-zA-Z0-9_-]*(?:\s[^\]]*)?\]`)

// StripShortcodes removes shortcode markers and keeps their inner text.
func StripShortcodes(content string) string {
	return shortcodeRe.ReplaceAllString(content, "")
}

// Permalinks builds public URLs for posts.
type Permalinks struct {
	SiteURL string
}

// For returns {site}/{slug}/, or {site}/?p={id} when the post has no slug.
func (l Permalinks) For(p *internal.Post) string {
	base := strings.TrimRight(l.SiteURL, "/")
	if p.Slug == "" {
		return fmt.Sprintf("%s/?p=%d", base, p.ID)
	}
	return base + "/" + url.PathEscape(p.Slug) + "/"
}
