// Package richtext converts structured text, as delivered by the content API,
// into plain text and HTML.
//
// A RichText value is an ordered list of blocks. Text blocks carry spans that
// mark character ranges as strong, emphasized or linked. Span offsets count
// Unicode code points. Invalid UTF-8 in block text is replaced with U+FFFD,
// one replacement per invalid byte, in both text and HTML output.
package richtext

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
)

// Block types.
const (
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// RichText is an ordered sequence of blocks.
type RichText []Block

// Block is one structured text block.
type Block struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Spans  []Span `json:"spans,omitempty"`
	URL    string `json:"url,omitempty"`
	Alt    string `json:"alt,omitempty"`
	Oembed *Embed `json:"oembed,omitempty"`
}

// Span marks the code point range [Start, End) of a block's text.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *SpanData `json:"data,omitempty"`
}

// SpanData holds link targets and labels.
type SpanData struct {
	LinkType string `json:"link_type,omitempty"`
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Embed is an oEmbed payload attached to an embed block.
type Embed struct {
	Type     string `json:"type,omitempty"`
	EmbedURL string `json:"embed_url,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// LinkResolver maps hyperlink span data to an href. An empty result renders
// the span text without a link.
type LinkResolver func(SpanData) string

// AsText returns the plain text of rt, block texts joined by a single space.
// Image and embed blocks carry no text and are skipped.
func AsText(rt RichText) string {
	parts := make([]string, 0, len(rt))
	for _, b := range rt {
		if b.Type == TypeImage || b.Type == TypeEmbed {
			continue
		}
		parts = append(parts, validText(b.Text))
	}
	return strings.Join(parts, " ")
}

// validText replaces every invalid byte of s with U+FFFD, the same way
// span offsets see the text.
func validText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return string([]rune(s))
}

// AsHTML renders rt as HTML. Consecutive list items are grouped into one
// list element. Text is escaped; nothing else is sanitized.
func AsHTML(rt RichText, resolve LinkResolver) string {
	if resolve == nil {
		resolve = DefaultLinkResolver
	}
	var b strings.Builder
	list := ""
	closeList := func() {
		if list != "" {
			b.WriteString("</" + list + ">")
			list = ""
		}
	}
	for _, blk := range rt {
		if blk.Type == TypeListItem || blk.Type == TypeOListItem {
			tag := "ul"
			if blk.Type == TypeOListItem {
				tag = "ol"
			}
			if list != tag {
				closeList()
				b.WriteString("<" + tag + ">")
				list = tag
			}
			b.WriteString("<li>")
			writeSpans(&b, blk, resolve)
			b.WriteString("</li>")
			continue
		}
		closeList()
		switch blk.Type {
		case TypeHeading1, TypeHeading2, TypeHeading3, TypeHeading4, TypeHeading5, TypeHeading6:
			tag := "h" + blk.Type[len(blk.Type)-1:]
			b.WriteString("<" + tag + ">")
			writeSpans(&b, blk, resolve)
			b.WriteString("</" + tag + ">")
		case TypePreformatted:
			b.WriteString("<pre>")
			writeSpans(&b, blk, resolve)
			b.WriteString("</pre>")
		case TypeImage:
			src := SafeURL(blk.URL)
			if src == "" {
				continue
			}
			b.WriteString(`<p class="block-img"><img src="` + src + `" alt="` + html.EscapeString(blk.Alt) + `" loading="lazy" decoding="async"/></p>`)
		case TypeEmbed:
			if blk.Oembed == nil {
				continue
			}
			b.WriteString(`<div data-oembed="` + html.EscapeString(blk.Oembed.EmbedURL) + `" data-oembed-type="` + html.EscapeString(blk.Oembed.Type) + `">`)
			b.WriteString(blk.Oembed.HTML)
			b.WriteString("</div>")
		default:
			b.WriteString("<p>")
			writeSpans(&b, blk, resolve)
			b.WriteString("</p>")
		}
	}
	closeList()
	return b.String()
}

// HTML returns a templ.Component that renders rt as HTML.
func HTML(rt RichText) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(AsHTML(rt, nil))
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// DefaultLinkResolver links to the span's URL.
func DefaultLinkResolver(d SpanData) string {
	return d.URL
}

// writeSpans writes the block text with its spans as nested tags. Spans that
// cross each other are closed and reopened at the boundary so the output is
// always well formed.
func writeSpans(b *strings.Builder, blk Block, resolve LinkResolver) {
	text := []rune(blk.Text)
	spans := validSpans(blk.Spans, len(text))
	if len(spans) == 0 {
		writeText(b, string(text))
		return
	}

	bounds := []int{0, len(text)}
	for _, s := range spans {
		bounds = append(bounds, s.Start, s.End)
	}
	sort.Ints(bounds)
	bounds = uniqueInts(bounds)

	var open []Span
	for i := 0; i < len(bounds)-1; i++ {
		at, next := bounds[i], bounds[i+1]

		cut := len(open)
		for j, s := range open {
			if s.End <= at {
				cut = j
				break
			}
		}
		if cut < len(open) {
			for j := len(open) - 1; j >= cut; j-- {
				b.WriteString(closeTag(open[j], resolve))
			}
			var reopen []Span
			for _, s := range open[cut:] {
				if s.End > at {
					reopen = append(reopen, s)
				}
			}
			open = open[:cut]
			for _, s := range reopen {
				b.WriteString(openTag(s, resolve))
				open = append(open, s)
			}
		}

		for _, s := range spans {
			if s.Start == at {
				b.WriteString(openTag(s, resolve))
				open = append(open, s)
			}
		}
		writeText(b, string(text[at:next]))
	}
	for j := len(open) - 1; j >= 0; j-- {
		b.WriteString(closeTag(open[j], resolve))
	}
}

// validSpans drops empty and out-of-range spans and orders the rest so that
// outer spans open before inner ones.
func validSpans(spans []Span, n int) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End > n || s.Start >= s.End {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End > out[j].End
	})
	return out
}

func uniqueInts(xs []int) []int {
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if len(out) == 0 || out[len(out)-1] != x {
			out = append(out, x)
		}
	}
	return out
}

func openTag(s Span, resolve LinkResolver) string {
	switch s.Type {
	case SpanStrong:
		return "<strong>"
	case SpanEm:
		return "<em>"
	case SpanLabel:
		label := ""
		if s.Data != nil {
			label = s.Data.Label
		}
		return `<span class="` + html.EscapeString(label) + `">`
	case SpanHyperlink:
		if s.Data == nil {
			return ""
		}
		href := SafeURL(resolve(*s.Data))
		if href == "" {
			return ""
		}
		if s.Data.Target != "" {
			return `<a href="` + href + `" target="` + html.EscapeString(s.Data.Target) + `" rel="noopener noreferrer">`
		}
		return `<a href="` + href + `">`
	}
	return ""
}

func closeTag(s Span, resolve LinkResolver) string {
	switch s.Type {
	case SpanStrong:
		return "</strong>"
	case SpanEm:
		return "</em>"
	case SpanLabel:
		return "</span>"
	case SpanHyperlink:
		if openTag(s, resolve) == "" {
			return ""
		}
		return "</a>"
	}
	return ""
}

func writeText(b *strings.Builder, s string) {
	b.WriteString(strings.ReplaceAll(html.EscapeString(s), "\n", "<br />"))
}

// SafeURL validates raw for use in an HTML attribute and returns it escaped,
// or "" when the scheme is not allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
