package richtext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextFromHTML extracts the plain text of markup produced by AsHTML. Block
// elements and list items are joined by a single space and <br /> becomes a
// newline, so for unformatted input TextFromHTML(AsHTML(rt)) == AsText(rt).
func TextFromHTML(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("richtext: parse html: %w", err)
	}
	doc.Find("br").ReplaceWithHtml("\n")

	var parts []string
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "ul", "ol":
			s.Children().Each(func(_ int, li *goquery.Selection) {
				parts = append(parts, li.Text())
			})
		case "img", "div":
		default:
			if s.HasClass("block-img") {
				return
			}
			parts = append(parts, s.Text())
		}
	})
	return strings.Join(parts, " "), nil
}

// Excerpt returns at most n runes of the plain text of rt, cut at a word
// boundary when possible.
func Excerpt(rt RichText, n int) string {
	text := strings.Join(strings.Fields(AsText(rt)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
