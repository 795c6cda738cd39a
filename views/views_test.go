package views

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

var testCfg = SiteConfig{
	Name:   "Space Traveling",
	URL:    "https://spacetraveling.example.com",
	Locale: "pt-BR",
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

// words returns a section whose body holds n words.
func words(heading string, n int) content.Section {
	return content.Section{
		Heading: heading,
		Body:    richtext.RichText{{Type: richtext.TypeParagraph, Text: strings.TrimSpace(strings.Repeat("palavra ", n))}},
	}
}

func testDoc() content.Document {
	published := time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC)
	return content.Document{
		UID:                  "como-utilizar-hooks",
		Type:                 content.TypePost,
		FirstPublicationDate: &published,
		Title:                "Como utilizar Hooks",
		Banner:               "https://images.example.com/banner.png",
		Author:               "Joseph Oliveira",
		Sections: []content.Section{
			words("Primeiro", 150),
			words("Segundo", 250),
			words("Terceiro", 10),
		},
	}
}

func TestEstimateReadingTime(t *testing.T) {
	tests := []struct {
		name     string
		sections []content.Section
		want     int
	}{
		{"no sections", nil, 0},
		{"150 + 150", []content.Section{words("a", 150), words("b", 150)}, 2},
		{"150 + 250 rounds each section", []content.Section{words("a", 150), words("b", 250)}, 3},
		{"one long section", []content.Section{words("a", 400)}, 2},
		{"exact boundary", []content.Section{words("a", 200)}, 1},
		{"just over", []content.Section{words("a", 201)}, 2},
		{"empty body contributes zero", []content.Section{{Heading: "vazio"}, words("b", 1)}, 1},
		{"whitespace only body", []content.Section{{Heading: "x", Body: richtext.RichText{{Type: richtext.TypeParagraph, Text: "  \n\t "}}}}, 0},
	}
	for _, tt := range tests {
		if got := EstimateReadingTime(tt.sections); got != tt.want {
			t.Errorf("%s: EstimateReadingTime = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEstimateReadingTimeCountsAllBlocks(t *testing.T) {
	s := content.Section{
		Heading: "multi",
		Body: richtext.RichText{
			{Type: richtext.TypeParagraph, Text: strings.TrimSpace(strings.Repeat("a ", 100))},
			{Type: richtext.TypeListItem, Text: strings.TrimSpace(strings.Repeat("b ", 101))},
		},
	}
	if got := EstimateReadingTime([]content.Section{s}); got != 2 {
		t.Errorf("EstimateReadingTime = %d, want 2", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		locale string
		want   string
	}{
		{"pt-BR", "05 mar 2021"},
		{"en-US", "05 Mar 2021"},
		{"", "05 mar 2021"},
		{"xx", "05 mar 2021"},
	}
	for _, tt := range tests {
		if got := FormatDate(d, tt.locale); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestPostReadyRendersSectionsInOrder(t *testing.T) {
	got := render(t, Post(testCfg, Ready(testDoc(), false)))

	first := strings.Index(got, "<h2>Primeiro</h2>")
	second := strings.Index(got, "<h2>Segundo</h2>")
	third := strings.Index(got, "<h2>Terceiro</h2>")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing section headings: %q", got)
	}
	if !(first < second && second < third) {
		t.Errorf("sections out of order: %d %d %d", first, second, third)
	}
	for _, want := range []string{
		"<title>Como utilizar Hooks | Space Traveling</title>",
		`<h1>Como utilizar Hooks</h1>`,
		`<img src="https://images.example.com/banner.png" alt="Como utilizar Hooks"`,
		`<time datetime="2021-03-25">25 mar 2021</time>`,
		`<span class="author">Joseph Oliveira</span>`,
		`<span class="reading-time">4 min</span>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPostPreviewLink(t *testing.T) {
	withPreview := render(t, Post(testCfg, Ready(testDoc(), true)))
	if !strings.Contains(withPreview, `<a href="/api/exit-preview">Sair do modo Preview</a>`) {
		t.Errorf("preview page should contain exit link")
	}
	if !strings.Contains(withPreview, `<meta name="robots" content="noindex"/>`) {
		t.Errorf("preview page should not be indexed")
	}

	without := render(t, Post(testCfg, Ready(testDoc(), false)))
	if strings.Contains(without, ExitPreviewPath) {
		t.Errorf("published page should not contain exit link")
	}
}

func TestPostLoadingState(t *testing.T) {
	got := render(t, Post(testCfg, Loading()))
	if !strings.Contains(got, "Carregando...") {
		t.Errorf("loading page missing placeholder: %q", got)
	}
	if !strings.Contains(got, `<meta http-equiv="refresh" content="1"/>`) {
		t.Errorf("loading page should refresh itself: %q", got)
	}
	if strings.Contains(got, "<article") {
		t.Errorf("loading page should not render an article")
	}
}

func TestPostErrorState(t *testing.T) {
	notFound := render(t, Post(testCfg, Failed(&content.NotFoundError{Type: "post", UID: "x"})))
	if !strings.Contains(notFound, "Página não encontrada") {
		t.Errorf("not found page expected: %q", notFound)
	}
	failed := render(t, Post(testCfg, Failed(&content.FetchError{Op: "get", Err: errors.New("boom")})))
	if !strings.Contains(failed, "Algo deu errado") {
		t.Errorf("server error page expected: %q", failed)
	}
}

func TestPostWithoutPublicationDate(t *testing.T) {
	doc := testDoc()
	doc.FirstPublicationDate = nil
	got := render(t, Post(testCfg, Ready(doc, true)))
	if !strings.Contains(got, `<time class="unpublished">Não publicado</time>`) {
		t.Errorf("draft without date should be labelled: %q", got)
	}
}

func TestSectionEscapesHeading(t *testing.T) {
	got := render(t, Section(content.Section{Heading: "<b>x</b>"}))
	if got != "<section><h2>&lt;b&gt;x&lt;/b&gt;</h2><article></article></section>" {
		t.Errorf("Section = %q", got)
	}
}

func TestSectionResolvesDocumentLinks(t *testing.T) {
	s := content.Section{
		Heading: "links",
		Body: richtext.RichText{{
			Type:  richtext.TypeParagraph,
			Text:  "veja",
			Spans: []richtext.Span{{Start: 0, End: 4, Type: richtext.SpanHyperlink, Data: &richtext.SpanData{LinkType: "Document", UID: "outro-post", Type: "post"}}},
		}},
	}
	got := render(t, Section(s))
	if !strings.Contains(got, `<a href="/post/outro-post/">veja</a>`) {
		t.Errorf("document link not resolved: %q", got)
	}
}

func TestCommentsWidget(t *testing.T) {
	cfg := testCfg
	if got := render(t, Comments(cfg)); got != "" {
		t.Errorf("comments should be empty without repo: %q", got)
	}
	cfg.CommentsRepo = "user/blog-comments"
	if got := render(t, Comments(cfg)); !strings.Contains(got, `repo="user/blog-comments"`) {
		t.Errorf("comments widget missing repo: %q", got)
	}
}

func TestHomeListsPosts(t *testing.T) {
	a, b := testDoc(), testDoc()
	b.UID, b.Title = "outro", "Outro post"
	got := render(t, Home(testCfg, []content.Document{a, b}))
	if !strings.Contains(got, `href="/post/como-utilizar-hooks/"`) || !strings.Contains(got, `href="/post/outro/"`) {
		t.Errorf("home should link every post: %q", got)
	}
	if !strings.Contains(got, "<title>Space Traveling</title>") {
		t.Errorf("home title wrong")
	}
}

func TestStateString(t *testing.T) {
	if StateLoading.String() != "loading" || StateReady.String() != "ready" || StateError.String() != "error" {
		t.Errorf("unexpected state names")
	}
}

func TestBuildURL(t *testing.T) {
	if got := BuildURL("https://x.com", "post", "a"); got != "https://x.com/post/a/" {
		t.Errorf("BuildURL = %q", got)
	}
	if got := BuildURL("https://x.com"); got != "https://x.com" {
		t.Errorf("BuildURL root = %q", got)
	}
}
