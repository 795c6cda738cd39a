package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// ExitPreviewPath is the route that ends a preview session.
const ExitPreviewPath = "/api/exit-preview"

// Post renders a post page according to its state.
func Post(cfg SiteConfig, page PostPage) templ.Component {
	switch page.State {
	case StateLoading:
		return LoadingPage(cfg)
	case StateError:
		if content.IsNotFound(page.Err) {
			return NotFound(cfg)
		}
		return ServerError(cfg)
	}
	doc := page.Document
	meta := PageMeta{
		Title:       doc.Title,
		Description: Description(doc),
		URL:         BuildURL(cfg.URL, "post", doc.UID),
		OGType:      "article",
		Image:       doc.Banner,
		JSONLD:      BlogPostingJsonLD(cfg, doc),
		NoIndex:     page.Preview,
	}
	return Layout(cfg, meta, PostBody(cfg, doc, EstimateReadingTime(doc.Sections), page.Preview))
}

// PostBody composes the article: hero banner, title, metadata line, the
// sections in document order, the comments widget and, in preview mode, the
// exit-preview link.
func PostBody(cfg SiteConfig, doc content.Document, readingTime int, preview bool) templ.Component {
	l := localeFor(cfg.Locale)
	return component(func(h *htmlWriter) {
		if doc.Banner != "" {
			h.raw(`<div class="hero"><img`)
			h.attr("src", doc.Banner)
			h.attr("alt", doc.Title)
			h.raw(` fetchpriority="high"/></div>`)
		}
		h.raw(`<main class="container"><article class="post"><h1>`)
		h.text(doc.Title)
		h.raw("</h1>")
		h.component(PostInfo(cfg, doc, readingTime))
		h.raw(`<div class="content">`)
		for _, s := range doc.Sections {
			h.component(Section(s))
		}
		h.raw("</div></article>")
		h.component(Comments(cfg))
		if preview {
			h.raw(`<aside class="preview-exit"><a`)
			h.attr("href", ExitPreviewPath)
			h.raw(">")
			h.text(l.ExitPreview)
			h.raw("</a></aside>")
		}
		h.raw("</main>")
	})
}

// PostInfo renders the metadata line: publication date, author and reading
// time.
func PostInfo(cfg SiteConfig, doc content.Document, readingTime int) templ.Component {
	l := localeFor(cfg.Locale)
	return component(func(h *htmlWriter) {
		h.raw(`<div class="info"><footer>`)
		if doc.FirstPublicationDate != nil {
			h.raw("<time")
			h.attr("datetime", doc.FirstPublicationDate.Format("2006-01-02"))
			h.raw(">")
			h.text(FormatDate(*doc.FirstPublicationDate, cfg.Locale))
			h.raw("</time>")
		} else {
			h.raw(`<time class="unpublished">`)
			h.text(l.UnpublishedLabel)
			h.raw("</time>")
		}
		h.raw(`<span class="author">`)
		h.text(doc.Author)
		h.raw(`</span><span class="reading-time">`)
		h.text(strconv.Itoa(readingTime) + " " + l.Minutes)
		h.raw("</span></footer></div>")
	})
}

// Section renders one section: its heading and its body as HTML. The body
// comes from a trusted source and is embedded without sanitizing.
func Section(s content.Section) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<section><h2>")
		h.text(s.Heading)
		h.raw("</h2><article>")
		h.raw(richtext.AsHTML(s.Body, LinkResolver))
		h.raw("</article></section>")
	})
}

// Comments renders the utterances widget when a repository is configured.
func Comments(cfg SiteConfig) templ.Component {
	return component(func(h *htmlWriter) {
		if cfg.CommentsRepo == "" {
			return
		}
		h.raw(`<div id="comments"><script src="https://utteranc.es/client.js"`)
		h.attr("repo", cfg.CommentsRepo)
		h.raw(` issue-term="pathname" theme="github-dark" crossorigin="anonymous" async></script></div>`)
	})
}

// LoadingPage is shown while a post that was not generated ahead of time is
// being built. It reloads itself after cfg.RefreshAfter seconds.
func LoadingPage(cfg SiteConfig) templ.Component {
	l := localeFor(cfg.Locale)
	refresh := cfg.RefreshAfter
	if refresh <= 0 {
		refresh = 1
	}
	body := component(func(h *htmlWriter) {
		h.raw(`<main class="container"><div class="loading">`)
		h.text(l.Loading)
		h.raw("</div></main>")
	})
	return Layout(cfg, PageMeta{Title: l.Loading, Refresh: refresh, NoIndex: true}, body)
}
