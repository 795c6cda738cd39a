package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
)

// Home lists every post, newest first as the store returns them.
func Home(cfg SiteConfig, docs []content.Document) templ.Component {
	meta := PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
		JSONLD:      WebsiteJsonLD(cfg),
	}
	body := component(func(h *htmlWriter) {
		h.raw(`<main class="container"><div class="posts">`)
		for _, d := range docs {
			h.raw("<a")
			h.attr("href", d.Link())
			h.raw("><strong>")
			h.text(d.Title)
			h.raw("</strong>")
			if d.Subtitle != "" {
				h.raw("<p>")
				h.text(d.Subtitle)
				h.raw("</p>")
			}
			h.raw(`<div class="info">`)
			if d.FirstPublicationDate != nil {
				h.raw("<time")
				h.attr("datetime", d.FirstPublicationDate.Format("2006-01-02"))
				h.raw(">")
				h.text(FormatDate(*d.FirstPublicationDate, cfg.Locale))
				h.raw("</time>")
			}
			h.raw("<span>")
			h.text(d.Author)
			h.raw("</span></div></a>")
		}
		h.raw("</div></main>")
	})
	return Layout(cfg, meta, body)
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	l := localeFor(cfg.Locale)
	return messagePage(cfg, l.NotFoundTitle, l.NotFoundMessage, l.BackHome)
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	l := localeFor(cfg.Locale)
	return messagePage(cfg, l.ErrorTitle, l.ErrorMessage, l.BackHome)
}

func messagePage(cfg SiteConfig, title, message, back string) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<main class="container"><div class="message"><h1>`)
		h.text(title)
		h.raw("</h1><p>")
		h.text(message)
		h.raw(`</p><a href="/">`)
		h.text(back)
		h.raw("</a></div></main>")
	})
	return Layout(cfg, PageMeta{Title: title, NoIndex: true}, body)
}
