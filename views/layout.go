// Package views renders the site's pages as templ components.
//
// The post page is composed from a PostPage value whose State decides what
// is drawn: a placeholder while the post is generated, the full article once
// it is ready, or an error page.
package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can be written
// as straight-line markup.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Layout wraps body in the document shell: <head> metadata and the site
// header.
func Layout(cfg SiteConfig, meta PageMeta, body templ.Component) templ.Component {
	l := localeFor(cfg.Locale)
	return component(func(h *htmlWriter) {
		h.raw("<!DOCTYPE html><html")
		h.attr("lang", l.Lang)
		h.raw(`><head><meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw("<title>")
		h.text(pageTitle(cfg, meta))
		h.raw("</title>")
		if meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", meta.Description)
			h.raw("/>")
		}
		if meta.NoIndex {
			h.raw(`<meta name="robots" content="noindex"/>`)
		}
		if meta.Refresh > 0 {
			h.raw(`<meta http-equiv="refresh"`)
			h.attr("content", strconv.Itoa(meta.Refresh))
			h.raw("/>")
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(`/><meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw("/>")
		}
		h.raw(`<meta property="og:site_name"`)
		h.attr("content", cfg.Name)
		h.raw(`/><meta property="og:title"`)
		h.attr("content", pageTitle(cfg, meta))
		h.raw("/>")
		if meta.OGType != "" {
			h.raw(`<meta property="og:type"`)
			h.attr("content", meta.OGType)
			h.raw("/>")
		}
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw("/>")
		}
		h.raw(`<link rel="icon" href="/favicon.svg" type="image/svg+xml"/>`)
		h.raw(`<link rel="stylesheet" href="/public/styles.css"/>`)
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", cfg.Name)
		h.raw(` href="/feed.xml"/>`)
		if meta.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw("</script>")
		}
		h.raw("</head><body>")
		h.component(Header(cfg))
		h.component(body)
		h.raw("</body></html>")
	})
}

// Header renders the site header with the logo linking home.
func Header(cfg SiteConfig) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header class="header"><div class="container"><a href="/"><img src="/public/logo.svg"`)
		h.attr("alt", cfg.Name)
		h.raw("/></a></div></header>")
	})
}

func pageTitle(cfg SiteConfig, meta PageMeta) string {
	if meta.Title == "" || meta.Title == cfg.Name {
		return cfg.Name
	}
	return meta.Title + " | " + cfg.Name
}
