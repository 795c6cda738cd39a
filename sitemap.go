package spacetraveling

import (
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, docs []content.Document) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), a.Config.URL, docs)
}

// writeSitemap lists the home page and every post whose publication date is
// known.
func writeSitemap(w io.Writer, base string, docs []content.Document) error {
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
	}
	for _, d := range docs {
		if d.FirstPublicationDate == nil {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "post", d.UID),
			LastMod: d.FirstPublicationDate.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

func robotsTxt(base string) string {
	return "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + strings.TrimRight(views.BuildURL(base), "/") + "/sitemap.xml\n"
}
