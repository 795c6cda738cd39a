package spacetraveling

import (
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, docs []content.Document) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeRSS(c.Response(), a.Config, docs)
}

func writeRSS(w io.Writer, cfg SiteConfig, docs []content.Document) error {
	items := make([]rssItem, 0, len(docs))
	for _, d := range docs {
		if d.FirstPublicationDate == nil {
			continue
		}
		postURL := views.BuildURL(cfg.URL, "post", d.UID)
		items = append(items, rssItem{
			Title:       d.Title,
			Link:        postURL,
			Description: views.Description(d),
			Author:      d.Author,
			PubDate:     d.FirstPublicationDate.Format(time.RFC1123Z),
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        views.BuildURL(cfg.URL),
			Description: cfg.Description,
			Language:    cfg.Locale,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
