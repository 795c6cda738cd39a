package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// LinkResolver resolves hyperlinks inside post bodies. Links to other posts
// point at their page on this site; web links keep their URL.
func LinkResolver(d richtext.SpanData) string {
	if d.LinkType == "Document" && d.UID != "" {
		if d.Type == "" || d.Type == content.TypePost {
			return "/post/" + url.PathEscape(d.UID) + "/"
		}
		return "/"
	}
	return d.URL
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, doc content.Document) string {
	postURL := BuildURL(cfg.URL, "post", doc.UID)
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": doc.Title,
		"url":      postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"timeRequired": "PT" + strconv.Itoa(EstimateReadingTime(doc.Sections)) + "M",
	}
	if doc.Subtitle != "" {
		data["description"] = doc.Subtitle
	}
	if doc.FirstPublicationDate != nil {
		data["datePublished"] = doc.FirstPublicationDate.Format("2006-01-02")
	}
	if doc.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  doc.Author,
		}
	}
	if doc.Banner != "" {
		data["image"] = doc.Banner
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Description returns the meta description of a post: its subtitle, or an
// excerpt of the first section.
func Description(doc content.Document) string {
	if doc.Subtitle != "" {
		return doc.Subtitle
	}
	for _, s := range doc.Sections {
		if ex := richtext.Excerpt(s.Body, 160); ex != "" {
			return ex
		}
	}
	return ""
}
