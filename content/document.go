// Package content fetches blog posts from a headless content store.
//
// The store itself is reached through the Client interface so that the
// HTTP API client, the local SQLite store and test fakes are interchangeable.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

// TypePost is the document type of blog posts.
const TypePost = "post"

// Document is a single blog post as retrieved from the content store.
// Documents are treated as values; nothing mutates one after it is fetched.
type Document struct {
	ID                   string
	UID                  string
	Type                 string
	FirstPublicationDate *time.Time
	Title                string
	Subtitle             string
	Banner               string
	Author               string
	Sections             []Section
}

// Section is one headed part of a post. Headings are unique within a
// document and double as display keys.
type Section struct {
	Heading string
	Body    richtext.RichText
}

// Link returns the site path of the document.
func (d Document) Link() string {
	return "/post/" + d.UID + "/"
}

// wireDocument is the JSON shape used by the content API and the import file.
type wireDocument struct {
	ID                   string    `json:"id"`
	UID                  string    `json:"uid"`
	Type                 string    `json:"type"`
	FirstPublicationDate Timestamp `json:"first_publication_date"`
	Data                 wireData  `json:"data"`
}

type wireData struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Banner   wireImage     `json:"banner"`
	Author   string        `json:"author"`
	Content  []wireSection `json:"content"`
}

type wireImage struct {
	URL string `json:"url"`
}

type wireSection struct {
	Heading string            `json:"heading"`
	Body    richtext.RichText `json:"body"`
}

// ParseDocument decodes a document in the content API's JSON shape.
func ParseDocument(b []byte) (Document, error) {
	var w wireDocument
	if err := json.Unmarshal(b, &w); err != nil {
		return Document{}, fmt.Errorf("content: decode document: %w", err)
	}
	if w.UID == "" {
		return Document{}, fmt.Errorf("content: document %q has no uid", w.ID)
	}
	d := Document{
		ID:                   w.ID,
		UID:                  w.UID,
		Type:                 w.Type,
		FirstPublicationDate: w.FirstPublicationDate.Time,
		Title:                w.Data.Title,
		Subtitle:             w.Data.Subtitle,
		Banner:               w.Data.Banner.URL,
		Author:               w.Data.Author,
		Sections:             make([]Section, 0, len(w.Data.Content)),
	}
	for _, s := range w.Data.Content {
		d.Sections = append(d.Sections, Section{Heading: s.Heading, Body: s.Body})
	}
	return d, nil
}

// MarshalDocument encodes d in the content API's JSON shape.
func MarshalDocument(d Document) ([]byte, error) {
	w := wireDocument{
		ID:                   d.ID,
		UID:                  d.UID,
		Type:                 d.Type,
		FirstPublicationDate: Timestamp{Time: d.FirstPublicationDate},
		Data: wireData{
			Title:    d.Title,
			Subtitle: d.Subtitle,
			Banner:   wireImage{URL: d.Banner},
			Author:   d.Author,
			Content:  make([]wireSection, 0, len(d.Sections)),
		},
	}
	for _, s := range d.Sections {
		w.Data.Content = append(w.Data.Content, wireSection{Heading: s.Heading, Body: s.Body})
	}
	return json.Marshal(w)
}

// Timestamp is a nullable publication time. The content API writes offsets
// without a colon ("2021-03-25T19:25:28+0000"); RFC 3339 is accepted too.
type Timestamp struct {
	Time *time.Time
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02",
}

// ParseTimestamp parses s using the layouts the content API emits.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = nil
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return fmt.Errorf("content: bad timestamp %q: %w", s, err)
	}
	t.Time = &parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format("2006-01-02T15:04:05-0700"))
}
