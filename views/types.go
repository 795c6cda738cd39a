package views

import (
	"github.com/eringen/spacetraveling/content"
)

// SiteConfig holds the site-wide settings templates read. Every handler
// passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name         string // SITE_NAME  (default "Space Traveling")
	URL          string // SITE_URL   (default "http://localhost:3000")
	Description  string // SITE_DESCRIPTION
	Locale       string // SITE_LOCALE (default "pt-BR")
	CommentsRepo string // GitHub repo for the utterances widget; empty disables comments
	RefreshAfter int    // seconds before the loading page reloads itself
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
	JSONLD      string
	Refresh     int // seconds; 0 disables the refresh hint
	NoIndex     bool
}

// State is the render state of a post page.
type State int

const (
	// StateLoading means the document is still being generated.
	StateLoading State = iota
	// StateReady means the document is available and the page is complete.
	StateReady
	// StateError means the fetch failed; Err holds the cause.
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// PostPage is everything the post template needs. Document is only
// meaningful in StateReady and Err only in StateError.
type PostPage struct {
	State    State
	Document content.Document
	Preview  bool
	Err      error
}

// Loading returns a page in StateLoading.
func Loading() PostPage {
	return PostPage{State: StateLoading}
}

// Ready returns a page in StateReady for doc.
func Ready(doc content.Document, preview bool) PostPage {
	return PostPage{State: StateReady, Document: doc, Preview: preview}
}

// Failed returns a page in StateError.
func Failed(err error) PostPage {
	return PostPage{State: StateError, Err: err}
}
