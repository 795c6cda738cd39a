package content

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Client is the content store a Fetcher reads from.
type Client interface {
	// Query returns every published document of docType.
	Query(ctx context.Context, docType string) ([]Document, error)
	// GetByUID returns the document of docType with the given uid. An empty
	// ref selects the latest published revision; any other ref selects that
	// revision (used for previews). It returns an error wrapping ErrNotFound
	// when nothing matches.
	GetByUID(ctx context.Context, docType, uid, ref string) (Document, error)
}

// Fetcher retrieves blog posts from a Client. It does not retry; every
// failure is returned to the caller as a *NotFoundError or *FetchError.
type Fetcher struct {
	client Client
	log    *logrus.Entry
}

// NewFetcher creates a Fetcher reading from client.
func NewFetcher(client Client, log *logrus.Logger) *Fetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{
		client: client,
		log:    log.WithField("component", "content"),
	}
}

// ListIdentifiers returns the uid of every post, in the order the store
// returns them.
func (f *Fetcher) ListIdentifiers(ctx context.Context) ([]string, error) {
	docs, err := f.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(docs))
	for _, d := range docs {
		uids = append(uids, d.UID)
	}
	return uids, nil
}

// ListDocuments returns every post.
func (f *Fetcher) ListDocuments(ctx context.Context) ([]Document, error) {
	docs, err := f.client.Query(ctx, TypePost)
	if err != nil {
		f.log.WithError(err).Error("Failed to query posts")
		return nil, &FetchError{Op: "query", Err: err}
	}
	f.log.WithField("count", len(docs)).Debug("Queried posts")
	return docs, nil
}

// FetchDocument returns the post with the given uid. ref selects a draft
// revision for previews; "" selects the latest published one.
func (f *Fetcher) FetchDocument(ctx context.Context, uid, ref string) (Document, error) {
	doc, err := f.client.GetByUID(ctx, TypePost, uid, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, &NotFoundError{Type: TypePost, UID: uid}
		}
		f.log.WithFields(logrus.Fields{
			"uid": uid,
			"ref": ref,
		}).WithError(err).Error("Failed to fetch post")
		return Document{}, &FetchError{Op: "get", UID: uid, Err: err}
	}
	return doc, nil
}
