package spacetraveling

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

const indexKey = "index"

// notFoundTTL is how long a missing post is answered from the cache before
// the content store is asked again.
const notFoundTTL = time.Minute

// page is a generated post, or the error its generation ended with.
type page struct {
	doc       content.Document
	err       error
	generated time.Time
}

// PageCache holds generated post pages and regenerates them once they are
// older than the revalidate window. Pages that were never generated are
// built on first request: in the background behind a loading page, or
// during the request when blocking is set.
type PageCache struct {
	fetcher    *content.Fetcher
	revalidate time.Duration
	blocking   bool

	pages    *cache.Cache
	group    singleflight.Group
	building sync.Map // uid -> struct{} while a background build runs
	log      *logrus.Entry
	now      func() time.Time

	notFoundTTL time.Duration
}

// NewPageCache creates a PageCache generating pages with f.
func NewPageCache(f *content.Fetcher, revalidate time.Duration, blocking bool, log *logrus.Logger) *PageCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PageCache{
		fetcher:    f,
		revalidate: revalidate,
		blocking:   blocking,
		pages:      cache.New(cache.NoExpiration, 10*time.Minute),
		log:        log.WithField("component", "cache"),
		now:        time.Now,

		notFoundTTL: notFoundTTL,
	}
}

func postKey(uid string) string {
	return "post:" + uid
}

// Warm generates every post ahead of time, in the order the store lists
// them. The first failure stops warming and is returned.
func (c *PageCache) Warm(ctx context.Context) (int, error) {
	uids, err := c.fetcher.ListIdentifiers(ctx)
	if err != nil {
		return 0, err
	}
	for i, uid := range uids {
		if _, err := c.build(ctx, uid); err != nil {
			return i, err
		}
	}
	c.log.WithField("count", len(uids)).Info("Generated post pages")
	return len(uids), nil
}

// Get returns the page for uid.
func (c *PageCache) Get(ctx context.Context, uid string) views.PostPage {
	if v, ok := c.pages.Get(postKey(uid)); ok {
		p := v.(*page)
		if p.err != nil {
			// Missing posts stay cached until notFoundTTL runs out. Any
			// other failure is reported once and the next request retries.
			if !content.IsNotFound(p.err) {
				c.pages.Delete(postKey(uid))
			}
			return views.Failed(p.err)
		}
		if c.now().Sub(p.generated) >= c.revalidate {
			c.regenerate(ctx, uid, true)
		}
		return views.Ready(p.doc, false)
	}

	if c.blocking {
		doc, err := c.build(ctx, uid)
		if err != nil {
			if content.IsNotFound(err) {
				c.fail(uid, err)
			}
			return views.Failed(err)
		}
		return views.Ready(doc, false)
	}
	c.regenerate(ctx, uid, false)
	return views.Loading()
}

// Preview fetches uid at ref without touching the cache.
func (c *PageCache) Preview(ctx context.Context, uid, ref string) views.PostPage {
	doc, err := c.fetcher.FetchDocument(ctx, uid, ref)
	if err != nil {
		return views.Failed(err)
	}
	return views.Ready(doc, true)
}

// List returns every post for the home page and feeds. The list is kept for
// the revalidate window.
func (c *PageCache) List(ctx context.Context) ([]content.Document, error) {
	if v, ok := c.pages.Get(indexKey); ok {
		return v.([]content.Document), nil
	}
	v, err, _ := c.group.Do(indexKey, func() (interface{}, error) {
		docs, err := c.fetcher.ListDocuments(ctx)
		if err != nil {
			return nil, err
		}
		c.pages.Set(indexKey, docs, c.revalidate)
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]content.Document), nil
}

// Invalidate drops the page for uid and the post list.
func (c *PageCache) Invalidate(uid string) {
	c.pages.Delete(postKey(uid))
	c.pages.Delete(indexKey)
}

// build generates uid and stores the result. Concurrent builds of the same
// uid share one fetch.
func (c *PageCache) build(ctx context.Context, uid string) (content.Document, error) {
	v, err, _ := c.group.Do(postKey(uid), func() (interface{}, error) {
		doc, err := c.fetcher.FetchDocument(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		c.pages.Set(postKey(uid), &page{doc: doc, generated: c.now()}, cache.NoExpiration)
		return doc, nil
	})
	if err != nil {
		return content.Document{}, err
	}
	return v.(content.Document), nil
}

// regenerate builds uid in the background. When stale is set the current
// page survives a failed build; otherwise the failure is stored so the next
// request can report it.
func (c *PageCache) regenerate(ctx context.Context, uid string, stale bool) {
	if _, running := c.building.LoadOrStore(uid, struct{}{}); running {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer c.building.Delete(uid)
		start := c.now()
		log := c.log.WithField("uid", uid)
		if _, err := c.build(ctx, uid); err != nil {
			if stale {
				log.WithError(err).Warn("Regeneration failed, serving stale page")
				return
			}
			c.fail(uid, err)
			if content.IsNotFound(err) {
				log.Info("Post not found")
				return
			}
			log.WithError(err).Error("Page generation failed")
			return
		}
		log.WithField("took", c.now().Sub(start)).Debug("Page generated")
	}()
}

// fail stores the error a generation of uid ended with.
func (c *PageCache) fail(uid string, err error) {
	ttl := cache.NoExpiration
	if content.IsNotFound(err) {
		ttl = c.notFoundTTL
	}
	c.pages.Set(postKey(uid), &page{err: err, generated: c.now()}, ttl)
}
