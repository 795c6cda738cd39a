package spacetraveling

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

// countingClient counts lookups and can hold them until release is closed.
type countingClient struct {
	*content.MemoryClient
	gets    atomic.Int32
	release chan struct{}
}

func (c *countingClient) GetByUID(ctx context.Context, docType, uid, ref string) (content.Document, error) {
	c.gets.Add(1)
	if c.release != nil {
		<-c.release
	}
	return c.MemoryClient.GetByUID(ctx, docType, uid, ref)
}

func newTestCache(t *testing.T, client content.Client, blocking bool) *PageCache {
	t.Helper()
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewPageCache(content.NewFetcher(client, log), 24*time.Hour, blocking, log)
}

func TestPageCacheWarm(t *testing.T) {
	client := &countingClient{MemoryClient: content.NewMemoryClient(
		testPost("post-1", "Post 1", date(2021, 1, 1)),
		testPost("post-2", "Post 2", date(2021, 1, 2)),
	)}
	c := newTestCache(t, client, false)

	n, err := c.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page := c.Get(context.Background(), "post-2")
	assert.Equal(t, views.StateReady, page.State)
	assert.Equal(t, "Post 2", page.Document.Title)
	assert.False(t, page.Preview)
	assert.EqualValues(t, 2, client.gets.Load(), "warm pages must be served without fetching again")
}

func TestPageCacheWarmReturnsFailure(t *testing.T) {
	client := content.NewMemoryClient(testPost("post-1", "Post 1", nil))
	client.Err = errors.New("connection refused")
	c := newTestCache(t, client, false)

	_, err := c.Warm(context.Background())
	require.Error(t, err)
	assert.True(t, content.IsFetch(err))
}

func TestPageCacheFallbackShowsLoadingThenReady(t *testing.T) {
	client := &countingClient{
		MemoryClient: content.NewMemoryClient(testPost("novo", "Novo post", date(2021, 1, 1))),
		release:      make(chan struct{}),
	}
	c := newTestCache(t, client, false)
	ctx := context.Background()

	first := c.Get(ctx, "novo")
	assert.Equal(t, views.StateLoading, first.State)
	assert.Equal(t, views.StateLoading, c.Get(ctx, "novo").State, "still loading while the fetch is pending")

	close(client.release)
	require.Eventually(t, func() bool {
		return c.Get(ctx, "novo").State == views.StateReady
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Novo post", c.Get(ctx, "novo").Document.Title)
}

func TestPageCacheFallbackNotFound(t *testing.T) {
	client := &countingClient{MemoryClient: content.NewMemoryClient()}
	c := newTestCache(t, client, false)
	c.notFoundTTL = 200 * time.Millisecond
	ctx := context.Background()

	require.Equal(t, views.StateLoading, c.Get(ctx, "missing").State)

	var page views.PostPage
	require.Eventually(t, func() bool {
		page = c.Get(ctx, "missing")
		return page.State == views.StateError
	}, time.Second, 5*time.Millisecond)
	assert.True(t, content.IsNotFound(page.Err))

	page = c.Get(ctx, "missing")
	assert.Equal(t, views.StateError, page.State, "a missing post stays cached")
	assert.EqualValues(t, 1, client.gets.Load())

	require.Eventually(t, func() bool {
		return c.Get(ctx, "missing").State == views.StateLoading
	}, time.Second, 5*time.Millisecond, "the store is asked again once the entry expires")
}

func TestPageCacheFallbackFailureReportedOnce(t *testing.T) {
	client := content.NewMemoryClient(testPost("post-1", "Post 1", nil))
	client.Err = errors.New("connection refused")
	c := newTestCache(t, client, false)
	ctx := context.Background()

	require.Equal(t, views.StateLoading, c.Get(ctx, "post-1").State)
	require.Eventually(t, func() bool {
		return c.Get(ctx, "post-1").State == views.StateError
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, views.StateLoading, c.Get(ctx, "post-1").State, "a failure is reported once and then retried")
}

func TestPageCacheBlockingFallback(t *testing.T) {
	client := &countingClient{MemoryClient: content.NewMemoryClient(testPost("post-1", "Post 1", nil))}
	c := newTestCache(t, client, true)
	ctx := context.Background()

	page := c.Get(ctx, "post-1")
	assert.Equal(t, views.StateReady, page.State)

	page = c.Get(ctx, "missing")
	require.Equal(t, views.StateError, page.State)
	assert.True(t, content.IsNotFound(page.Err))

	gets := client.gets.Load()
	page = c.Get(ctx, "missing")
	assert.True(t, content.IsNotFound(page.Err))
	assert.Equal(t, gets, client.gets.Load(), "missing posts are answered from the cache")
}

func TestPageCacheRegeneratesStalePages(t *testing.T) {
	client := &countingClient{MemoryClient: content.NewMemoryClient(testPost("post-1", "Antigo", nil))}
	c := newTestCache(t, client, true)
	ctx := context.Background()

	now := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	var clock atomic.Int64
	clock.Store(now.UnixNano())
	c.now = func() time.Time { return time.Unix(0, clock.Load()) }

	require.Equal(t, "Antigo", c.Get(ctx, "post-1").Document.Title)
	client.Put(testPost("post-1", "Novo", nil))

	assert.Equal(t, "Antigo", c.Get(ctx, "post-1").Document.Title, "fresh page is served from cache")

	clock.Store(now.Add(25 * time.Hour).UnixNano())
	page := c.Get(ctx, "post-1")
	assert.Equal(t, views.StateReady, page.State)
	assert.Equal(t, "Antigo", page.Document.Title, "stale page is served while regenerating")

	require.Eventually(t, func() bool {
		return c.Get(ctx, "post-1").Document.Title == "Novo"
	}, time.Second, 5*time.Millisecond)
}

func TestPageCacheKeepsStalePageOnFailure(t *testing.T) {
	client := &countingClient{MemoryClient: content.NewMemoryClient(testPost("post-1", "Antigo", nil))}
	c := newTestCache(t, client, true)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	require.Equal(t, views.StateReady, c.Get(ctx, "post-1").State)

	client.Err = errors.New("503")
	c.now = func() time.Time { return base.Add(48 * time.Hour) }
	gets := client.gets.Load()

	page := c.Get(ctx, "post-1")
	assert.Equal(t, views.StateReady, page.State)
	require.Eventually(t, func() bool { return client.gets.Load() > gets }, time.Second, 5*time.Millisecond)

	page = c.Get(ctx, "post-1")
	assert.Equal(t, views.StateReady, page.State)
	assert.Equal(t, "Antigo", page.Document.Title)
}

func TestPageCachePreviewBypassesCache(t *testing.T) {
	client := &countingClient{MemoryClient: content.NewMemoryClient(testPost("post-1", "Publicado", nil))}
	client.PutRevision("ref-1", testPost("post-1", "Rascunho", nil))
	c := newTestCache(t, client, true)
	ctx := context.Background()

	page := c.Preview(ctx, "post-1", "ref-1")
	assert.Equal(t, views.StateReady, page.State)
	assert.True(t, page.Preview)
	assert.Equal(t, "Rascunho", page.Document.Title)

	assert.Equal(t, "Publicado", c.Get(ctx, "post-1").Document.Title)
}

func TestPageCacheListAndInvalidate(t *testing.T) {
	client := content.NewMemoryClient(testPost("post-1", "Post 1", nil))
	c := newTestCache(t, client, true)
	ctx := context.Background()

	docs, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	client.Put(testPost("post-2", "Post 2", nil))
	docs, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "list is cached")

	c.Invalidate("post-2")
	docs, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
