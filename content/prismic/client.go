// Package prismic is a content.Client for the Prismic v2 REST API.
//
// Only the two calls the site needs are supported: querying every document
// of a type and looking a document up by uid, optionally at an explicit ref.
package prismic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/spacetraveling/content"
)

const (
	defaultPageSize = 100
	userAgent       = "spacetraveling/1.0"
)

// Client talks to a Prismic repository API endpoint such as
// https://<repo>.cdn.prismic.io/api/v2.
type Client struct {
	endpoint    string
	accessToken string
	pageSize    int
	http        *http.Client
}

var _ content.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the API access token for private repositories.
func WithAccessToken(token string) Option {
	return func(c *Client) {
		c.accessToken = token
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout bounds every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithPageSize sets the search page size (max 100).
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= 100 {
			c.pageSize = n
		}
	}
}

// New creates a Client for the API endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		pageSize: defaultPageSize,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiRoot struct {
	Refs []apiRef `json:"refs"`
}

type apiRef struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type searchResponse struct {
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Results    []json.RawMessage `json:"results"`
}

// Query implements content.Client. It follows pagination until every
// document of docType has been read.
func (c *Client) Query(ctx context.Context, docType string) ([]content.Document, error) {
	ref, err := c.masterRef(ctx)
	if err != nil {
		return nil, err
	}
	predicate := fmt.Sprintf(`[[at(document.type,%q)]]`, docType)

	var docs []content.Document
	for page := 1; ; page++ {
		resp, err := c.search(ctx, ref, predicate, page)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Results {
			d, err := content.ParseDocument(raw)
			if err != nil {
				return nil, err
			}
			docs = append(docs, d)
		}
		if page >= resp.TotalPages {
			break
		}
	}
	return docs, nil
}

// GetByUID implements content.Client. An empty ref reads the master ref.
func (c *Client) GetByUID(ctx context.Context, docType, uid, ref string) (content.Document, error) {
	if ref == "" {
		var err error
		ref, err = c.masterRef(ctx)
		if err != nil {
			return content.Document{}, err
		}
	}
	predicate := fmt.Sprintf(`[[at(my.%s.uid,%q)]]`, docType, uid)
	resp, err := c.search(ctx, ref, predicate, 1)
	if err != nil {
		return content.Document{}, err
	}
	if len(resp.Results) == 0 {
		return content.Document{}, fmt.Errorf("%s %q: %w", docType, uid, content.ErrNotFound)
	}
	return content.ParseDocument(resp.Results[0])
}

func (c *Client) masterRef(ctx context.Context) (string, error) {
	var root apiRoot
	if err := c.getJSON(ctx, c.endpoint, nil, &root); err != nil {
		return "", fmt.Errorf("prismic: api root: %w", err)
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", fmt.Errorf("prismic: no master ref at %s", c.endpoint)
}

func (c *Client) search(ctx context.Context, ref, predicate string, page int) (searchResponse, error) {
	q := url.Values{}
	q.Set("ref", ref)
	q.Set("q", predicate)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	var resp searchResponse
	if err := c.getJSON(ctx, c.endpoint+"/documents/search", q, &resp); err != nil {
		return searchResponse{}, fmt.Errorf("prismic: search: %w", err)
	}
	return resp, nil
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, dest interface{}) error {
	if c.accessToken != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("access_token", c.accessToken)
	}
	if len(q) > 0 {
		rawURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
