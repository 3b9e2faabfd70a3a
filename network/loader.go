package network

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// CacheMode selects how the loader consults the cache.
type CacheMode int

const (
	// CacheDefault serves fresh cached responses and stores new ones.
	CacheDefault CacheMode = iota
	// CacheReload always goes to the network and refreshes the cache.
	CacheReload
)

// Resource is the outcome of a load. Error is set when nothing usable
// was retrieved; HTTP error statuses are reported through StatusCode.
type Resource struct {
	URL        *url.URL
	Content    []byte
	MediaType  string
	Charset    string
	StatusCode int
	Cached     bool
	Error      error
}

// IsSuccess reports whether the resource loaded with a non-error status.
func (r *Resource) IsSuccess() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 400
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCache makes the loader use the given cache.
func WithCache(c *Cache) LoaderOption {
	return func(l *Loader) {
		l.cache = c
	}
}

// Loader fetches documents over HTTP(S), file: and data: URLs.
type Loader struct {
	client *Client
	cache  *Cache
}

// NewLoader creates a loader backed by client.
func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{client: client}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewCache(128)
	}
	return l
}

// Cache returns the loader's response cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load retrieves rawURL.
func (l *Loader) Load(ctx context.Context, rawURL string, mode CacheMode) *Resource {
	u, err := NormalizeURL(rawURL)
	if err != nil {
		return &Resource{Error: err}
	}

	switch u.Scheme {
	case "data":
		return loadData(u)
	case "file":
		return loadFile(u)
	case "http", "https":
		return l.loadHTTP(ctx, u, mode)
	default:
		return &Resource{URL: u, Error: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

func loadData(u *url.URL) *Resource {
	d, err := ParseDataURL(u.String())
	if err != nil {
		return &Resource{URL: u, Error: err}
	}
	return &Resource{
		URL:        u,
		Content:    d.Data,
		MediaType:  d.MediaType,
		Charset:    d.Charset,
		StatusCode: 200,
	}
}

func loadFile(u *url.URL) *Resource {
	content, err := os.ReadFile(u.Path)
	if err != nil {
		return &Resource{URL: u, Error: fmt.Errorf("read %s: %w", u.Path, err)}
	}
	return &Resource{
		URL:        u,
		Content:    content,
		MediaType:  GuessContentType(u.Path),
		StatusCode: 200,
	}
}

func (l *Loader) loadHTTP(ctx context.Context, u *url.URL, mode CacheMode) *Resource {
	key := u.String()
	if mode == CacheDefault {
		if e, ok := l.cache.Get(key); ok {
			res := fromResponse(e.Response)
			res.Cached = true
			return res
		}
	}

	resp, err := l.client.Get(ctx, key)
	if err != nil {
		return &Resource{URL: u, Error: err}
	}
	if resp.OK() && !strings.EqualFold(resp.Headers.Get("Vary"), "*") {
		l.cache.Put(key, resp)
	}
	return fromResponse(resp)
}

func fromResponse(resp *Response) *Resource {
	mediaType, charset := ParseContentType(resp.ContentType)
	return &Resource{
		URL:        resp.URL,
		Content:    resp.Body,
		MediaType:  mediaType,
		Charset:    charset,
		StatusCode: resp.StatusCode,
	}
}
