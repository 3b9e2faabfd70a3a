// Package icon fetches site favicons from a third-party icon service.
// There is no retry: a failed fetch is reported once and callers fall back
// to a placeholder.
package icon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/chrisuehlinger/webviewzoom/network"
)

// DefaultServiceURL is the DuckDuckGo icon endpoint; %s is the host.
const DefaultServiceURL = "https://icons.duckduckgo.com/ip3/%s.ico"

// ErrNoHost is returned when there is no host to look up.
var ErrNoHost = errors.New("icon: no host")

// Option configures a Service.
type Option func(*Service)

// WithServiceURL replaces the icon endpoint template.
func WithServiceURL(tmpl string) Option {
	return func(s *Service) {
		s.template = tmpl
	}
}

// WithCache shares a response cache with the service.
func WithCache(c *network.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service resolves hosts to favicon images. It is safe for concurrent use.
type Service struct {
	client   *network.Client
	cache    *network.Cache
	template string
	logger   zerolog.Logger
}

// NewService creates a Service using client for HTTP.
func NewService(client *network.Client, opts ...Option) *Service {
	s := &Service{
		client:   client,
		template: DefaultServiceURL,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = network.NewCache(64)
	}
	return s
}

// URL returns the icon URL for host.
func (s *Service) URL(host string) string {
	return fmt.Sprintf(s.template, url.PathEscape(strings.ToLower(host)))
}

// Fetch downloads and decodes the favicon for host.
func (s *Service) Fetch(ctx context.Context, host string) (image.Image, error) {
	if host == "" {
		return nil, ErrNoHost
	}
	iconURL := s.URL(host)

	var body []byte
	if e, ok := s.cache.Get(iconURL); ok {
		body = e.Response.Body
	} else {
		resp, err := s.client.Get(ctx, iconURL)
		if err != nil {
			return nil, fmt.Errorf("fetch icon for %s: %w", host, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("fetch icon for %s: %s", host, resp.Status)
		}
		s.cache.Put(iconURL, resp)
		body = resp.Body
	}

	img, err := Decode(body)
	if err != nil {
		s.logger.Debug().Err(err).Str("host", host).Msg("undecodable icon")
		return nil, fmt.Errorf("decode icon for %s: %w", host, err)
	}
	return img, nil
}
