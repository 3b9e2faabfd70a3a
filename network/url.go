package network

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyURL is returned when there is nothing to navigate to.
var ErrEmptyURL = errors.New("empty URL")

// NormalizeURL turns user input into an absolute URL. Input without a
// scheme is assumed to be an https host.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}
	if !strings.Contains(raw, "://") && !IsDataURL(raw) && !strings.HasPrefix(strings.ToLower(raw), "about:") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u, nil
}

// Host returns the host of u without port, or "" when u is nil.
func Host(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Hostname()
}

// IsDataURL reports whether raw uses the data: scheme.
func IsDataURL(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "data:")
}

// DataURL is a decoded data: URL.
type DataURL struct {
	MediaType string
	Charset   string
	Data      []byte
}

// ParseDataURL decodes data:[<mediatype>][;base64],<data>.
func ParseDataURL(raw string) (*DataURL, error) {
	if !IsDataURL(raw) {
		return nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, errors.New("invalid data URL: missing comma")
	}

	d := &DataURL{MediaType: "text/plain", Charset: "us-ascii"}
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case part == "base64":
			isBase64 = true
		case strings.HasPrefix(strings.ToLower(part), "charset="):
			d.Charset = strings.ToLower(part[len("charset="):])
		case i == 0 && part != "":
			d.MediaType = strings.ToLower(part)
		}
	}

	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode base64 data: %w", err)
		}
		d.Data = b
		return d, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("unescape data: %w", err)
	}
	d.Data = []byte(s)
	return d, nil
}

// GuessContentType infers a media type from a path's extension.
func GuessContentType(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 || strings.Contains(path[i:], "/") {
		return "application/octet-stream"
	}
	switch strings.ToLower(path[i+1:]) {
	case "html", "htm":
		return "text/html"
	case "txt", "md":
		return "text/plain"
	case "json":
		return "application/json"
	case "xml":
		return "application/xml"
	case "png":
		return "image/png"
	case "ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
