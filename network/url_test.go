package network

import (
	"errors"
	"net/url"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://www.swift.org", "https://www.swift.org"},
		{"example.com", "https://example.com"},
		{"  Example.COM/Path  ", "https://example.com/Path"},
		{"HTTP://Example.com", "http://example.com"},
		{"data:text/plain,hi", "data:text/plain,hi"},
		{"about:blank", "about:blank"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := NormalizeURL(tt.input)
			if err != nil {
				t.Fatalf("NormalizeURL() error = %v", err)
			}
			if u.String() != tt.want {
				t.Errorf("NormalizeURL() = %q, want %q", u.String(), tt.want)
			}
		})
	}
}

func TestNormalizeURLEmpty(t *testing.T) {
	if _, err := NormalizeURL("   "); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("err = %v, want ErrEmptyURL", err)
	}
}

func TestHost(t *testing.T) {
	u, _ := url.Parse("https://www.swift.org:8443/documentation")
	if got := Host(u); got != "www.swift.org" {
		t.Errorf("Host() = %q, want www.swift.org", got)
	}
	if got := Host(nil); got != "" {
		t.Errorf("Host(nil) = %q, want empty", got)
	}
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		mediaType string
		charset   string
		data      string
		wantErr   bool
	}{
		{"plain", "data:,Hello%20World", "text/plain", "us-ascii", "Hello World", false},
		{"media type", "data:text/html,<b>x</b>", "text/html", "us-ascii", "<b>x</b>", false},
		{"charset", "data:text/plain;charset=UTF-8,hi", "text/plain", "utf-8", "hi", false},
		{"base64", "data:text/plain;base64,SGVsbG8=", "text/plain", "us-ascii", "Hello", false},
		{"missing comma", "data:text/plain", "", "", "", true},
		{"bad base64", "data:;base64,!!!", "", "", "", true},
		{"not data", "https://example.com", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDataURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDataURL() error = %v", err)
			}
			if d.MediaType != tt.mediaType {
				t.Errorf("MediaType = %q, want %q", d.MediaType, tt.mediaType)
			}
			if d.Charset != tt.charset {
				t.Errorf("Charset = %q, want %q", d.Charset, tt.charset)
			}
			if string(d.Data) != tt.data {
				t.Errorf("Data = %q, want %q", d.Data, tt.data)
			}
		})
	}
}

func TestGuessContentType(t *testing.T) {
	tests := map[string]string{
		"/index.html":   "text/html",
		"/notes.TXT":    "text/plain",
		"/favicon.ico":  "image/x-icon",
		"/dir.d/file":   "application/octet-stream",
		"/no-extension": "application/octet-stream",
	}
	for path, want := range tests {
		if got := GuessContentType(path); got != want {
			t.Errorf("GuessContentType(%q) = %q, want %q", path, got, want)
		}
	}
}
