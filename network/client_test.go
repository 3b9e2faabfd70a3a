package network

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 30*time.Second {
		t.Errorf("timeout = %v, want %v", client.timeout, 30*time.Second)
	}
	if client.maxRedirects != 10 {
		t.Errorf("maxRedirects = %v, want 10", client.maxRedirects)
	}
	if client.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want %q", client.userAgent, DefaultUserAgent)
	}
}

func TestClientOptions(t *testing.T) {
	client, err := NewClient(
		WithTimeout(5*time.Second),
		WithMaxRedirects(2),
		WithUserAgent("TestAgent/1.0"),
		WithFollowRedirect(false),
		WithMaxBodyBytes(4),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want %v", client.timeout, 5*time.Second)
	}
	if client.maxRedirects != 2 {
		t.Errorf("maxRedirects = %v, want 2", client.maxRedirects)
	}
	if client.userAgent != "TestAgent/1.0" {
		t.Errorf("userAgent = %q, want %q", client.userAgent, "TestAgent/1.0")
	}
	if client.followRedirect {
		t.Error("followRedirect = true, want false")
	}
	if client.maxBodyBytes != 4 {
		t.Errorf("maxBodyBytes = %d, want 4", client.maxBodyBytes)
	}
}

func TestClientGet(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Hello, World!"))
	}))
	defer server.Close()

	client, err := NewClient(WithUserAgent("Probe/2"))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !resp.OK() {
		t.Errorf("StatusCode = %v, want 2xx", resp.StatusCode)
	}
	if string(resp.Body) != "Hello, World!" {
		t.Errorf("Body = %q, want %q", resp.Body, "Hello, World!")
	}
	if gotUA != "Probe/2" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "Probe/2")
	}
}

func TestClientGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("<title>zipped</title>"))
	gz.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(resp.Body) != "<title>zipped</title>" {
		t.Errorf("Body = %q, want decoded gzip payload", resp.Body)
	}
}

func TestClientRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.Write([]byte("Final destination"))
			return
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(5))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL+"/start")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.URL.Path != "/final" {
		t.Errorf("final URL path = %q, want /final", resp.URL.Path)
	}
	if string(resp.Body) != "Final destination" {
		t.Errorf("Body = %q, want %q", resp.Body, "Final destination")
	}
}

func TestClientTooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(3))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Get(context.Background(), server.URL+"/loop"); err == nil {
		t.Error("expected error for too many redirects")
	}
}

func TestClientNoFollowRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/other", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(WithFollowRedirect(false))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %v, want %v", resp.StatusCode, http.StatusFound)
	}
}

func TestClientCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		case "/get":
			c, err := r.Cookie("session")
			if err != nil {
				w.Write([]byte("No cookie"))
				return
			}
			w.Write([]byte("Cookie: " + c.Value))
		}
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Get(context.Background(), server.URL+"/set"); err != nil {
		t.Fatalf("Get(/set) error = %v", err)
	}
	resp, err := client.Get(context.Background(), server.URL+"/get")
	if err != nil {
		t.Fatalf("Get(/get) error = %v", err)
	}
	if string(resp.Body) != "Cookie: abc123" {
		t.Errorf("Body = %q, want %q", resp.Body, "Cookie: abc123")
	}
}

func TestClientCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Get(ctx, server.URL); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		input       string
		wantType    string
		wantCharset string
	}{
		{"", "application/octet-stream", ""},
		{"text/html", "text/html", ""},
		{"text/html; charset=UTF-8", "text/html", "utf-8"},
		{`Text/HTML; charset="ISO-8859-1"`, "text/html", "iso-8859-1"},
		{"application/json;charset=utf-8", "application/json", "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mediaType, charset := ParseContentType(tt.input)
			if mediaType != tt.wantType {
				t.Errorf("mediaType = %q, want %q", mediaType, tt.wantType)
			}
			if charset != tt.wantCharset {
				t.Errorf("charset = %q, want %q", charset, tt.wantCharset)
			}
		})
	}
}

func TestMediaTypeHelpers(t *testing.T) {
	if !IsHTML("text/html") || !IsHTML("application/xhtml+xml") {
		t.Error("IsHTML should accept HTML media types")
	}
	if IsHTML("text/plain") {
		t.Error("IsHTML(text/plain) = true, want false")
	}
	if !IsText("text/plain") || !IsText("application/json") {
		t.Error("IsText should accept textual media types")
	}
	if IsText("image/png") {
		t.Error("IsText(image/png) = true, want false")
	}
}
