package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/webviewzoom/icon"
	"github.com/chrisuehlinger/webviewzoom/network"
)

func newTestFavicon(t *testing.T, srv *siteServer) (*Favicon, uiLoop) {
	t.Helper()
	test.NewTempApp(t)
	client, err := network.NewClient()
	require.NoError(t, err)
	q := newUILoop()
	service := icon.NewService(client, icon.WithServiceURL(srv.iconTemplate()))
	f := NewFavicon(service, q.dispatch, 5*time.Second, zerolog.Nop())
	t.Cleanup(f.Stop)
	return f, q
}

func TestFaviconFetchesHostIcon(t *testing.T) {
	srv := newSiteServer(t, "")
	f, q := newTestFavicon(t, srv)
	assert.True(t, f.ShowsPlaceholder())

	f.SetHost("example.com")
	assert.True(t, f.ShowsPlaceholder(), "placeholder while fetching")
	q.pump(t)
	assert.False(t, f.ShowsPlaceholder())
	assert.Equal(t, 2, f.image.Image.Bounds().Dx())

	f.SetHost("example.com")
	assert.Equal(t, int32(1), srv.icons.Load(), "same host is not fetched again")
}

func TestFaviconPlaceholderWhileLoading(t *testing.T) {
	srv := newSiteServer(t, "")
	f, q := newTestFavicon(t, srv)

	f.SetHost("example.com")
	q.pump(t)

	f.SetLoading(true)
	assert.True(t, f.ShowsPlaceholder())
	f.SetLoading(false)
	assert.False(t, f.ShowsPlaceholder())
}

func TestFaviconFailureKeepsPlaceholder(t *testing.T) {
	srv := newSiteServer(t, "")
	f, q := newTestFavicon(t, srv)

	f.SetHost("missing.example")
	q.pump(t)
	assert.True(t, f.ShowsPlaceholder())
	assert.Equal(t, int32(1), srv.icons.Load(), "no retry")
}

func TestFaviconIgnoresStaleHost(t *testing.T) {
	srv := newSiteServer(t, "")
	f, q := newTestFavicon(t, srv)

	f.SetHost("missing.example")
	f.SetHost("example.com")
	q.pump(t)
	q.pump(t)

	assert.Equal(t, "example.com", f.Host())
	assert.False(t, f.ShowsPlaceholder())

	f.SetHost("")
	assert.True(t, f.ShowsPlaceholder())
}

func TestFaviconStaleResultKeepsNewerFetchCancelable(t *testing.T) {
	test.NewTempApp(t)
	// every icon request hangs until its client gives up
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client, err := network.NewClient()
	require.NoError(t, err)
	q := newUILoop()
	service := icon.NewService(client, icon.WithServiceURL(srv.URL+"/%s.ico"))
	f := NewFavicon(service, q.dispatch, time.Minute, zerolog.Nop())
	t.Cleanup(f.Stop)

	f.SetHost("a.example")
	f.SetHost("b.example")
	f.SetHost("a.example")

	// the two abandoned fetches report back while the third is in flight
	q.pump(t)
	q.pump(t)
	require.NotNil(t, f.cancel, "in-flight fetch must stay cancelable")

	f.Stop()
	assert.Nil(t, f.cancel)
	q.pump(t)
	assert.True(t, f.ShowsPlaceholder())
	assert.Equal(t, "a.example", f.Host())
}
