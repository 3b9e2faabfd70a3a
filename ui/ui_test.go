package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// uiLoop stands in for the UI goroutine: the test goroutine drains it.
type uiLoop chan func()

func newUILoop() uiLoop { return make(uiLoop, 16) }

func (q uiLoop) dispatch(fn func()) { q <- fn }

func (q uiLoop) pump(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a UI callback")
	}
}

// pumpUntil runs callbacks until cond holds.
func (q uiLoop) pumpUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for !cond() {
		q.pump(t)
	}
}

// siteServer serves HTML pages under / and a PNG icon under /icons/.
type siteServer struct {
	*httptest.Server
	pages atomic.Int32
	icons atomic.Int32
}

func newSiteServer(t *testing.T, page string) *siteServer {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	icon := buf.Bytes()

	s := &siteServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/icons/") {
			s.icons.Add(1)
			if strings.HasPrefix(r.URL.Path, "/icons/missing") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(icon)
			return
		}
		s.pages.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *siteServer) iconTemplate() string {
	return s.URL + "/icons/%s.ico"
}
