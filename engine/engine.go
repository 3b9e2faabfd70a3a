// Package engine is the content engine hosted by the browser window. It
// loads a page, reduces it to a text Document, runs its inline scripts and
// publishes title, URL and loading state to observers.
//
// Engine methods and observer callbacks belong to the UI goroutine. Network
// work runs on background goroutines whose results are handed back through
// the Dispatcher.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"github.com/rs/zerolog"

	"github.com/chrisuehlinger/webviewzoom/network"
)

// Dispatcher runs fn on the UI goroutine.
type Dispatcher func(fn func())

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDispatcher replaces fyne.Do as the way results reach the UI goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatch = d
	}
}

// WithScriptTimeout bounds each inline script.
func WithScriptTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.scriptTimeout = d
	}
}

// Engine loads and holds one page at a time.
type Engine struct {
	loader        *network.Loader
	dispatch      Dispatcher
	scriptTimeout time.Duration
	logger        zerolog.Logger

	title   string
	url     *url.URL
	loading bool
	doc     *Document
	zoom    Zoom
	closed  bool

	nav    uint64
	cancel context.CancelFunc

	titleObs   observers[string]
	urlObs     observers[*url.URL]
	loadingObs observers[bool]
	docObs     observers[*Document]
	zoomObs    observers[Zoom]
}

// New creates an idle engine with no page.
func New(loader *network.Loader, opts ...Option) *Engine {
	e := &Engine{
		loader:        loader,
		dispatch:      fyne.Do,
		scriptTimeout: DefaultScriptTimeout,
		logger:        zerolog.Nop(),
		zoom:          Zoom{Text: 1, View: 1},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Title returns the page title, "" when the page has none.
func (e *Engine) Title() string { return e.title }

// URL returns the URL of the current or pending page.
func (e *Engine) URL() *url.URL { return e.url }

// IsLoading reports whether a navigation is in flight.
func (e *Engine) IsLoading() bool { return e.loading }

// Document returns the loaded page, or nil.
func (e *Engine) Document() *Document { return e.doc }

// ObserveTitle delivers the current title and every change.
func (e *Engine) ObserveTitle(fn func(string)) (cancel func()) {
	fn(e.title)
	return e.titleObs.add(fn)
}

// ObserveURL delivers the current URL and every change.
func (e *Engine) ObserveURL(fn func(*url.URL)) (cancel func()) {
	fn(e.url)
	return e.urlObs.add(fn)
}

// ObserveLoading delivers the current loading flag and every change.
func (e *Engine) ObserveLoading(fn func(bool)) (cancel func()) {
	fn(e.loading)
	return e.loadingObs.add(fn)
}

// ObserveDocument delivers the current document and every replacement.
func (e *Engine) ObserveDocument(fn func(*Document)) (cancel func()) {
	fn(e.doc)
	return e.docObs.add(fn)
}

// Load navigates to rawURL.
func (e *Engine) Load(rawURL string) {
	if e.closed {
		return
	}
	u, err := network.NormalizeURL(rawURL)
	if err != nil {
		e.abort()
		e.logger.Warn().Err(err).Str("url", rawURL).Msg("invalid address")
		e.commit(ErrorDocument(nil, err))
		return
	}
	e.navigate(u, network.CacheDefault)
}

// Reload fetches the current page again, bypassing the cache.
func (e *Engine) Reload() {
	if e.closed || e.url == nil {
		return
	}
	e.navigate(e.url, network.CacheReload)
}

// StopLoading cancels the navigation in flight. The page shown before
// stays in place.
func (e *Engine) StopLoading() {
	if !e.loading {
		return
	}
	e.logger.Debug().Stringer("url", e.url).Msg("loading stopped")
	e.abort()
	e.setLoading(false)
}

// Close stops any navigation and drops all observers.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.abort()
	e.closed = true
	e.titleObs.reset()
	e.urlObs.reset()
	e.loadingObs.reset()
	e.docObs.reset()
	e.zoomObs.reset()
}

func (e *Engine) abort() {
	e.nav++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) navigate(u *url.URL, mode network.CacheMode) {
	e.abort()
	id := e.nav
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.logger.Info().Stringer("url", u).Msg("navigating")
	e.setURL(u)
	e.setLoading(true)

	loader, timeout, logger := e.loader, e.scriptTimeout, e.logger
	go func() {
		doc := fetchDocument(ctx, loader, u, mode, timeout, logger)
		e.dispatch(func() {
			if id != e.nav || e.closed {
				return
			}
			e.cancel = nil
			cancel()
			e.commit(doc)
		})
	}()
}

// commit shows doc and ends the navigation.
func (e *Engine) commit(doc *Document) {
	e.doc = doc
	e.docObs.emit(doc)
	if doc.URL != nil {
		e.setURL(doc.URL)
	}
	e.setTitle(doc.Title)
	e.setLoading(false)
}

func (e *Engine) setTitle(t string) {
	if t == e.title {
		return
	}
	e.title = t
	e.titleObs.emit(t)
}

func (e *Engine) setURL(u *url.URL) {
	if e.url != nil && u != nil && e.url.String() == u.String() {
		return
	}
	e.url = u
	e.urlObs.emit(u)
}

func (e *Engine) setLoading(l bool) {
	if l == e.loading {
		return
	}
	e.loading = l
	e.loadingObs.emit(l)
}

// fetchDocument runs off the UI goroutine.
func fetchDocument(ctx context.Context, loader *network.Loader, u *url.URL, mode network.CacheMode, scriptTimeout time.Duration, logger zerolog.Logger) *Document {
	if u.Scheme == "about" {
		return &Document{URL: u}
	}

	res := loader.Load(ctx, u.String(), mode)
	if res.Error != nil {
		if !errors.Is(res.Error, context.Canceled) {
			logger.Warn().Err(res.Error).Stringer("url", u).Msg("load failed")
		}
		return ErrorDocument(u, res.Error)
	}
	if res.URL == nil {
		res.URL = u
	}
	if !res.IsSuccess() {
		logger.Warn().Int("status", res.StatusCode).Stringer("url", res.URL).Msg("load returned error status")
	}

	var doc *Document
	var err error
	switch {
	case network.IsHTML(res.MediaType):
		contentType := res.MediaType
		if res.Charset != "" {
			contentType += "; charset=" + res.Charset
		}
		doc, err = ParseHTML(res.Content, contentType, res.URL)
		if err == nil {
			runScripts(doc, scriptTimeout, logger)
		}
	case network.IsText(res.MediaType):
		doc, err = TextDocument(bytes.NewReader(res.Content), res.URL)
	default:
		err = fmt.Errorf("cannot display %s content", res.MediaType)
	}
	if err != nil {
		return ErrorDocument(res.URL, err)
	}
	logger.Debug().Stringer("url", res.URL).Int("blocks", len(doc.Blocks)).Bool("cached", res.Cached).Msg("page loaded")
	return doc
}
