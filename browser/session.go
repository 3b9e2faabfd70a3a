// Package browser holds the presentation model of the browser window: the
// observable state of one browsing session and the intents the chrome
// forwards to the content engine.
//
// A Session is UI-thread affine. All methods and all engine callbacks must
// run on the same goroutine; there is no locking.
package browser

import (
	"math"
	"net/url"

	"github.com/rs/zerolog"
)

// Zoom factor domain and step.
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	DefaultZoom = 1.0
	ZoomStep    = 0.1
)

// Engine is the part of the content engine the session drives and observes.
// Observe* deliver the current value immediately and then every change; the
// returned func unsubscribes.
type Engine interface {
	Reload()
	StopLoading()
	SetTextZoomFactor(factor float64)
	SetViewScale(factor float64)
	ObserveTitle(fn func(title string)) (cancel func())
	ObserveURL(fn func(u *url.URL)) (cancel func())
	ObserveLoading(fn func(loading bool)) (cancel func())
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// Session tracks the title, URL, loading flag and zoom factor of one
// browsing context. It holds a non-owning reference to the engine; the
// hosting view owns the engine's lifetime.
type Session struct {
	title      string
	currentURL *url.URL
	initialURL *url.URL
	isLoading  bool
	zoomFactor float64

	engine     Engine
	subs       []func()
	generation uint64

	listeners  map[int]func()
	nextListen int

	logger zerolog.Logger
}

// NewSession creates a session that will navigate to initial when its
// view is created. initial may be nil.
func NewSession(initial *url.URL, opts ...Option) *Session {
	s := &Session{
		currentURL: initial,
		initialURL: initial,
		zoomFactor: DefaultZoom,
		listeners:  make(map[int]func()),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Title returns the page title, "" when the engine reports none.
func (s *Session) Title() string { return s.title }

// URL returns the current URL, or nil.
func (s *Session) URL() *url.URL { return s.currentURL }

// InitialURL returns the URL the view loads on creation, or nil.
func (s *Session) InitialURL() *url.URL { return s.initialURL }

// IsLoading reports whether the engine is loading a page.
func (s *Session) IsLoading() bool { return s.isLoading }

// ZoomFactor returns the page zoom, always within [MinZoom, MaxZoom].
func (s *Session) ZoomFactor() float64 { return s.zoomFactor }

// CanResetZoom reports whether the zoom differs from the default.
func (s *Session) CanResetZoom() bool { return s.zoomFactor != DefaultZoom }

// Engine returns the current engine handle, or nil.
func (s *Session) Engine() Engine { return s.engine }

// SetEngine points the session at a new engine. Subscriptions to the
// previous engine are cancelled first. A nil handle leaves title, URL and
// loading at their last known values. Assigning the current handle again
// is a no-op.
func (s *Session) SetEngine(e Engine) {
	if e == s.engine {
		return
	}
	s.unsubscribe()
	s.engine = e
	if e == nil {
		s.logger.Debug().Msg("engine detached")
		return
	}

	s.logger.Debug().Msg("engine attached")
	gen := s.generation
	s.subs = []func(){
		e.ObserveTitle(func(title string) {
			if gen != s.generation {
				return
			}
			s.setTitle(title)
		}),
		e.ObserveURL(func(u *url.URL) {
			if gen != s.generation {
				return
			}
			s.setURL(u)
		}),
		e.ObserveLoading(func(loading bool) {
			if gen != s.generation {
				return
			}
			s.setLoading(loading)
		}),
	}

	if s.zoomFactor != DefaultZoom {
		applyZoom(e, s.zoomFactor)
	}
}

// Reload asks the engine to reload the page. No-op without an engine.
func (s *Session) Reload() {
	if s.engine == nil {
		return
	}
	s.engine.Reload()
}

// StopLoading asks the engine to stop loading. The loading flag changes
// only when the engine reports it. No-op without an engine.
func (s *Session) StopLoading() {
	if s.engine == nil {
		return
	}
	s.engine.StopLoading()
}

// ZoomIn raises the zoom by one step, saturating at MaxZoom.
func (s *Session) ZoomIn() {
	s.setZoom(min(s.zoomFactor+ZoomStep, MaxZoom))
}

// ZoomOut lowers the zoom by one step, saturating at MinZoom.
func (s *Session) ZoomOut() {
	s.setZoom(max(s.zoomFactor-ZoomStep, MinZoom))
}

// ResetZoom restores the default zoom.
func (s *Session) ResetZoom() {
	s.setZoom(DefaultZoom)
}

// OnChange registers fn to run after any observable field changes.
func (s *Session) OnChange(fn func()) (cancel func()) {
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// Dispose releases the subscription set, the engine handle and all change
// listeners.
func (s *Session) Dispose() {
	s.unsubscribe()
	s.engine = nil
	clear(s.listeners)
}

func (s *Session) unsubscribe() {
	s.generation++
	for _, cancel := range s.subs {
		if cancel != nil {
			cancel()
		}
	}
	s.subs = nil
}

// setZoom keeps the factor on the 0.1 grid so repeated steps cannot drift
// away from values the label displays.
func (s *Session) setZoom(z float64) {
	z = math.Round(z*10) / 10
	if z == s.zoomFactor {
		return
	}
	s.zoomFactor = z
	if s.engine != nil {
		applyZoom(s.engine, z)
	}
	s.changed()
}

func (s *Session) setTitle(title string) {
	if title == s.title {
		return
	}
	s.title = title
	s.changed()
}

func (s *Session) setURL(u *url.URL) {
	if sameURL(u, s.currentURL) {
		return
	}
	s.currentURL = u
	s.changed()
}

func (s *Session) setLoading(loading bool) {
	if loading == s.isLoading {
		return
	}
	s.isLoading = loading
	s.changed()
}

func (s *Session) changed() {
	for _, fn := range s.listeners {
		fn()
	}
}

func sameURL(a, b *url.URL) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
