// Package ui provides the browser window using Fyne.
package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/chrisuehlinger/webviewzoom/browser"
	"github.com/chrisuehlinger/webviewzoom/config"
	"github.com/chrisuehlinger/webviewzoom/engine"
	"github.com/chrisuehlinger/webviewzoom/icon"
	"github.com/chrisuehlinger/webviewzoom/logging"
	"github.com/chrisuehlinger/webviewzoom/network"
)

// Option configures a BrowserUI.
type Option func(*options)

type options struct {
	dispatch   engine.Dispatcher
	engineOpts []engine.Option
	clientOpts []network.ClientOption
}

// WithDispatcher replaces fyne.Do for results arriving from background
// work, for both the engine and the favicon.
func WithDispatcher(d engine.Dispatcher) Option {
	return func(o *options) {
		o.dispatch = d
	}
}

// WithEngineOptions adds options applied to every engine the web view
// creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithClientOptions adds options to the shared HTTP client.
func WithClientOptions(opts ...network.ClientOption) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// BrowserUI is the browser window: a toolbar over a single web view.
type BrowserUI struct {
	app     fyne.App
	window  fyne.Window
	cfg     config.Config
	session *browser.Session
	logger  zerolog.Logger

	webView *WebView
	favicon *Favicon
	title   *widget.Label
	address *widget.Label
	status  *StatusControl
	zoom    *ZoomControl

	stopRender func()
	closed     bool
}

// NewBrowserUI builds the window for cfg. The initial page starts loading
// when the window content is first rendered.
func NewBrowserUI(a fyne.App, cfg config.Config, logger zerolog.Logger, opts ...Option) (*BrowserUI, error) {
	o := options{dispatch: fyne.Do}
	for _, opt := range opts {
		opt(&o)
	}

	initial, err := network.NormalizeURL(cfg.Browser.InitialURL)
	if errors.Is(err, network.ErrEmptyURL) {
		initial = nil
	} else if err != nil {
		return nil, fmt.Errorf("initial url %q: %w", cfg.Browser.InitialURL, err)
	}

	client, err := network.NewClient(append([]network.ClientOption{
		network.WithTimeout(cfg.Network.Timeout),
		network.WithMaxRedirects(cfg.Network.MaxRedirects),
		network.WithUserAgent(cfg.Network.UserAgent),
	}, o.clientOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	cache := network.NewCache(cfg.Network.CacheEntries)
	loader := network.NewLoader(client, network.WithCache(cache))
	icons := icon.NewService(client,
		icon.WithServiceURL(cfg.Icons.ServiceURL),
		icon.WithCache(cache),
		icon.WithLogger(logging.Component(logger, "icon")),
	)

	engineOpts := append([]engine.Option{
		engine.WithDispatcher(o.dispatch),
		engine.WithLogger(logging.Component(logger, "engine")),
	}, o.engineOpts...)

	b := &BrowserUI{
		app:     a,
		cfg:     cfg,
		session: browser.NewSession(initial, browser.WithLogger(logging.Component(logger, "session"))),
		logger:  logging.Component(logger, "ui"),
	}
	b.webView = NewWebView(b.session, func() *engine.Engine {
		return engine.New(loader, engineOpts...)
	})
	b.favicon = NewFavicon(icons, o.dispatch, cfg.Icons.Timeout, b.logger)

	b.window = newWindow(a, cfg.Window)
	b.setupUI()
	b.setupKeyboardShortcuts()
	b.stopRender = b.session.OnChange(b.render)
	b.window.SetOnClosed(b.close)
	b.render()
	return b, nil
}

func (b *BrowserUI) setupUI() {
	b.title = widget.NewLabel("")
	b.title.TextStyle = fyne.TextStyle{Bold: true}
	b.title.Truncation = fyne.TextTruncateEllipsis
	b.address = widget.NewLabel("")
	b.address.Truncation = fyne.TextTruncateEllipsis

	b.status = NewStatusControl(b.session.Reload, b.session.StopLoading)
	b.zoom = NewZoomControl(b.session)

	toolbar := container.NewBorder(nil, nil,
		container.NewCenter(b.favicon),
		container.NewHBox(b.status, b.zoom),
		container.NewVBox(b.title, b.address),
	)

	b.window.SetContent(container.NewBorder(
		container.NewVBox(toolbar, widget.NewSeparator()),
		nil, nil, nil,
		b.webView,
	))
}

func (b *BrowserUI) setupKeyboardShortcuts() {
	shortcuts := []struct {
		key    fyne.KeyName
		action func()
	}{
		{fyne.KeyR, b.session.Reload},
		{fyne.KeyPeriod, b.session.StopLoading},
		{fyne.KeyEqual, b.session.ZoomIn},
		{fyne.KeyMinus, b.session.ZoomOut},
		{fyne.Key0, b.session.ResetZoom},
	}
	for _, s := range shortcuts {
		action := s.action
		b.window.Canvas().AddShortcut(&desktop.CustomShortcut{
			KeyName:  s.key,
			Modifier: fyne.KeyModifierShortcutDefault,
		}, func(fyne.Shortcut) {
			action()
		})
	}
}

// render copies the session into the toolbar and window title.
func (b *BrowserUI) render() {
	if b.closed {
		return
	}
	s := b.session
	b.title.SetText(s.Title())
	if u := s.URL(); u != nil {
		b.address.SetText(u.String())
		b.favicon.SetHost(network.Host(u))
	} else {
		b.address.SetText("(empty)")
		b.favicon.SetHost("")
	}
	b.favicon.SetLoading(s.IsLoading())
	b.status.SetLoading(s.IsLoading())
	b.zoom.Update()
	b.window.SetTitle(windowTitle(b.cfg.Window.Title, s.Title()))
}

// Session returns the window's presentation model.
func (b *BrowserUI) Session() *browser.Session { return b.session }

// Window returns the native window.
func (b *BrowserUI) Window() fyne.Window { return b.window }

// Run shows the window and runs the app event loop until it exits.
func (b *BrowserUI) Run() {
	b.window.ShowAndRun()
}

func (b *BrowserUI) close() {
	if b.closed {
		return
	}
	b.closed = true
	b.logger.Debug().Msg("window closed")
	b.stopRender()
	b.favicon.Stop()
	b.webView.Release()
	b.session.Dispose()
}
