package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/chrisuehlinger/webviewzoom/browser"
	"github.com/chrisuehlinger/webviewzoom/engine"
)

var _ browser.Engine = (*engine.Engine)(nil)

// WebView hosts one content engine and keeps the session's engine handle
// pointed at it. The engine is created with the widget's renderer and lives
// exactly as long as that renderer.
type WebView struct {
	widget.BaseWidget

	session   *browser.Session
	newEngine func() *engine.Engine
	renderer  *webViewRenderer
}

// NewWebView creates a web view for session. newEngine is called once per
// renderer lifetime.
func NewWebView(session *browser.Session, newEngine func() *engine.Engine) *WebView {
	w := &WebView{session: session, newEngine: newEngine}
	w.ExtendBaseWidget(w)
	return w
}

// CreateRenderer builds the engine, starts the initial navigation and
// hands the engine to the session.
func (w *WebView) CreateRenderer() fyne.WidgetRenderer {
	e := w.newEngine()
	if u := w.session.InitialURL(); u != nil {
		e.Load(u.String())
	}
	w.session.SetEngine(e)

	page := newPageView(e)
	w.renderer = &webViewRenderer{
		view:    w,
		engine:  e,
		page:    page,
		objects: []fyne.CanvasObject{page.object()},
	}
	return w.renderer
}

// Release shuts down the live engine, if any, ahead of renderer teardown.
func (w *WebView) Release() {
	if w.renderer != nil {
		w.renderer.Destroy()
	}
}

type webViewRenderer struct {
	view      *WebView
	engine    *engine.Engine
	page      *pageView
	objects   []fyne.CanvasObject
	destroyed bool
}

func (r *webViewRenderer) Layout(size fyne.Size) {
	r.objects[0].Resize(size)
	r.objects[0].Move(fyne.NewPos(0, 0))
}

func (r *webViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (r *webViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Refresh re-points the session at the live engine. It never navigates.
func (r *webViewRenderer) Refresh() {
	if r.destroyed {
		return
	}
	r.view.session.SetEngine(r.engine)
	r.objects[0].Refresh()
}

// Destroy detaches the session and shuts the engine down.
func (r *webViewRenderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.view.session.Engine() == browser.Engine(r.engine) {
		r.view.session.SetEngine(nil)
	}
	r.page.close()
	r.engine.Close()
}
