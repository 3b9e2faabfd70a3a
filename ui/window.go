package ui

import (
	"fyne.io/fyne/v2"

	"github.com/chrisuehlinger/webviewzoom/config"
)

// newWindow creates the main window sized from cfg.
func newWindow(a fyne.App, cfg config.WindowConfig) fyne.Window {
	w := a.NewWindow(cfg.Title)
	w.Resize(fyne.NewSize(cfg.Width, cfg.Height))
	w.SetMaster()
	return w
}

// windowTitle names the window after the page, falling back to the app
// title for pages without one.
func windowTitle(appTitle, pageTitle string) string {
	if pageTitle == "" {
		return appTitle
	}
	return pageTitle + " - " + appTitle
}
