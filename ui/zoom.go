package ui

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/chrisuehlinger/webviewzoom/browser"
)

// ZoomControl is a stepper (zoom out, percentage, zoom in) whose middle
// button opens the zoom menu.
type ZoomControl struct {
	widget.BaseWidget

	session *browser.Session
	out     *widget.Button
	in      *widget.Button
	level   *widget.Button
}

// NewZoomControl binds the stepper and menu to session.
func NewZoomControl(session *browser.Session) *ZoomControl {
	z := &ZoomControl{session: session}
	z.out = widget.NewButtonWithIcon("", theme.ZoomOutIcon(), session.ZoomOut)
	z.in = widget.NewButtonWithIcon("", theme.ZoomInIcon(), session.ZoomIn)
	z.level = widget.NewButton(zoomLabel(session.ZoomFactor()), z.showMenu)
	z.level.Importance = widget.LowImportance
	z.ExtendBaseWidget(z)
	z.Update()
	return z
}

// Update mirrors the session's zoom factor.
func (z *ZoomControl) Update() {
	f := z.session.ZoomFactor()
	z.level.SetText(zoomLabel(f))
	setEnabled(z.out, f > browser.MinZoom)
	setEnabled(z.in, f < browser.MaxZoom)
}

// Menu returns the zoom menu for the current state. "Reset Zoom" is only
// offered when the zoom differs from 100%.
func (z *ZoomControl) Menu() *fyne.Menu {
	f := z.session.ZoomFactor()
	in := fyne.NewMenuItem("Zoom In", z.session.ZoomIn)
	in.Icon = theme.ZoomInIcon()
	in.Disabled = f >= browser.MaxZoom
	out := fyne.NewMenuItem("Zoom Out", z.session.ZoomOut)
	out.Icon = theme.ZoomOutIcon()
	out.Disabled = f <= browser.MinZoom

	items := []*fyne.MenuItem{in, out}
	if z.session.CanResetZoom() {
		reset := fyne.NewMenuItem("Reset Zoom", z.session.ResetZoom)
		reset.Icon = theme.ZoomFitIcon()
		items = append(items, fyne.NewMenuItemSeparator(), reset)
	}
	return fyne.NewMenu(zoomLabel(f), items...)
}

func (z *ZoomControl) showMenu() {
	c := fyne.CurrentApp().Driver().CanvasForObject(z.level)
	if c == nil {
		return
	}
	pos := fyne.CurrentApp().Driver().AbsolutePositionForObject(z.level)
	widget.NewPopUpMenu(z.Menu(), c).ShowAtPosition(pos.Add(fyne.NewPos(0, z.level.Size().Height)))
}

func (z *ZoomControl) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewHBox(z.out, z.level, z.in))
}

func zoomLabel(f float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(f*100)))
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}
