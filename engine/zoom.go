package engine

// Engine-side zoom limits. The presentation model keeps its own, narrower
// domain; these only guard against nonsense values.
const (
	zoomMin = 0.25
	zoomMax = 5.0
)

// Zoom is the engine's visual scale. Text scales only font sizes; View
// scales the whole page, text and spacing alike.
type Zoom struct {
	Text float64
	View float64
}

// TextScale is the effective multiplier for font sizes.
func (z Zoom) TextScale() float64 { return z.Text * z.View }

func clampZoom(f float64) float64 {
	return min(max(f, zoomMin), zoomMax)
}

// SetTextZoomFactor scales page text.
func (e *Engine) SetTextZoomFactor(factor float64) {
	e.setZoom(Zoom{Text: clampZoom(factor), View: e.zoom.View})
}

// SetViewScale scales the whole page.
func (e *Engine) SetViewScale(factor float64) {
	e.setZoom(Zoom{Text: e.zoom.Text, View: clampZoom(factor)})
}

// Zoom returns the current zoom.
func (e *Engine) Zoom() Zoom { return e.zoom }

// ObserveZoom delivers the current zoom and every change.
func (e *Engine) ObserveZoom(fn func(Zoom)) (cancel func()) {
	fn(e.zoom)
	return e.zoomObs.add(fn)
}

func (e *Engine) setZoom(z Zoom) {
	if e.closed || z == e.zoom {
		return
	}
	e.zoom = z
	e.logger.Debug().Float64("text", z.Text).Float64("view", z.View).Msg("zoom changed")
	e.zoomObs.emit(z)
}
