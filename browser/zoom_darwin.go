package browser

// macOS scales text only, leaving page layout metrics alone.
func applyZoom(e Engine, factor float64) {
	e.SetTextZoomFactor(factor)
}
