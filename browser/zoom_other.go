//go:build !darwin

package browser

func applyZoom(e Engine, factor float64) {
	e.SetViewScale(factor)
}
