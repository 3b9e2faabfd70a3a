package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestStatusControl(t *testing.T) {
	test.NewTempApp(t)
	reloads, stops := 0, 0
	s := NewStatusControl(func() { reloads++ }, func() { stops++ })
	test.WidgetRenderer(s)

	assert.False(t, s.Loading())
	assert.True(t, s.reload.Visible())
	assert.False(t, s.spinner.Visible())

	test.Tap(s.reload)
	assert.Equal(t, 1, reloads)

	s.SetLoading(true)
	assert.True(t, s.spinner.Visible())
	assert.False(t, s.reload.Visible())

	test.Tap(s.spinner)
	assert.Equal(t, 1, stops)
	assert.True(t, s.Loading(), "only the engine ends loading")

	s.SetLoading(false)
	assert.True(t, s.reload.Visible())
	assert.False(t, s.spinner.Visible())
	assert.Equal(t, 1, reloads)
}
