package ui

import (
	"context"
	"errors"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/chrisuehlinger/webviewzoom/engine"
	"github.com/chrisuehlinger/webviewzoom/icon"
)

const faviconSize = 24

// Favicon shows the icon of the current host, or a placeholder glyph while
// the page loads, when there is no host, or when the icon cannot be had.
type Favicon struct {
	widget.BaseWidget

	service  *icon.Service
	dispatch engine.Dispatcher
	timeout  time.Duration
	logger   zerolog.Logger

	host    string
	loading bool
	icon    image.Image
	fetch   uint64
	cancel  context.CancelFunc
	image   *canvas.Image
}

// NewFavicon creates a favicon showing the placeholder.
func NewFavicon(service *icon.Service, dispatch engine.Dispatcher, timeout time.Duration, logger zerolog.Logger) *Favicon {
	f := &Favicon{
		service:  service,
		dispatch: dispatch,
		timeout:  timeout,
		logger:   logger,
		image:    canvas.NewImageFromResource(theme.ComputerIcon()),
	}
	f.image.FillMode = canvas.ImageFillContain
	f.image.SetMinSize(fyne.NewSquareSize(faviconSize))
	f.ExtendBaseWidget(f)
	return f
}

// Host returns the host whose icon is shown or being fetched.
func (f *Favicon) Host() string { return f.host }

// ShowsPlaceholder reports whether the placeholder glyph is displayed.
func (f *Favicon) ShowsPlaceholder() bool { return f.image.Image == nil }

// SetHost starts fetching the icon for host. A fetch for a previous host is
// abandoned.
func (f *Favicon) SetHost(host string) {
	if host == f.host {
		return
	}
	f.Stop()
	f.host = host
	f.icon = nil
	f.show()
	if host == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	f.cancel = cancel
	id := f.fetch
	go func() {
		img, err := f.service.Fetch(ctx, host)
		cancel()
		f.dispatch(func() {
			if id != f.fetch {
				return
			}
			f.cancel = nil
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					f.logger.Debug().Err(err).Str("host", host).Msg("favicon unavailable")
				}
				return
			}
			f.icon = img
			f.show()
		})
	}()
}

// SetLoading hides the icon behind the placeholder while a page loads.
func (f *Favicon) SetLoading(loading bool) {
	if loading == f.loading {
		return
	}
	f.loading = loading
	f.show()
}

// Stop abandons any fetch in flight.
func (f *Favicon) Stop() {
	f.fetch++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *Favicon) show() {
	if f.icon != nil && !f.loading {
		f.image.Resource = nil
		f.image.Image = f.icon
	} else {
		f.image.Image = nil
		f.image.Resource = theme.ComputerIcon()
	}
	f.image.Refresh()
}

func (f *Favicon) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(f.image)
}
