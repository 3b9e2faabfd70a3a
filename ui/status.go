package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// StatusControl shows a reload button while idle and a spinner while the
// page loads. Tapping the spinner requests a stop; the control only goes
// back to idle when SetLoading(false) arrives from the engine.
type StatusControl struct {
	widget.BaseWidget

	loading bool
	reload  *widget.Button
	spinner *stopSpinner
}

// NewStatusControl creates an idle control.
func NewStatusControl(onReload, onStop func()) *StatusControl {
	s := &StatusControl{
		reload:  widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), onReload),
		spinner: newStopSpinner(onStop),
	}
	s.spinner.Hide()
	s.ExtendBaseWidget(s)
	return s
}

// Loading reports which state the control is in.
func (s *StatusControl) Loading() bool { return s.loading }

// SetLoading switches between the idle and loading presentations.
func (s *StatusControl) SetLoading(loading bool) {
	if loading == s.loading {
		return
	}
	s.loading = loading
	if loading {
		s.reload.Hide()
		s.spinner.Show()
		s.spinner.activity.Start()
	} else {
		s.spinner.activity.Stop()
		s.spinner.Hide()
		s.reload.Show()
	}
	s.Refresh()
}

func (s *StatusControl) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(s.reload, s.spinner))
}

// stopSpinner is an activity indicator that can be tapped.
type stopSpinner struct {
	widget.BaseWidget

	activity *widget.Activity
	onTapped func()
}

func newStopSpinner(onTapped func()) *stopSpinner {
	s := &stopSpinner{activity: widget.NewActivity(), onTapped: onTapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *stopSpinner) Tapped(*fyne.PointEvent) {
	if s.onTapped != nil {
		s.onTapped()
	}
}

func (s *stopSpinner) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.activity)
}
