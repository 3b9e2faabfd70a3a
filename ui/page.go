package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/chrisuehlinger/webviewzoom/engine"
)

// zoomTheme scales the current app theme by the engine zoom. Text sizes
// follow the text zoom and view scale; all other sizes follow the view
// scale only.
type zoomTheme struct {
	zoom engine.Zoom
}

func (t *zoomTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	return theme.Current().Color(n, v)
}

func (t *zoomTheme) Font(s fyne.TextStyle) fyne.Resource {
	return theme.Current().Font(s)
}

func (t *zoomTheme) Icon(n fyne.ThemeIconName) fyne.Resource {
	return theme.Current().Icon(n)
}

func (t *zoomTheme) Size(n fyne.ThemeSizeName) float32 {
	base := theme.Current().Size(n)
	switch n {
	case theme.SizeNameText, theme.SizeNameHeadingText, theme.SizeNameSubHeadingText, theme.SizeNameCaptionText:
		return base * float32(t.zoom.TextScale())
	}
	return base * float32(t.zoom.View)
}

// pageView renders the engine's document.
type pageView struct {
	rich     *widget.RichText
	override *container.ThemeOverride
	theme    *zoomTheme
	cancels  []func()
}

func newPageView(e *engine.Engine) *pageView {
	p := &pageView{
		rich:  widget.NewRichText(),
		theme: &zoomTheme{zoom: engine.Zoom{Text: 1, View: 1}},
	}
	p.rich.Wrapping = fyne.TextWrapWord
	p.override = container.NewThemeOverride(container.NewVScroll(p.rich), p.theme)

	p.cancels = []func(){
		e.ObserveDocument(p.showDocument),
		e.ObserveZoom(p.setZoom),
	}
	return p
}

func (p *pageView) object() fyne.CanvasObject {
	return p.override
}

func (p *pageView) showDocument(doc *engine.Document) {
	p.rich.Segments = documentSegments(doc)
	p.rich.Refresh()
}

func (p *pageView) setZoom(z engine.Zoom) {
	if p.theme.zoom == z {
		return
	}
	p.theme.zoom = z
	p.override.Refresh()
}

func (p *pageView) close() {
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

var minorHeading = widget.RichTextStyle{
	Alignment: fyne.TextAlignLeading,
	SizeName:  theme.SizeNameText,
	TextStyle: fyne.TextStyle{Bold: true},
}

func documentSegments(doc *engine.Document) []widget.RichTextSegment {
	if doc == nil {
		return nil
	}
	var segs []widget.RichTextSegment
	var list *widget.ListSegment
	for _, b := range doc.Blocks {
		if b.Kind == engine.ListItem {
			if list == nil {
				list = &widget.ListSegment{}
				segs = append(segs, list)
			}
			list.Items = append(list.Items, &widget.TextSegment{Style: widget.RichTextStyleParagraph, Text: b.Text})
			continue
		}
		list = nil
		segs = append(segs, &widget.TextSegment{Style: blockStyle(b), Text: b.Text})
	}
	return segs
}

func blockStyle(b engine.Block) widget.RichTextStyle {
	switch b.Kind {
	case engine.Heading:
		switch b.Level {
		case 1:
			return widget.RichTextStyleHeading
		case 2:
			return widget.RichTextStyleSubHeading
		default:
			return minorHeading
		}
	case engine.Preformatted:
		return widget.RichTextStyleCodeBlock
	case engine.Quote:
		return widget.RichTextStyleBlockquote
	default:
		return widget.RichTextStyleParagraph
	}
}
