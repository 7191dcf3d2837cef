package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// BandBar is a countdown bar whose fill colour follows the remaining ratio.
type BandBar struct {
	widget.BaseWidget

	ratio float64
	color color.Color

	track *canvas.Rectangle
	fill  *canvas.Rectangle
}

// NewBandBar creates a full bar.
func NewBandBar() *BandBar {
	b := &BandBar{ratio: 1, color: colorGreen}
	b.track = canvas.NewRectangle(colorTrack)
	b.track.CornerRadius = 4
	b.fill = canvas.NewRectangle(colorGreen)
	b.fill.CornerRadius = 4
	b.ExtendBaseWidget(b)
	return b
}

// Set updates the fill ratio (0..1) and colour. Must run on the UI thread.
func (b *BandBar) Set(ratio float64, col color.Color) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	b.ratio = ratio
	b.color = col
	b.Refresh()
}

// Ratio returns the current fill ratio.
func (b *BandBar) Ratio() float64 {
	return b.ratio
}

func (b *BandBar) CreateRenderer() fyne.WidgetRenderer {
	return &bandBarRenderer{bar: b}
}

type bandBarRenderer struct {
	bar *BandBar
}

func (r *bandBarRenderer) Layout(size fyne.Size) {
	r.bar.track.Resize(size)
	r.bar.track.Move(fyne.NewPos(0, 0))
	r.bar.fill.Resize(fyne.NewSize(size.Width*float32(r.bar.ratio), size.Height))
	r.bar.fill.Move(fyne.NewPos(0, 0))
}

func (r *bandBarRenderer) MinSize() fyne.Size {
	return fyne.NewSize(120, 12)
}

func (r *bandBarRenderer) Refresh() {
	r.bar.fill.FillColor = r.bar.color
	r.Layout(r.bar.Size())
	r.bar.track.Refresh()
	r.bar.fill.Refresh()
}

func (r *bandBarRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bar.track, r.bar.fill}
}

func (r *bandBarRenderer) Destroy() {}
