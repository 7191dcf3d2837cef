package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// VerticalSpacer creates a fixed-height transparent spacer.
func VerticalSpacer(height float32) fyne.CanvasObject {
	spacer := canvas.NewRectangle(nil)
	spacer.SetMinSize(fyne.NewSize(0, height))
	return spacer
}

// HorizontalSpacer creates a fixed-width transparent spacer.
func HorizontalSpacer(width float32) fyne.CanvasObject {
	spacer := canvas.NewRectangle(nil)
	spacer.SetMinSize(fyne.NewSize(width, 0))
	return spacer
}

// NewPrimaryButton creates a high-importance button. Fyne only draws the
// foreground-on-primary colour for HighImportance buttons.
func NewPrimaryButton(label string, tapped func()) *widget.Button {
	btn := widget.NewButton(label, tapped)
	btn.Importance = widget.HighImportance
	return btn
}

// newText creates a centred canvas text.
func newText(text string, size float32, bold bool, col color.Color) *canvas.Text {
	t := canvas.NewText(text, col)
	t.TextSize = size
	t.TextStyle = fyne.TextStyle{Bold: bold}
	t.Alignment = fyne.TextAlignCenter
	return t
}

// setText updates a canvas text and, when col is not nil, its colour. Must
// run on the UI thread.
func setText(t *canvas.Text, text string, col color.Color) {
	if col == nil {
		col = t.Color
	}
	if t.Text == text && t.Color == col {
		return
	}
	t.Text = text
	t.Color = col
	t.Refresh()
}
