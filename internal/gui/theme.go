package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/koreawook/ClockApp/internal/rest"
	"github.com/koreawook/ClockApp/internal/scheduler"
)

// Palette shared by the windows and popups.
var (
	colorPrimary = color.NRGBA{R: 0x19, G: 0x76, B: 0xD2, A: 0xFF}
	colorGreen   = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}
	colorOrange  = color.NRGBA{R: 0xFF, G: 0x98, B: 0x00, A: 0xFF}
	colorRed     = color.NRGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
	colorText    = color.NRGBA{R: 0x2C, G: 0x3E, B: 0x50, A: 0xFF}
	colorMuted   = color.NRGBA{R: 0x7F, G: 0x8C, B: 0x8D, A: 0xFF}
	colorSky     = color.NRGBA{R: 0x87, G: 0xCE, B: 0xEB, A: 0xFF}
	colorPink    = color.NRGBA{R: 0xFF, G: 0x6B, B: 0x8A, A: 0xFF}
	colorYellow  = color.NRGBA{R: 0xFF, G: 0xEB, B: 0x3B, A: 0xFF}
	colorTrack   = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
)

// clockTheme keeps the default light/dark handling and swaps in the clock's
// accent colours.
type clockTheme struct{}

func (t *clockTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameButton:
		return colorPrimary
	case theme.ColorNameSuccess:
		return colorGreen
	case theme.ColorNameError:
		return colorRed
	case theme.ColorNameWarning:
		return colorOrange
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *clockTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *clockTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *clockTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 20
	default:
		return theme.DefaultTheme().Size(name)
	}
}

// bandColor maps a countdown colour band to its colour.
func bandColor(b rest.Band) color.Color {
	switch b {
	case rest.BandGreen:
		return colorGreen
	case rest.BandOrange:
		return colorOrange
	default:
		return colorRed
	}
}

// countdownColor is the colour of the next-break label.
func countdownColor(s scheduler.CountdownStatus) color.Color {
	switch s {
	case scheduler.StatusMinutes:
		return colorGreen
	case scheduler.StatusSeconds, scheduler.StatusMealPause:
		return colorOrange
	case scheduler.StatusDue:
		return colorRed
	default:
		return colorMuted
	}
}
