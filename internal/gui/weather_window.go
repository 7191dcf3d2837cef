package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/weather"
)

const maxForecastSlots = 8

// WeatherWindow shows the current conditions and the three-hourly forecast.
type WeatherWindow struct {
	ui     *UI
	window fyne.Window

	location *widget.Label
	icon     *canvas.Text
	temp     *canvas.Text
	desc     *widget.Label
	details  *widget.Label
	slots    *fyne.Container
	updated  *widget.Label
	refresh  *widget.Button
}

// NewWeatherWindow creates the weather window controller. The window is
// built on first Show.
func NewWeatherWindow(ui *UI) *WeatherWindow {
	return &WeatherWindow{ui: ui}
}

// Show opens the window and loads the weather, from the cache when fresh.
func (ww *WeatherWindow) Show() {
	if ww.window == nil {
		ww.build()
	}
	ww.window.Show()
	ww.window.RequestFocus()
	ww.load(false)
}

func (ww *WeatherWindow) build() {
	ww.window = ww.ui.app.NewWindow("🌤️ 날씨 정보")
	ww.window.SetIcon(AppIcon())

	ww.location = widget.NewLabel("")
	ww.location.Alignment = fyne.TextAlignCenter
	ww.icon = newText("", 40, false, colorText)
	ww.temp = newText("", 28, true, colorPrimary)
	ww.desc = widget.NewLabel("")
	ww.desc.Alignment = fyne.TextAlignCenter
	ww.details = widget.NewLabel("")
	ww.details.Alignment = fyne.TextAlignCenter
	ww.slots = container.NewGridWithColumns(4)
	ww.updated = widget.NewLabel("")
	ww.updated.Alignment = fyne.TextAlignCenter
	ww.refresh = widget.NewButton("🔄 새로고침", func() { ww.load(true) })

	current := container.NewVBox(
		widget.NewLabelWithStyle("🌟 현재 날씨", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ww.location,
		container.NewCenter(container.NewHBox(ww.icon, ww.temp)),
		ww.desc,
		ww.details,
	)
	forecast := container.NewVBox(
		widget.NewLabelWithStyle("📅 시간대별 예보", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ww.slots,
	)
	buttons := container.NewGridWithColumns(2, ww.refresh, widget.NewButton("닫기", ww.hide))

	ww.window.SetContent(container.NewPadded(container.NewBorder(
		nil,
		container.NewVBox(ww.updated, buttons),
		nil, nil,
		container.NewVBox(current, widget.NewSeparator(), forecast),
	)))
	ww.window.Resize(fyne.NewSize(420, 460))
	ww.window.SetCloseIntercept(ww.hide)
}

// load fetches in the background and renders the result.
func (ww *WeatherWindow) load(force bool) {
	ww.refresh.Disable()
	ww.updated.SetText("날씨 정보를 불러오는 중...")
	ww.ui.goRun(func() {
		res := ww.ui.ctx.Weather.Get(ww.ui.runCtx, force)
		ww.ui.do(func() {
			ww.render(res)
			ww.refresh.Enable()
		})
	})
}

// render shows a weather result. Must run on the UI thread.
func (ww *WeatherWindow) render(res weather.Result) {
	r := res.Report
	ww.location.SetText("📍 " + r.Location)
	setText(ww.icon, r.Current.Icon, nil)
	setText(ww.temp, r.Current.Temp, nil)
	ww.desc.SetText(r.Current.Description)
	ww.details.SetText(fmt.Sprintf("습도: %s | 바람: %s", r.Current.Humidity, r.Current.Wind))

	ww.slots.RemoveAll()
	for i, slot := range r.Hourly {
		if i == maxForecastSlots {
			break
		}
		ww.slots.Add(forecastCard(slot))
	}
	ww.slots.Refresh()

	updated := "🔄 마지막 업데이트: " + res.FetchedAt.Format("15:04")
	if res.Source == weather.SourceFallback {
		updated += " (기본값)"
	}
	ww.updated.SetText(updated)
}

func forecastCard(s weather.Slot) fyne.CanvasObject {
	return container.NewVBox(
		container.NewCenter(newText(s.Time, 12, true, colorMuted)),
		container.NewCenter(newText(s.Icon, 22, false, colorText)),
		container.NewCenter(newText(s.Temp, 13, true, colorText)),
	)
}

func (ww *WeatherWindow) hide() {
	if ww.window != nil {
		ww.window.Hide()
	}
}
