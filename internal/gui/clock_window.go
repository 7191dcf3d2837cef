package gui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/scheduler"
	"github.com/koreawook/ClockApp/internal/weather"
)

var weekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// formatDate renders "YYYY-MM-DD 요일".
func formatDate(t time.Time) string {
	return fmt.Sprintf("%s %s", t.Format("2006-01-02"), weekdays[t.Weekday()])
}

// ClockWindow is the main window: time, date, next break, weather and level.
type ClockWindow struct {
	ui     *UI
	window fyne.Window

	timeText  *canvas.Text
	dateText  *canvas.Text
	breakText *canvas.Text
	weather   *widget.Label
	levelText *widget.Label
	status    *StatusBar

	lastLevelCheck time.Time
}

// NewClockWindow builds the clock window without showing it.
func NewClockWindow(ui *UI) *ClockWindow {
	cw := &ClockWindow{ui: ui}
	cw.window = ui.app.NewWindow("ClockApp Ver2")
	cw.window.SetIcon(AppIcon())

	cw.timeText = newText("--:--:--", 40, true, colorText)
	cw.dateText = newText("", 13, false, colorMuted)
	cw.breakText = newText("", 14, true, colorPrimary)
	cw.weather = widget.NewLabel("🌤️ 날씨 정보를 불러오는 중...")
	cw.weather.Alignment = fyne.TextAlignCenter
	cw.weather.Truncation = fyne.TextTruncateEllipsis
	cw.levelText = widget.NewLabel("")
	cw.levelText.Alignment = fyne.TextAlignCenter
	cw.status = NewStatusBar("준비")

	timeCard := container.NewVBox(
		VerticalSpacer(8),
		newTappable(cw.timeText, func() { ui.settings.Show() }),
		newTappable(cw.dateText, func() { ui.settings.Show() }),
		VerticalSpacer(8),
	)

	buttons := container.NewGridWithColumns(3,
		widget.NewButtonWithIcon("날씨", theme.ViewRefreshIcon(), func() { ui.weather.Show() }),
		widget.NewButtonWithIcon("설정", theme.SettingsIcon(), func() { ui.settings.Show() }),
		NewPrimaryButton("지금 휴식", func() {
			if err := ui.openRest(true); err != nil {
				ui.log.Debug().Err(err).Msg("Manual rest not started")
			}
		}),
	)

	content := container.NewBorder(
		nil,
		container.NewVBox(buttons, widget.NewSeparator(), cw.status),
		nil, nil,
		container.NewVBox(timeCard, cw.breakText, cw.weather, cw.levelText),
	)

	cw.window.SetContent(container.NewPadded(content))
	cw.window.Resize(fyne.NewSize(340, 300))
	cw.window.SetFixedSize(true)
	cw.window.SetCloseIntercept(func() {
		if ui.ctx.Config.App.MinimizeToTray {
			ui.hideToTray()
			return
		}
		ui.quit()
	})
	return cw
}

// Window returns the fyne window, used as the parent of dialogs.
func (cw *ClockWindow) Window() fyne.Window {
	return cw.window
}

// Show brings the window to the front.
func (cw *ClockWindow) Show() {
	cw.window.Show()
	cw.window.RequestFocus()
}

// Hide hides the window; the app keeps running in the tray.
func (cw *ClockWindow) Hide() {
	cw.window.Hide()
}

// Update refreshes the clock labels. Must run on the UI thread.
func (cw *ClockWindow) Update(now time.Time, cd scheduler.Countdown) {
	setText(cw.timeText, now.Format("15:04:05"), nil)
	setText(cw.dateText, formatDate(now), nil)
	setText(cw.breakText, cd.Label(), countdownColor(cd.Status))

	if now.Sub(cw.lastLevelCheck) >= 5*time.Second || cw.lastLevelCheck.IsZero() {
		cw.lastLevelCheck = now
		cw.refreshLevel()
	}
}

func (cw *ClockWindow) refreshLevel() {
	st, _ := cw.ui.ctx.Level.Load()
	p := level.ProgressFor(st.TotalSeconds)
	cw.levelText.SetText(fmt.Sprintf("🏅 레벨 %d · 누적 %s", p.Level, level.FormatDuration(p.Total)))
}

// SetWeather shows the weather summary. Safe from any goroutine.
func (cw *ClockWindow) SetWeather(summary, source string) {
	fyne.Do(func() {
		text := summary
		if source == string(weather.SourceFallback) {
			text += " (기본값)"
		}
		cw.weather.SetText(text)
	})
}

// tappable makes a canvas object open something when clicked.
type tappable struct {
	widget.BaseWidget
	content fyne.CanvasObject
	onTap   func()
}

func newTappable(content fyne.CanvasObject, onTap func()) *tappable {
	t := &tappable{content: content, onTap: onTap}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tappable) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap()
	}
}

func (t *tappable) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.content)
}
