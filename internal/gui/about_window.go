package gui

import (
	"fmt"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/version"
)

// AboutWindow shows product information and the user's rest statistics.
type AboutWindow struct {
	ui     *UI
	window fyne.Window
	stats  *widget.Label
}

func NewAboutWindow(ui *UI) *AboutWindow {
	return &AboutWindow{ui: ui}
}

// Show opens the window with fresh statistics.
func (aw *AboutWindow) Show() {
	if aw.window == nil {
		aw.build()
	}
	aw.stats.SetText(aw.statsText(aw.ui.ctx.Now()))
	aw.window.Show()
	aw.window.RequestFocus()
}

func (aw *AboutWindow) build() {
	aw.window = aw.ui.app.NewWindow("Ver2 정보")
	aw.window.SetIcon(AppIcon())

	home, _ := url.Parse(constants.Homepage)
	aw.stats = widget.NewLabel("")
	aw.stats.Alignment = fyne.TextAlignCenter

	info := widget.NewForm(
		widget.NewFormItem("버전", widget.NewLabel(version.Version)),
		widget.NewFormItem("개발사", widget.NewLabel(constants.Publisher)),
		widget.NewFormItem("이메일", widget.NewLabel(constants.ContactEmail)),
		widget.NewFormItem("홈페이지", widget.NewHyperlink(constants.Homepage, home)),
		widget.NewFormItem("라이선스", widget.NewLabel("MIT")),
		widget.NewFormItem("데이터", widget.NewLabel(aw.ui.ctx.Paths.DataDir)),
	)

	body := container.NewVBox(
		container.NewCenter(newText("ClockApp Ver2", 22, true, colorPrimary)),
		container.NewCenter(newText("건강한 업무를 위한 자세 알림 앱", 13, false, colorMuted)),
		widget.NewSeparator(),
		info,
		widget.NewSeparator(),
		aw.stats,
		container.NewCenter(newText("Copyright © 2025 KoreawookDevTeam. All rights reserved.", 11, false, colorMuted)),
	)

	aw.window.SetContent(container.NewPadded(container.NewBorder(nil,
		widget.NewButton("닫기", func() { aw.window.Hide() }),
		nil, nil, body)))
	aw.window.SetCloseIntercept(func() { aw.window.Hide() })
}

// statsText summarizes today's and this week's rests and the level.
func (aw *AboutWindow) statsText(now time.Time) string {
	st, _ := aw.ui.ctx.Level.Load()
	lines := fmt.Sprintf("🏅 레벨 %d · 누적 휴식 %s", st.Level, level.FormatDuration(st.TotalSeconds))

	h := aw.ui.ctx.History
	if h == nil {
		return lines
	}
	y, m, d := now.Date()
	today, err := h.TotalsSince(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
	if err != nil {
		aw.ui.log.Warn().Err(err).Msg("Failed to read rest history")
		return lines
	}
	days, err := h.DailyRest(now, 7)
	if err != nil {
		aw.ui.log.Warn().Err(err).Msg("Failed to read rest history")
		return lines
	}
	var week time.Duration
	var weekCount int
	for _, day := range days {
		week += day.RestTime
		weekCount += day.Count
	}
	return fmt.Sprintf("%s\n오늘 휴식 %d회 (%s)\n최근 7일 휴식 %d회 (%s)",
		lines,
		today.RestCount, level.FormatDuration(int64(today.RestTime/time.Second)),
		weekCount, level.FormatDuration(int64(week/time.Second)))
}
