package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/rest"
)

// MealPopup counts down a meal break. It can be closed at any time.
type MealPopup struct {
	ui        *UI
	window    fyne.Window
	countdown *rest.MealCountdown

	message *widget.Label
	timer   *canvas.Text
	bar     *BandBar

	closed bool
}

func newMealPopup(ui *UI) *MealPopup {
	return &MealPopup{ui: ui}
}

func (p *MealPopup) hooks() app.MealHooks {
	return app.MealHooks{
		OnTick: func(v rest.MealView) {
			p.ui.do(func() { p.render(v) })
		},
		OnClosed: func(rest.MealSummary) {
			p.ui.do(p.dismiss)
		},
	}
}

// Show builds the window for countdown.
func (p *MealPopup) Show(countdown *rest.MealCountdown) {
	p.countdown = countdown
	p.window = p.ui.app.NewWindow("ClockApp Ver2 - 식사 알림")
	p.window.SetIcon(AppIcon())

	p.message = widget.NewLabel("")
	p.message.Alignment = fyne.TextAlignCenter
	p.timer = newText("", 32, true, colorGreen)
	p.bar = NewBandBar()

	closeBtn := widget.NewButton("닫기", func() {
		countdown.Close(rest.ReasonConfirm)
	})

	body := container.NewVBox(
		VerticalSpacer(8),
		container.NewCenter(newText("맛있는 식사 하세요!", 22, true, colorPrimary)),
		p.message,
		container.NewCenter(p.timer),
		p.bar,
		VerticalSpacer(6),
		closeBtn,
	)
	p.window.SetContent(container.NewPadded(body))
	p.window.SetCloseIntercept(func() {
		countdown.Close(rest.ReasonClosed)
	})
	p.window.Resize(fyne.NewSize(320, 220))
	p.window.SetFixedSize(true)
	p.render(countdown.View())
	p.window.CenterOnScreen()
	p.window.Show()
}

func (p *MealPopup) render(v rest.MealView) {
	if p.closed || p.window == nil {
		return
	}
	col := bandColor(v.Band)
	p.message.SetText(v.Message)
	setText(p.timer, v.Timer, col)
	p.bar.Set(v.Ratio(), col)
}

func (p *MealPopup) dismiss() {
	if p.closed {
		return
	}
	p.closed = true
	if p.window != nil {
		p.window.Close()
	}
	p.ui.mealClosed(p)
}
