package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/rest"
)

// RestPopup is the break window: a stretch picture or a resting message, a
// countdown, the level progress and a confirm button that unlocks near the
// end.
type RestPopup struct {
	ui     *UI
	window fyne.Window
	ctrl   *rest.Controller

	countdown *canvas.Text
	bar       *BandBar
	total     *widget.Label
	level     *widget.Label
	remaining *widget.Label
	confirm   *widget.Button

	closed bool
}

func newRestPopup(ui *UI) *RestPopup {
	return &RestPopup{ui: ui}
}

// hooks forwards controller callbacks to the UI thread.
func (p *RestPopup) hooks() app.RestHooks {
	return app.RestHooks{
		OnTick: func(v rest.View) {
			p.ui.do(func() { p.render(v) })
		},
		OnLevelUp: func(lvl int, msg string) {
			p.ui.do(func() { p.ui.showLevelUp(lvl, msg) })
		},
		OnClosed: func(rest.Summary) {
			p.ui.do(p.dismiss)
		},
	}
}

// Show builds the window for ctrl and puts it in front.
func (p *RestPopup) Show(ctrl *rest.Controller) {
	p.ctrl = ctrl
	p.window = p.ui.app.NewWindow("ClockApp Ver2 - 휴식 알림")
	p.window.SetIcon(AppIcon())

	p.countdown = newText("", 36, true, colorGreen)
	p.bar = NewBandBar()
	p.total = widget.NewLabel("")
	p.level = widget.NewLabel("")
	p.remaining = widget.NewLabel("")
	for _, l := range []*widget.Label{p.total, p.level, p.remaining} {
		l.Alignment = fyne.TextAlignCenter
	}
	p.confirm = NewPrimaryButton("", func() {
		if !ctrl.Confirm() {
			p.ui.log.Debug().Msg("Confirm pressed before it was enabled")
		}
	})

	body := container.NewVBox(
		p.picture(),
		VerticalSpacer(6),
		container.NewCenter(p.countdown),
		p.bar,
		widget.NewSeparator(),
		p.total,
		p.level,
		p.remaining,
		VerticalSpacer(4),
		p.confirm,
	)

	p.window.SetContent(container.NewPadded(body))
	p.window.SetCloseIntercept(func() {
		ctrl.Close(rest.ReasonClosed)
	})
	p.window.SetFixedSize(true)
	p.render(ctrl.View())
	p.window.CenterOnScreen()
	p.window.Show()
	p.window.RequestFocus()
}

// picture is a random stretch image, or the resting headings when the
// stretch folder has none.
func (p *RestPopup) picture() fyne.CanvasObject {
	if path, ok := p.ui.ctx.Stretch.Next(); ok {
		img := canvas.NewImageFromFile(path)
		img.FillMode = canvas.ImageFillContain
		img.SetMinSize(fyne.NewSize(360, 260))
		return img
	}
	return container.NewVBox(
		VerticalSpacer(12),
		container.NewCenter(newText("잠시 휴식하세요", 22, true, colorPrimary)),
		container.NewCenter(newText("눈을 감고 잠시 휴식을 취하세요", 14, false, colorMuted)),
		VerticalSpacer(12),
	)
}

// render draws a controller view. Must run on the UI thread.
func (p *RestPopup) render(v rest.View) {
	if p.closed || p.window == nil {
		return
	}
	col := bandColor(v.Band)
	setText(p.countdown, fmt.Sprintf("%d초", v.Remaining), col)
	p.bar.Set(v.Ratio(), col)
	p.total.SetText("누적시간: " + level.FormatDuration(v.Progress.Total))
	p.level.SetText(fmt.Sprintf("레벨: %d", v.Progress.Level))
	p.remaining.SetText("다음 레벨까지 남은 시간: " + level.FormatDuration(v.Progress.Remaining))
	p.confirm.SetText(v.ConfirmLabel)
	if v.ConfirmEnabled {
		p.confirm.Enable()
	} else {
		p.confirm.Disable()
	}
}

// FocusLost closes the popup because the user switched away from it.
func (p *RestPopup) FocusLost() {
	if p.ctrl != nil {
		p.ctrl.FocusLost()
	}
}

func (p *RestPopup) dismiss() {
	if p.closed {
		return
	}
	p.closed = true
	if p.window != nil {
		p.window.Close()
	}
	p.ui.restClosed(p)
}
