package gui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/koreawook/ClockApp/internal/config"
)

// settingsForm is the raw text of the settings window fields.
type settingsForm struct {
	Interval     string
	LunchHour    string
	LunchMinute  string
	DinnerHour   string
	DinnerMinute string

	BreakEnabled  bool
	LunchEnabled  bool
	DinnerEnabled bool
}

// errNotANumber marks a field that does not parse as an integer.
var errNotANumber = errors.New("not a number")

func formFromSettings(s config.Settings) settingsForm {
	return settingsForm{
		Interval:      strconv.Itoa(s.TimeInterval),
		LunchHour:     fmt.Sprintf("%02d", s.LunchHour),
		LunchMinute:   fmt.Sprintf("%02d", s.LunchMinute),
		DinnerHour:    fmt.Sprintf("%02d", s.DinnerHour),
		DinnerMinute:  fmt.Sprintf("%02d", s.DinnerMinute),
		BreakEnabled:  s.BreakEnabled,
		LunchEnabled:  s.LunchEnabled,
		DinnerEnabled: s.DinnerEnabled,
	}
}

// parse converts the form to settings and validates them.
func (f settingsForm) parse() (config.Settings, error) {
	var s config.Settings
	fields := []struct {
		text string
		dst  *int
		name string
	}{
		{f.Interval, &s.TimeInterval, "interval"},
		{f.LunchHour, &s.LunchHour, "lunch hour"},
		{f.LunchMinute, &s.LunchMinute, "lunch minute"},
		{f.DinnerHour, &s.DinnerHour, "dinner hour"},
		{f.DinnerMinute, &s.DinnerMinute, "dinner minute"},
	}
	for _, fld := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(fld.text))
		if err != nil {
			return config.Settings{}, fmt.Errorf("%s: %w", fld.name, errNotANumber)
		}
		*fld.dst = n
	}
	s.BreakEnabled = f.BreakEnabled
	s.LunchEnabled = f.LunchEnabled
	s.DinnerEnabled = f.DinnerEnabled
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

// settingsErrorText is the message shown under the form for a parse error.
func settingsErrorText(err error) string {
	switch {
	case errors.Is(err, errNotANumber):
		return "숫자만 입력할 수 있습니다"
	case errors.Is(err, config.ErrInvalidInterval):
		return "휴식 간격은 1분에서 1440분 사이여야 합니다"
	case errors.Is(err, config.ErrInvalidLunchHour), errors.Is(err, config.ErrInvalidDinnerHour):
		return "시간은 0에서 23 사이여야 합니다"
	case errors.Is(err, config.ErrInvalidLunchMinute), errors.Is(err, config.ErrInvalidDinnerMinute):
		return "분은 0에서 59 사이여야 합니다"
	default:
		return "설정을 저장하지 못했습니다: " + err.Error()
	}
}

func numberOptions(n int) []string {
	opts := make([]string, n)
	for i := range opts {
		opts[i] = fmt.Sprintf("%02d", i)
	}
	return opts
}

// SettingsWindow edits the reminder settings and the startup entry.
type SettingsWindow struct {
	ui     *UI
	window fyne.Window

	interval     *widget.Entry
	breakCheck   *widget.Check
	lunchCheck   *widget.Check
	lunchHour    *widget.Select
	lunchMinute  *widget.Select
	dinnerCheck  *widget.Check
	dinnerHour   *widget.Select
	dinnerMinute *widget.Select
	startup      *widget.Check
	errorText    *canvas.Text
}

// NewSettingsWindow creates the settings window controller. The window is
// built on first Show.
func NewSettingsWindow(ui *UI) *SettingsWindow {
	return &SettingsWindow{ui: ui}
}

// Show opens the window with the current settings.
func (sw *SettingsWindow) Show() {
	if sw.window == nil {
		sw.build()
	}
	sw.load(sw.ui.ctx.CurrentSettings())
	sw.startup.SetChecked(sw.ui.ctx.StartupEnabled())
	setText(sw.errorText, "", nil)
	sw.window.Show()
	sw.window.RequestFocus()
}

func (sw *SettingsWindow) build() {
	sw.window = sw.ui.app.NewWindow("⚙️ 시간 설정")
	sw.window.SetIcon(AppIcon())

	sw.interval = widget.NewEntry()
	sw.interval.Validator = func(s string) error {
		if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
			return errNotANumber
		}
		return nil
	}
	sw.breakCheck = widget.NewCheck("🔔 휴식 알림", nil)
	sw.lunchCheck = widget.NewCheck("🍱 점심 알림", nil)
	sw.dinnerCheck = widget.NewCheck("🍽️ 저녁 알림", nil)
	sw.lunchHour = widget.NewSelect(numberOptions(24), nil)
	sw.lunchMinute = widget.NewSelect(numberOptions(60), nil)
	sw.dinnerHour = widget.NewSelect(numberOptions(24), nil)
	sw.dinnerMinute = widget.NewSelect(numberOptions(60), nil)
	sw.startup = widget.NewCheck("💻 윈도우 시작 시 자동 실행", nil)
	sw.errorText = canvas.NewText("", colorRed)
	sw.errorText.TextSize = 12

	timeRow := func(h, m *widget.Select) fyne.CanvasObject {
		return container.NewHBox(widget.NewLabel("시간:"), h, widget.NewLabel(":"), m)
	}

	form := container.NewVBox(
		sw.breakCheck,
		container.NewBorder(nil, nil, widget.NewLabel("간격 (분):"), nil, sw.interval),
		widget.NewSeparator(),
		sw.lunchCheck,
		timeRow(sw.lunchHour, sw.lunchMinute),
		widget.NewSeparator(),
		sw.dinnerCheck,
		timeRow(sw.dinnerHour, sw.dinnerMinute),
		widget.NewSeparator(),
		sw.startup,
		sw.errorText,
	)

	buttons := container.NewGridWithColumns(2,
		NewPrimaryButton("💾 저장", func() { sw.save() }),
		widget.NewButton("닫기", sw.hide),
	)

	sw.window.SetContent(container.NewPadded(container.NewBorder(nil, buttons, nil, nil, form)))
	sw.window.Resize(fyne.NewSize(320, 380))
	sw.window.SetCloseIntercept(sw.hide)
}

func (sw *SettingsWindow) load(s config.Settings) {
	f := formFromSettings(s)
	sw.interval.SetText(f.Interval)
	sw.breakCheck.SetChecked(f.BreakEnabled)
	sw.lunchCheck.SetChecked(f.LunchEnabled)
	sw.lunchHour.SetSelected(f.LunchHour)
	sw.lunchMinute.SetSelected(f.LunchMinute)
	sw.dinnerCheck.SetChecked(f.DinnerEnabled)
	sw.dinnerHour.SetSelected(f.DinnerHour)
	sw.dinnerMinute.SetSelected(f.DinnerMinute)
}

func (sw *SettingsWindow) form() settingsForm {
	return settingsForm{
		Interval:      sw.interval.Text,
		LunchHour:     sw.lunchHour.Selected,
		LunchMinute:   sw.lunchMinute.Selected,
		DinnerHour:    sw.dinnerHour.Selected,
		DinnerMinute:  sw.dinnerMinute.Selected,
		BreakEnabled:  sw.breakCheck.Checked,
		LunchEnabled:  sw.lunchCheck.Checked,
		DinnerEnabled: sw.dinnerCheck.Checked,
	}
}

// save applies the form. It returns false and leaves the window open when
// the input is rejected.
func (sw *SettingsWindow) save() bool {
	s, err := sw.form().parse()
	if err == nil {
		err = sw.ui.ctx.SaveSettings(s, "gui")
	}
	if err != nil {
		sw.ui.log.Warn().Err(err).Msg("Settings not saved")
		setText(sw.errorText, settingsErrorText(err), nil)
		return false
	}

	if want := sw.startup.Checked; want != sw.ui.ctx.StartupEnabled() {
		if res := sw.ui.ctx.Startup(want); !res.OK() {
			sw.ui.warnStartup(res)
		}
	}

	sw.ui.clock.status.SetSuccess("설정이 저장되었습니다")
	sw.hide()
	return true
}

func (sw *SettingsWindow) hide() {
	if sw.window != nil {
		sw.window.Hide()
	}
}
