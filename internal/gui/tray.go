package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Tray is the system tray menu of the GUI process.
type Tray struct {
	ui        *UI
	breakItem *fyne.MenuItem
	menu      *fyne.Menu
}

func NewTray(ui *UI) *Tray {
	return &Tray{ui: ui}
}

// Install sets the tray icon and menu. It reports false on drivers
// without a system tray.
func (t *Tray) Install() bool {
	desk, ok := t.ui.app.(desktop.App)
	if !ok {
		t.ui.log.Debug().Msg("System tray not supported by this driver")
		return false
	}

	t.breakItem = fyne.NewMenuItem("휴식 알림", t.toggleBreaks)
	quit := fyne.NewMenuItem("종료", t.ui.quit)
	quit.IsQuit = true

	t.menu = fyne.NewMenu("ClockApp Ver2",
		fyne.NewMenuItem("Ver2 열기", t.ui.clock.Show),
		fyne.NewMenuItem("설정", func() { t.ui.settings.Show() }),
		fyne.NewMenuItem("지금 휴식", func() {
			if err := t.ui.openRest(true); err != nil {
				t.ui.log.Debug().Err(err).Msg("Manual rest not started")
			}
		}),
		t.breakItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Ver2 정보", func() { t.ui.about.Show() }),
		quit,
	)
	t.Refresh()

	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(AppIcon())
	return true
}

// Refresh syncs the break toggle with the saved settings.
func (t *Tray) Refresh() {
	if t.menu == nil {
		return
	}
	t.breakItem.Checked = t.ui.ctx.CurrentSettings().BreakEnabled
	t.menu.Refresh()
}

func (t *Tray) toggleBreaks() {
	s := t.ui.ctx.CurrentSettings()
	s.BreakEnabled = !s.BreakEnabled
	if err := t.ui.ctx.SaveSettings(s, "tray"); err != nil {
		t.ui.log.Warn().Err(err).Msg("Failed to toggle break reminders")
		return
	}
	t.Refresh()
}
