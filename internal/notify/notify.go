// Package notify sends desktop notifications and beeps for ClockApp.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/logging"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger  *logging.Logger
	enabled bool
	sound   bool
	icon    string
	mu      sync.RWMutex

	// swapped in tests
	notify func(title, message, icon string) error
	alert  func(title, message, icon string) error
	beep   func(freq float64, duration int) error
}

// NewNotifier creates a notifier from the [notifications] section.
func NewNotifier(cfg config.NotificationSection, logger *logging.Logger) *Notifier {
	return &Notifier{
		logger:  logger,
		enabled: cfg.Enabled,
		sound:   cfg.Sound,
		notify:  func(t, m, i string) error { return beeep.Notify(t, m, i) },
		alert:   func(t, m, i string) error { return beeep.Alert(t, m, i) },
		beep:    beeep.Beep,
	}
}

// SetIcon sets the icon file shown with notifications.
func (n *Notifier) SetIcon(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.icon = path
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

func (n *Notifier) soundOn() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled && n.sound
}

func (n *Notifier) iconPath() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.icon
}

// BreakDue announces a rest popup.
func (n *Notifier) BreakDue() {
	n.Beep()
}

// MealDue announces a meal popup.
func (n *Notifier) MealDue(meal string) {
	if !n.IsEnabled() {
		return
	}
	n.Beep()
	message := fmt.Sprintf("지금은 %s 시간입니다! 🍽️", meal)
	if err := n.send(constants.AppName, message); err != nil {
		n.warn(err, "Failed to send meal notification")
	}
}

// LevelUp announces a new rest level.
func (n *Notifier) LevelUp(level int, message string) {
	if !n.IsEnabled() {
		return
	}
	title := fmt.Sprintf("🎉 레벨 %d", level)
	if err := n.send(title, truncate(message, 120)); err != nil {
		n.warn(err, "Failed to send level-up notification")
	}
}

// RunningInBackground tells the user the clock keeps running in the tray.
func (n *Notifier) RunningInBackground() {
	if !n.IsEnabled() {
		return
	}
	if err := n.send(constants.AppName, "트레이에서 계속 실행 중입니다."); err != nil {
		n.warn(err, "Failed to send background notification")
	}
}

// Alert sends a prominent notification for problems the user should see.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	title := constants.AppName + " 경고"

	// beeep.Alert shows a more prominent notification on some platforms
	if err := n.alert(title, message, n.iconPath()); err != nil {
		if err := n.send(title, message); err != nil {
			n.warn(err, "Failed to send alert notification")
		}
	}
}

// Beep plays a system beep when sound is enabled.
func (n *Notifier) Beep() {
	if !n.soundOn() {
		return
	}
	_ = n.beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	return n.notify(title, message, n.iconPath())
}

func (n *Notifier) warn(err error, msg string) {
	if n.logger != nil {
		n.logger.Warn().Err(err).Msg(msg)
	}
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
