package gui

import (
	"fyne.io/fyne/v2"

	"github.com/koreawook/ClockApp/internal/icon"
)

// AppIcon is the clock icon used for windows and the system tray.
func AppIcon() fyne.Resource {
	return fyne.NewStaticResource("clockapp.png", icon.PNG())
}
