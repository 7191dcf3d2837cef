// ClockApp tray companion - a small system tray helper for a running clock.
//
// It talks to the clock over the instance control channel
// (\\.\pipe\clockapp-ver2 on Windows, a unix socket elsewhere).
//
// Build for Windows:
//
//	GOOS=windows go build -ldflags "-H=windowsgui" ./cmd/clockapp-tray
//
// Menu: status line, open clock, rest now, settings, start at login,
// view logs, quit.
package main

import (
	"flag"

	"fyne.io/systray"

	"github.com/koreawook/ClockApp/internal/config"
)

func main() {
	dataDir := flag.String("data-dir", "", "Data directory of the clock (default: per-user application data)")
	flag.Parse()

	paths := config.DefaultPaths()
	if *dataDir != "" {
		paths = config.NewPaths(*dataDir)
	}

	t := newTrayApp(paths)
	systray.Run(t.onReady, t.onExit)
}
