// ClockApp Ver2 - desktop clock with break, lunch and dinner reminders.
//
// - No args → clock window (GUI)
// - --minimized → start hidden in the system tray (used by the startup entry)
// - Subcommands (settings, level, weather, startup, history, rest, status) → CLI
//
// Build for Windows with: go build -ldflags "-H=windowsgui -X github.com/koreawook/ClockApp/internal/version.BuildTime=$(date +%F)"
package main

import (
	"os"

	"github.com/koreawook/ClockApp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
