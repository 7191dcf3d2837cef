package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/ipc"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/version"
)

// newStatusCmd creates the 'status' command.
func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the running clock",
		Long: `Ask the running clock for its state over the control channel:
next break, level, open popups and the startup entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(GetContext(), constants.IPCRequestTimeout)
			defer cancel()

			status, err := newClient(resolvePaths()).GetStatus(ctx)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "ClockApp is not running.")
				GetLogger().Debug().Err(err).Msg("Status request failed")
				return nil
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")
	return cmd
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "ClockApp %s (pid %d, up %s)\n", s.Version, s.PID, s.Uptime)
	fmt.Fprintf(w, "%s\n", s.NextBreak)
	if s.MealPaused {
		fmt.Fprintf(w, "Meal time: %s (break reminders paused)\n", s.ActiveMeal)
	}
	if !s.BreakEnabled {
		fmt.Fprintln(w, "Break reminders are off")
	}
	fmt.Fprintf(w, "Level %d, %s of rest\n", s.Level, level.FormatDuration(s.TotalSeconds))
	if s.RestOpen {
		fmt.Fprintln(w, "A rest popup is open")
	}
	if s.Weather != "" {
		fmt.Fprintf(w, "Weather: %s\n", s.Weather)
	}
	startup := "off"
	if s.StartupEnabled {
		startup = "on"
	}
	fmt.Fprintf(w, "Start at login: %s\n", startup)
}

// newVersionCmd creates the 'version' command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ClockApp %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:    %s\n", version.BuildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "Go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
