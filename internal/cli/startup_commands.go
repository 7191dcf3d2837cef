package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/platform"
)

// newStartupCmd creates the 'startup' command group.
func newStartupCmd() *cobra.Command {
	startupCmd := &cobra.Command{
		Use:   "startup",
		Short: "Manage starting ClockApp at login",
		Long: `Register or remove the entry that starts the clock minimized at login.

On Windows the HKCU Run key is tried first and a scheduled task is used if
the registry cannot be written. Elsewhere an XDG autostart file is used.`,
	}

	startupCmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Start ClockApp at login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStartup(cmd, true)
		},
	})
	startupCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Do not start ClockApp at login",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStartup(cmd, false)
		},
	})
	startupCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether ClockApp starts at login",
		RunE: func(cmd *cobra.Command, args []string) error {
			plat := newPlatform(resolvePaths())
			enabled, method := plat.StartupStatus()
			if enabled {
				fmt.Fprintf(cmd.OutOrStdout(), "Startup: enabled (%s)\n", method)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Startup: disabled")
			}
			return nil
		},
	})

	return startupCmd
}

func runStartup(cmd *cobra.Command, enable bool) error {
	c, err := openContext(app.ModeCLI)
	if err != nil {
		return err
	}
	defer c.Close()

	res := c.Startup(enable)
	if !res.OK() {
		return fmt.Errorf("startup registration failed: %w", res.Err)
	}
	if enable {
		exe, _ := platform.Executable()
		fmt.Fprintf(cmd.OutOrStdout(), "Startup enabled (%s): %s\n", res.Method, platform.StartupCommand(exe))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Startup disabled (%s)\n", res.Method)
	}
	return nil
}
