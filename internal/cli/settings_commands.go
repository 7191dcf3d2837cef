package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
)

// newSettingsCmd creates the 'settings' command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change reminder settings",
		Long: `Reminder settings commands.

Commands:
  show     - Display the current settings
  path     - Show the settings file path
  set      - Change settings
  reset    - Restore the defaults (the old file is backed up)
  export   - Write the settings to a file
  import   - Load settings from a file
  backups  - List settings backups
  info     - Show the settings file state`,
	}

	settingsCmd.AddCommand(newSettingsShowCmd())
	settingsCmd.AddCommand(newSettingsPathCmd())
	settingsCmd.AddCommand(newSettingsSetCmd())
	settingsCmd.AddCommand(newSettingsResetCmd())
	settingsCmd.AddCommand(newSettingsExportCmd())
	settingsCmd.AddCommand(newSettingsImportCmd())
	settingsCmd.AddCommand(newSettingsBackupsCmd())
	settingsCmd.AddCommand(newSettingsInfoCmd())

	return settingsCmd
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printSettings(w io.Writer, s config.Settings) {
	fmt.Fprintf(w, "Break interval:  %d min (%s)\n", s.TimeInterval, onOff(s.BreakEnabled))
	fmt.Fprintf(w, "Lunch:           %02d:%02d (%s)\n", s.LunchHour, s.LunchMinute, onOff(s.LunchEnabled))
	fmt.Fprintf(w, "Dinner:          %02d:%02d (%s)\n", s.DinnerHour, s.DinnerMinute, onOff(s.DinnerEnabled))
}

// parseClock parses "HH:MM".
func parseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if hour, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	if minute, err = strconv.Atoi(m); err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// notifyReload asks a running clock to pick up the new settings file.
func notifyReload(w io.Writer, paths config.Paths) {
	ctx, cancel := context.WithTimeout(GetContext(), constants.IPCRequestTimeout)
	defer cancel()
	client := newClient(paths)
	if !client.IsRunning(ctx) {
		return
	}
	if err := client.ReloadSettings(ctx); err != nil {
		GetLogger().Warn().Err(err).Msg("Running clock did not reload settings")
		return
	}
	fmt.Fprintln(w, "Running clock updated.")
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			s, res := c.Settings.Load()
			out := cmd.OutOrStdout()
			printSettings(out, s)
			if res.Outcome != config.Loaded {
				fmt.Fprintf(out, "\n(settings file %s, showing defaults)\n", res.Outcome)
			}
			return nil
		},
	}
}

func newSettingsPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), resolvePaths().SettingsFile())
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		interval      int
		lunch, dinner string
		breakOn       bool
		lunchOn       bool
		dinnerOn      bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long: `Change one or more settings. Unspecified settings keep their value.

Examples:
  clockapp settings set --interval 30
  clockapp settings set --lunch 12:30 --dinner 18:30 --dinner-enabled`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			changed := false
			for _, name := range []string{"interval", "lunch", "dinner", "break-enabled", "lunch-enabled", "dinner-enabled"} {
				changed = changed || flags.Changed(name)
			}
			if !changed {
				return errors.New("nothing to change; see --help")
			}

			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			s := c.CurrentSettings()
			if flags.Changed("interval") {
				s.TimeInterval = interval
			}
			if flags.Changed("lunch") {
				if s.LunchHour, s.LunchMinute, err = parseClock(lunch); err != nil {
					return err
				}
			}
			if flags.Changed("dinner") {
				if s.DinnerHour, s.DinnerMinute, err = parseClock(dinner); err != nil {
					return err
				}
			}
			if flags.Changed("break-enabled") {
				s.BreakEnabled = breakOn
			}
			if flags.Changed("lunch-enabled") {
				s.LunchEnabled = lunchOn
			}
			if flags.Changed("dinner-enabled") {
				s.DinnerEnabled = dinnerOn
			}

			if err := c.SaveSettings(s, "cli"); err != nil {
				return fmt.Errorf("settings not saved: %w", err)
			}
			out := cmd.OutOrStdout()
			printSettings(out, s)
			notifyReload(out, c.Paths)
			return nil
		},
	}

	cmd.Flags().IntVar(&interval, "interval", 0, "Break interval in minutes (1-1440)")
	cmd.Flags().StringVar(&lunch, "lunch", "", "Lunch time as HH:MM")
	cmd.Flags().StringVar(&dinner, "dinner", "", "Dinner time as HH:MM")
	cmd.Flags().BoolVar(&breakOn, "break-enabled", true, "Enable break reminders")
	cmd.Flags().BoolVar(&lunchOn, "lunch-enabled", true, "Enable the lunch reminder")
	cmd.Flags().BoolVar(&dinnerOn, "dinner-enabled", true, "Enable the dinner reminder")

	return cmd
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Long: `Restore the default settings. The current file is copied to the
backup directory as settings_reset_backup_<time>.json first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Settings.Reset(); err != nil {
				return fmt.Errorf("failed to reset settings: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Settings reset to defaults.")
			printSettings(out, config.DefaultSettings())
			notifyReload(out, c.Paths)
			return nil
		},
	}
}

func newSettingsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the settings to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Settings.Export(args[0]); err != nil {
				return fmt.Errorf("failed to export settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings exported to %s\n", args[0])
			return nil
		},
	}
}

func newSettingsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load settings from a file",
		Long: `Load settings from a file written by 'settings export' (or a v1
clock_settings.json). The file is validated first; the current settings are
backed up before they are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			s, err := c.Settings.Import(args[0])
			if err != nil {
				return fmt.Errorf("failed to import settings: %w", err)
			}
			c.Scheduler.UpdateSettings(s)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settings imported from %s\n", args[0])
			printSettings(out, s)
			notifyReload(out, c.Paths)
			return nil
		},
	}
}

func newSettingsBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List settings backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			backups, err := c.Settings.Backups()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(out, "No backups.")
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(out, "%s  %6d B  %s\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Size, b.Name)
			}
			return nil
		},
	}
}

func newSettingsInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the settings file state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			info := c.Settings.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:     %s\n", info.Path)
			fmt.Fprintf(out, "State:    %s\n", info.Outcome)
			if info.Exists {
				fmt.Fprintf(out, "Size:     %d B\n", info.Size)
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "Backups:  %d in %s\n", info.BackupCount, info.BackupDir)
			if info.LegacyPath != "" {
				fmt.Fprintf(out, "v1 file:  %s (run 'clockapp migrate' to import)\n", info.LegacyPath)
			}
			return nil
		},
	}
}

// newMigrateCmd creates the 'migrate' command.
func newMigrateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Import settings from ClockApp v1",
		Long: `Convert the v1 clock_settings.json into the v2 settings file.

The v1 file is left in place and a copy is kept in the backup directory.
An existing v2 settings file is only replaced with --force.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			res, err := c.Settings.MigrateFromV1(force)
			switch {
			case errors.Is(err, config.ErrAlreadyMigrated):
				fmt.Fprintln(out, "v2 settings already exist. Use --force to overwrite them.")
				return nil
			case errors.Is(err, config.ErrNoLegacySettings):
				fmt.Fprintln(out, "No v1 settings found.")
				return nil
			case errors.Is(err, config.ErrBackupFailed):
				GetLogger().Warn().Err(err).Msg("v1 settings migrated without a backup copy")
			case err != nil:
				return fmt.Errorf("migration failed: %w", err)
			}

			c.Scheduler.UpdateSettings(res.Settings)
			fmt.Fprintf(out, "Migrated %s\n", res.Source)
			if res.Backup != "" {
				fmt.Fprintf(out, "Backup:   %s\n", res.Backup)
			}
			printSettings(out, res.Settings)
			notifyReload(out, c.Paths)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing v2 settings")
	return cmd
}
