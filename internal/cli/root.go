// Package cli provides the command-line interface for ClockApp. With no
// subcommand it launches the GUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/constants"
	"github.com/koreawook/ClockApp/internal/gui"
	"github.com/koreawook/ClockApp/internal/ipc"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/notify"
	"github.com/koreawook/ClockApp/internal/platform"
	"github.com/koreawook/ClockApp/internal/version"
)

var (
	// Global flags
	verbose   bool
	minimized bool
	dataDir   string

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc

	// newPlatform builds the OS services; tests swap it for a fake.
	newPlatform = func(paths config.Paths) platform.Services {
		return platform.New(platform.Options{LockDir: paths.DataDir})
	}
)

// NewRootCmd creates the root command. Without a subcommand it runs the GUI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clockapp",
		Short: "ClockApp Ver2 - break, lunch and dinner reminders",
		Long: `ClockApp ` + version.Version + ` - Built: ` + version.BuildTime + `
Desktop clock that reminds you to take a break every few minutes and to
eat at lunch and dinner time. Rest time in the break popup earns levels.

Run without a command to open the clock. Use --minimized to start in the
system tray (the startup entry does this).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: per-user application data)")
	rootCmd.Flags().BoolVar(&minimized, "minimized", false, "Start hidden in the system tray")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"
	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, stopping...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)
	cancelFunc()

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newLevelCmd())
	rootCmd.AddCommand(newWeatherCmd())
	rootCmd.AddCommand(newStartupCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newRestCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context. It is cancelled on Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

func resolvePaths() config.Paths {
	if dataDir != "" {
		return config.NewPaths(dataDir)
	}
	return config.DefaultPaths()
}

// openContext builds the shared app context for a command. The caller must
// Close it.
func openContext(mode string) (*app.Context, error) {
	paths := resolvePaths()
	return openContextWith(paths, mode, newPlatform(paths))
}

func openContextWith(paths config.Paths, mode string, plat platform.Services) (*app.Context, error) {
	opts := app.Options{
		Paths:    &paths,
		Mode:     mode,
		Verbose:  verbose,
		Platform: plat,
	}
	if mode == app.ModeCLI {
		opts.Logger = GetLogger()
	}
	return app.New(opts)
}

// showRunningInstance asks the instance holding the guard to bring its clock
// window forward, falling back to an alert when it does not answer.
func showRunningInstance(paths config.Paths) {
	log := GetLogger()
	log.Info().Msg("Another instance is running, asking it to show its window")

	ctx, cancel := context.WithTimeout(GetContext(), constants.IPCRequestTimeout)
	defer cancel()
	err := newClient(paths).Show(ctx)
	if err == nil {
		return
	}
	log.Warn().Err(err).Msg("Running instance did not answer")

	cfg, cfgErr := config.LoadAppConfig(paths.AppConfigFile())
	if cfgErr != nil {
		cfg = config.NewAppConfig()
	}
	notify.NewNotifier(cfg.Notifications, log).Alert("ClockApp Ver2가 이미 실행 중입니다.")
}

func newClient(paths config.Paths) *ipc.Client {
	return ipc.NewClient(ipc.DefaultAddress(paths.SocketFile()), "cli")
}

// runGUI takes the single-instance guard and starts the GUI. A second
// launch asks the running instance to show its window and exits before it
// opens any state of its own.
func runGUI(cmd *cobra.Command) error {
	paths := resolvePaths()
	if err := paths.Ensure(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	firstRun := false
	if _, err := os.Stat(paths.SettingsFile()); errors.Is(err, os.ErrNotExist) {
		firstRun = true
	}

	plat := newPlatform(paths)
	inst, guardErr := plat.AcquireInstance(constants.InstanceMutexName)
	if errors.Is(guardErr, platform.ErrAlreadyRunning) {
		showRunningInstance(paths)
		return nil
	}
	if guardErr == nil {
		defer inst.Release()
	}

	c, err := openContextWith(paths, app.ModeGUI, plat)
	if err != nil {
		return err
	}
	defer c.Close()
	if guardErr != nil {
		c.Logger.Warn().Err(guardErr).Msg("Instance guard unavailable, continuing")
	}

	sibling := c.Platform.DetectSibling()
	if sibling.Found {
		c.Logger.Info().Str("via", sibling.Via).Int("pid", sibling.PID).Msg("ClockApp v1 is running")
	}

	return gui.Run(c, gui.Options{
		Minimized: minimized || c.Config.App.StartMinimized,
		FirstRun:  firstRun,
		Sibling:   sibling,
	})
}
