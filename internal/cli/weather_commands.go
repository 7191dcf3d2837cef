package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/weather"
)

// newWeatherCmd creates the 'weather' command group.
func newWeatherCmd() *cobra.Command {
	var (
		refresh bool
		asJSON  bool
	)

	weatherCmd := &cobra.Command{
		Use:   "weather",
		Short: "Show the current weather",
		Long: `Show the weather the clock displays. A fresh cached report is used
unless --refresh is given. When the lookup fails the time-of-day default
is shown.

Commands:
  key  - Manage the OpenWeatherMap API key`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			res := c.Weather.Get(GetContext(), refresh)
			out := cmd.OutOrStdout()

			if asJSON {
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, res.Raw, "", "  "); err != nil {
					return fmt.Errorf("failed to format weather: %w", err)
				}
				fmt.Fprintln(out, pretty.String())
				return nil
			}

			r := res.Report
			fmt.Fprintln(out, r.Summary())
			fmt.Fprintf(out, "습도: %s | 바람: %s\n", r.Current.Humidity, r.Current.Wind)
			for _, slot := range r.Hourly {
				fmt.Fprintf(out, "  %s  %s %s  %s\n", slot.Time, slot.Icon, slot.Temp, slot.Desc)
			}
			fmt.Fprintf(out, "\nSource: %s (%s), updated %s\n",
				res.Source, c.Weather.ProviderName(), res.FetchedAt.Format("2006-01-02 15:04"))
			if res.Err != nil {
				fmt.Fprintf(out, "Lookup failed: %v\n", res.Err)
			}
			return nil
		},
	}

	weatherCmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cache and fetch now")
	weatherCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw report as JSON")

	weatherCmd.AddCommand(newWeatherKeyCmd())
	return weatherCmd
}

// newWeatherKeyCmd creates the 'weather key' command group.
func newWeatherKeyCmd() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenWeatherMap API key",
		Long: `The OpenWeatherMap API key is kept in the OS keyring (Windows
Credential Manager, macOS Keychain or the Secret Service), never in
clock.conf. It is only used when [weather] provider = openweathermap.`,
	}

	keyCmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Store the API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				var err error
				if key, err = readSecret(cmd, "OpenWeatherMap API key: "); err != nil {
					return err
				}
			}
			if err := weather.NewKeyStore().SetAPIKey(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key stored (%s).\n", weather.MaskKey(strings.TrimSpace(key)))
			return nil
		},
	})

	keyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := weather.NewKeyStore().DeleteAPIKey()
			if errors.Is(err, weather.ErrNoAPIKey) {
				fmt.Fprintln(cmd.OutOrStdout(), "No API key stored.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return nil
		},
	})

	keyCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			key, err := weather.NewKeyStore().APIKey()
			switch {
			case errors.Is(err, weather.ErrNoAPIKey):
				fmt.Fprintln(out, "API key: not set")
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "API key: %s\n", weather.MaskKey(key))
			}

			cfg, cfgErr := config.LoadAppConfig(resolvePaths().AppConfigFile())
			if cfgErr == nil && cfg.Weather.Provider != config.ProviderOpenWeatherMap {
				fmt.Fprintf(out, "Note: provider is %q; set [weather] provider = openweathermap to use the key.\n", cfg.Weather.Provider)
			}
			return nil
		},
	})

	return keyCmd
}

// readSecret prompts for a value without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
