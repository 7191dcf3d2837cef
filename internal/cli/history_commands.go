package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/history"
	"github.com/koreawook/ClockApp/internal/level"
)

// newHistoryCmd creates the 'history' command.
func newHistoryCmd() *cobra.Command {
	var (
		limit int
		days  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent rests and meals",
		Long: `Show the most recent rest and meal popups and the rest time per day.

Examples:
  clockapp history
  clockapp history --limit 50 --days 14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || days <= 0 {
				return errors.New("--limit and --days must be positive")
			}

			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()
			if c.History == nil {
				return fmt.Errorf("history database unavailable: %s", c.Paths.HistoryFile())
			}

			out := cmd.OutOrStdout()
			sessions, err := c.History.Recent(limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded yet.")
			}
			for _, s := range sessions {
				fmt.Fprintln(out, formatSession(s))
			}

			daily, err := c.History.DailyRest(c.Now(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nRest per day (last %d days):\n", days)
			var maxRest time.Duration
			for _, d := range daily {
				if d.RestTime > maxRest {
					maxRest = d.RestTime
				}
			}
			for _, d := range daily {
				fmt.Fprintf(out, "  %s  %-20s %2d× %s\n",
					d.Day.Format("01-02 Mon"), dayBar(d.RestTime, maxRest, 20), d.Count,
					level.FormatDuration(int64(d.RestTime/time.Second)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of sessions to show")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days in the daily summary")
	return cmd
}

func formatSession(s history.Session) string {
	when := s.StartedAt.Local().Format("2006-01-02 15:04")
	elapsed := level.FormatDuration(int64(s.Elapsed / time.Second))
	switch s.Kind {
	case history.KindMeal:
		return fmt.Sprintf("%s  meal  %-6s %s (%s)", when, config.MealKind(s.Meal).DisplayName(), elapsed, s.Reason)
	default:
		kind := "rest"
		if s.Manual {
			kind = "rest*"
		}
		line := fmt.Sprintf("%s  %-5s %s (%s)", when, kind, elapsed, s.Reason)
		if s.LevelAfter > s.LevelBefore {
			line += fmt.Sprintf("  level %d → %d", s.LevelBefore, s.LevelAfter)
		}
		return line
	}
}

// dayBar draws d as a bar of up to width blocks relative to longest.
func dayBar(d, longest time.Duration, width int) string {
	if longest <= 0 || d <= 0 {
		return ""
	}
	n := int(float64(width) * float64(d) / float64(longest))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
