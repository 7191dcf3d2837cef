package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/progress"
)

// newLevelCmd creates the 'level' command.
func newLevelCmd() *cobra.Command {
	var add int64

	cmd := &cobra.Command{
		Use:   "level",
		Short: "Show the rest level",
		Long: `Show the rest level and the time left to the next one.

Every level costs twice as much rest as the previous one, starting at 30
seconds. Use --add to credit rest taken away from the computer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if add < 0 {
				return errors.New("--add must not be negative")
			}

			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			st, res := c.Level.Load()
			if res.Err != nil {
				GetLogger().Warn().Err(res.Err).Str("outcome", res.Outcome.String()).Msg("Level file unreadable, starting from zero")
			}

			out := cmd.OutOrStdout()
			if add > 0 {
				before, after, err := c.Level.Add(add)
				if err != nil {
					return fmt.Errorf("failed to save level: %w", err)
				}
				st = after
				fmt.Fprintf(out, "Added %s.\n", level.FormatDuration(add))
				if after.Level > before.Level {
					fmt.Fprintf(out, "🎉 Level %d! %s\n", after.Level, level.Message(after.Level))
				}
			}

			p := level.ProgressFor(st.TotalSeconds)
			fmt.Fprintf(out, "Level:          %d\n", p.Level)
			fmt.Fprintf(out, "Total rest:     %s\n", level.FormatDuration(p.Total))
			fmt.Fprintf(out, "Next level in:  %s\n", level.FormatDuration(p.Remaining))

			bar := progress.NewCLIProgress(cmd.ErrOrStderr())
			bar.Start(p.Required, fmt.Sprintf("레벨 %d → %d", p.Level, p.Level+1))
			bar.Update(p.IntoLevel)
			fmt.Fprintln(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.Flags().Int64Var(&add, "add", 0, "Credit this many seconds of rest")
	return cmd
}
