package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koreawook/ClockApp/internal/app"
	"github.com/koreawook/ClockApp/internal/level"
	"github.com/koreawook/ClockApp/internal/progress"
	"github.com/koreawook/ClockApp/internal/rest"
)

// newRestCmd creates the 'rest' command.
func newRestCmd() *cobra.Command {
	var seconds int

	cmd := &cobra.Command{
		Use:   "rest",
		Short: "Take a rest in the terminal",
		Long: `Count down a rest in the terminal and credit the time to your level,
the same way the rest popup does. Ctrl+C ends the rest early; the time
spent so far is still credited.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seconds") && (seconds < 10 || seconds > 600) {
				return errors.New("--seconds must be between 10 and 600")
			}

			c, err := openContext(app.ModeCLI)
			if err != nil {
				return err
			}
			defer c.Close()

			if seconds > 0 {
				c.Config.Rest.PopupSeconds = seconds
			}
			if c.Config.Rest.ConfirmAfterSeconds > c.Config.Rest.PopupSeconds {
				c.Config.Rest.ConfirmAfterSeconds = c.Config.Rest.PopupSeconds
			}

			summary, err := runRest(GetContext(), c, func(total int, start level.Progress) restView {
				return progress.NewRestUI(total, start)
			})
			if err != nil {
				return err
			}
			if summary.Err != nil {
				return fmt.Errorf("rest time not saved: %w", summary.Err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seconds, "seconds", 0, "Countdown length in seconds (default from clock.conf)")
	return cmd
}

// restView is the terminal rendering of a rest.
type restView interface {
	Update(rest.View)
	LevelUp(level int, message string)
	Finish(rest.Summary)
}

// runRest drives a manual rest from the scheduler tick until it times out
// or ctx is cancelled, and returns its summary.
func runRest(ctx context.Context, c *app.Context, newView func(int, level.Progress) restView) (rest.Summary, error) {
	st, _ := c.Level.Load()
	view := newView(c.Config.Rest.PopupSeconds, level.ProgressFor(st.TotalSeconds))

	done := make(chan rest.Summary, 1)
	ctrl, err := c.StartRest(true, app.RestHooks{
		OnTick:    view.Update,
		OnLevelUp: view.LevelUp,
		OnClosed: func(s rest.Summary) {
			done <- s
		},
	})
	if err != nil {
		return rest.Summary{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.Scheduler.Run(runCtx, nil)

	var summary rest.Summary
	select {
	case summary = <-done:
	case <-ctx.Done():
		summary = ctrl.Close(rest.ReasonClosed)
	}
	view.Finish(summary)
	return summary, nil
}
