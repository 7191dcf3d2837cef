package app

import (
	"context"
	"time"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/history"
	"github.com/koreawook/ClockApp/internal/rest"
	"github.com/koreawook/ClockApp/internal/scheduler"
)

// RestHooks receives a rest popup's progress. Every hook runs on the
// scheduler goroutine; GUI callers must hop to the UI thread themselves.
type RestHooks struct {
	OnTick    func(rest.View)
	OnLevelUp func(level int, message string)
	OnClosed  func(rest.Summary)
}

// MealHooks receives a meal popup's progress.
type MealHooks struct {
	OnTick   func(rest.MealView)
	OnClosed func(rest.MealSummary)
}

type restSession struct {
	ctrl   *rest.Controller
	remove func()
}

type mealSession struct {
	countdown *rest.MealCountdown
	remove    func()
}

// StartRest opens a rest popup controller and ticks it from the scheduler.
// A manual rest restarts the break interval. Only one rest popup can be
// open at a time.
func (c *Context) StartRest(manual bool, hooks RestHooks) (*rest.Controller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRest != nil {
		return nil, ErrRestOpen
	}

	if manual {
		c.Scheduler.ResetBreak(c.now())
	}

	sess := &restSession{}
	sess.ctrl = rest.NewController(c.Level, rest.Options{
		Seconds:      c.Config.Rest.PopupSeconds,
		ConfirmAfter: c.Config.Rest.ConfirmAfterSeconds,
		Manual:       manual,
		Now:          c.now,
		Bus:          c.Bus,
		OnLevelUp: func(lvl int, msg string) {
			c.Logger.Info().Int("level", lvl).Msg("Level up")
			c.Notifier.LevelUp(lvl, msg)
			if hooks.OnLevelUp != nil {
				hooks.OnLevelUp(lvl, msg)
			}
		},
		OnClosed: func(s rest.Summary) {
			c.finishRest(sess, s)
			if hooks.OnClosed != nil {
				hooks.OnClosed(s)
			}
		},
	})
	sess.remove = c.Scheduler.AddTickHandler(func(time.Time) {
		v := sess.ctrl.Tick()
		if hooks.OnTick != nil && v.State == rest.CountingDown {
			hooks.OnTick(v)
		}
	})
	c.activeRest = sess

	c.Logger.Info().Str("session", sess.ctrl.SessionID()).Bool("manual", manual).Msg("Rest popup opened")
	return sess.ctrl, nil
}

func (c *Context) finishRest(sess *restSession, s rest.Summary) {
	c.mu.Lock()
	if c.activeRest == sess {
		c.activeRest = nil
	}
	c.mu.Unlock()
	if sess.remove != nil {
		sess.remove()
	}

	if s.Err != nil {
		c.Logger.Error().Err(s.Err).Msg("Failed to save rest level")
	}
	c.Logger.Info().
		Str("session", s.SessionID).
		Str("reason", string(s.Reason)).
		Dur("elapsed", s.Elapsed).
		Int("level", s.LevelAfter).
		Int64("total_seconds", s.TotalSeconds).
		Msg("Rest popup closed")

	c.record(history.Session{
		ID:          s.SessionID,
		Kind:        history.KindRest,
		Reason:      string(s.Reason),
		Manual:      s.Manual,
		StartedAt:   s.StartedAt,
		Elapsed:     s.Elapsed,
		LevelBefore: s.LevelBefore,
		LevelAfter:  s.LevelAfter,
	})
}

// ActiveRest returns the open rest popup, if any.
func (c *Context) ActiveRest() (*rest.Controller, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeRest == nil {
		return nil, false
	}
	return c.activeRest.ctrl, true
}

// StartMeal opens a meal popup countdown for meal.
func (c *Context) StartMeal(meal config.MealKind, hooks MealHooks) (*rest.MealCountdown, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeMeal != nil {
		return nil, ErrMealOpen
	}

	sess := &mealSession{}
	sess.countdown = rest.NewMealCountdown(meal, rest.MealOptions{
		Seconds: c.Config.Rest.MealPopupSeconds,
		Now:     c.now,
		Bus:     c.Bus,
		OnClosed: func(s rest.MealSummary) {
			c.finishMeal(sess, s)
			if hooks.OnClosed != nil {
				hooks.OnClosed(s)
			}
		},
	})
	sess.remove = c.Scheduler.AddTickHandler(func(time.Time) {
		v := sess.countdown.Tick()
		if hooks.OnTick != nil {
			hooks.OnTick(v)
		}
	})
	c.activeMeal = sess

	c.Logger.Info().Str("meal", string(meal)).Msg("Meal popup opened")
	return sess.countdown, nil
}

func (c *Context) finishMeal(sess *mealSession, s rest.MealSummary) {
	c.mu.Lock()
	if c.activeMeal == sess {
		c.activeMeal = nil
	}
	c.mu.Unlock()
	if sess.remove != nil {
		sess.remove()
	}

	c.Logger.Info().
		Str("meal", string(s.Meal)).
		Str("reason", string(s.Reason)).
		Dur("elapsed", s.Elapsed).
		Bool("completed", s.Completed).
		Msg("Meal popup closed")

	c.record(history.Session{
		ID:        s.SessionID,
		Kind:      history.KindMeal,
		Meal:      string(s.Meal),
		Reason:    string(s.Reason),
		StartedAt: s.StartedAt,
		Elapsed:   s.Elapsed,
	})
}

// ActiveMeal returns the open meal popup, if any.
func (c *Context) ActiveMeal() (*rest.MealCountdown, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeMeal == nil {
		return nil, false
	}
	return c.activeMeal.countdown, true
}

func (c *Context) record(sess history.Session) {
	if c.History == nil {
		return
	}
	if _, err := c.History.Record(sess); err != nil {
		c.Logger.Warn().Err(err).Str("kind", string(sess.Kind)).Msg("Failed to record session")
	}
}

// Run ticks the scheduler until ctx is cancelled. Due reminders are
// announced through the notifier and then handed to onTrigger.
func (c *Context) Run(ctx context.Context, onTrigger func(scheduler.Trigger)) {
	c.Logger.Info().
		Int("interval", c.Scheduler.Settings().TimeInterval).
		Bool("meal_catch_up", c.Config.Scheduler.MealCatchUp).
		Msg("Scheduler started")

	c.Scheduler.Run(ctx, func(tr scheduler.Trigger) {
		switch tr.Kind {
		case scheduler.BreakTrigger:
			c.Logger.Info().Msg("Break due")
			c.Notifier.BreakDue()
		case scheduler.MealTrigger:
			c.Logger.Info().Str("meal", string(tr.Meal.Kind)).Msg("Meal due")
			c.Notifier.MealDue(tr.Meal.Kind.DisplayName())
		}
		if onTrigger != nil {
			onTrigger(tr)
		}
	})
	c.Logger.Info().Msg("Scheduler stopped")
}
