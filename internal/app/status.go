package app

import (
	"time"

	"github.com/koreawook/ClockApp/internal/ipc"
	"github.com/koreawook/ClockApp/internal/scheduler"
	"github.com/koreawook/ClockApp/internal/version"
)

// Status snapshots the running clock for the control channel.
func (c *Context) Status() *ipc.StatusData {
	now := c.now()
	cd := c.Scheduler.NextBreak(now)
	lvl, _ := c.Level.Load()

	st := &ipc.StatusData{
		Version:      version.Version,
		PID:          PID(),
		Uptime:       now.Sub(c.StartedAt).Truncate(time.Second).String(),
		NextBreak:    cd.Label(),
		BreakEnabled: cd.Status != scheduler.StatusDisabled,
		MealPaused:   cd.Status == scheduler.StatusMealPause,
		Level:        lvl.Level,
		TotalSeconds: lvl.TotalSeconds,
	}
	if cd.Status == scheduler.StatusMinutes || cd.Status == scheduler.StatusSeconds {
		st.NextBreakSeconds = int(cd.Remaining / time.Second)
	}
	if st.MealPaused {
		st.ActiveMeal = cd.Meal.DisplayName()
	}
	if _, open := c.ActiveRest(); open {
		st.RestOpen = true
	}
	st.StartupEnabled = c.StartupEnabled()
	if report, ok := c.CachedWeather(); ok {
		st.Weather = report.Summary()
	}
	return st
}
