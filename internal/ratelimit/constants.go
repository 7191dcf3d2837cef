package ratelimit

import "time"

const (
	// WeatherRefreshBurst - forced refreshes allowed back to back
	WeatherRefreshBurst = 3

	// WeatherRefreshEvery - one more forced refresh is allowed per this period
	WeatherRefreshEvery = 5 * time.Minute
)
