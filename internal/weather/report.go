// Package weather fetches current conditions and a short forecast for the
// user's approximate location, caches them on disk and falls back to a
// deterministic report when the network is unavailable.
package weather

import (
	"fmt"
	"strings"
	"time"
)

// Current holds the present conditions, already formatted for display.
type Current struct {
	Temp        string `json:"temp"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Slot is one three-hour forecast entry.
type Slot struct {
	Time string `json:"time"`
	Icon string `json:"icon"`
	Temp string `json:"temp"`
	Desc string `json:"desc"`
}

// Report is the weather payload shown by the UI and stored in the cache.
type Report struct {
	Current  Current `json:"current"`
	Hourly   []Slot  `json:"hourly"`
	Location string  `json:"location"`
}

// Summary is the one-line form used by the clock window and the CLI.
func (r Report) Summary() string {
	if r.Location == "" {
		return fmt.Sprintf("%s %s %s", r.Current.Icon, r.Current.Temp, r.Current.Description)
	}
	return fmt.Sprintf("%s %s %s · %s", r.Current.Icon, r.Current.Temp, r.Current.Description, r.Location)
}

type iconRule struct {
	keywords []string
	icon     string
}

// Checked in order; the first rule with a matching keyword wins.
var iconRules = []iconRule{
	{[]string{"clear", "맑"}, "☀️"},
	{[]string{"cloud", "구름"}, "☁️"},
	{[]string{"rain", "비"}, "🌧️"},
	{[]string{"snow", "눈"}, "❄️"},
	{[]string{"storm", "천둥"}, "⛈️"},
	{[]string{"fog", "안개"}, "🌫️"},
}

// DefaultIcon is used when no keyword matches.
const DefaultIcon = "☀️"

// IconFor maps a weather description to an emoji by case-insensitive
// substring match on English and Korean keywords.
func IconFor(description string) string {
	d := strings.ToLower(description)
	for _, rule := range iconRules {
		for _, kw := range rule.keywords {
			if strings.Contains(d, kw) {
				return rule.icon
			}
		}
	}
	return DefaultIcon
}

// homeCountry is omitted from location labels.
const homeCountry = "South Korea"

// LocationLabel builds "city, region[, country]". The region is dropped when
// empty or equal to the city, the country when empty or the home country.
func LocationLabel(city, region, country string) string {
	label := city
	if region != "" && region != city {
		label = fmt.Sprintf("%s, %s", city, region)
	}
	if country != "" && country != homeCountry {
		label = fmt.Sprintf("%s, %s", label, country)
	}
	return label
}

// FallbackLocation is the location reported by Fallback.
const FallbackLocation = "서울시"

// Fallback returns the deterministic report used when live data is
// unavailable. Only the current block depends on the hour of now.
func Fallback(now time.Time) Report {
	var icon, temp, desc string
	switch h := now.Hour(); {
	case h >= 6 && h < 12:
		icon, temp, desc = "☀️", "22°C", "맑음"
	case h >= 12 && h < 18:
		icon, temp, desc = "⛅", "25°C", "구름 조금"
	case h >= 18 && h < 22:
		icon, temp, desc = "🌙", "20°C", "저녁"
	default:
		icon, temp, desc = "🌙", "18°C", "맑음"
	}

	return Report{
		Current: Current{
			Temp:        temp,
			Humidity:    "65%",
			Wind:        "2.1m/s",
			Description: desc,
			Icon:        icon,
		},
		Hourly: []Slot{
			{Time: "00:00", Icon: "🌙", Temp: "16°C", Desc: "맑음"},
			{Time: "03:00", Icon: "🌙", Temp: "15°C", Desc: "맑음"},
			{Time: "06:00", Icon: "☀️", Temp: "18°C", Desc: "맑음"},
			{Time: "09:00", Icon: "☀️", Temp: "22°C", Desc: "맑음"},
			{Time: "12:00", Icon: "⛅", Temp: "26°C", Desc: "구름 조금"},
			{Time: "15:00", Icon: "⛅", Temp: "25°C", Desc: "구름 조금"},
			{Time: "18:00", Icon: "🌙", Temp: "21°C", Desc: "저녁"},
			{Time: "21:00", Icon: "🌙", Temp: "18°C", Desc: "맑음"},
		},
		Location: FallbackLocation,
	}
}

// kmhToMS converts km/h to m/s with the 0.28 factor used for display.
func kmhToMS(kmh float64) float64 {
	return kmh * 0.28
}

func formatWind(ms float64) string {
	return fmt.Sprintf("%.1fm/s", ms)
}

func formatTemp(c string) string {
	return c + "°C"
}
