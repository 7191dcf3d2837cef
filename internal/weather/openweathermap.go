package weather

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/koreawook/ClockApp/internal/constants"
	clockhttp "github.com/koreawook/ClockApp/internal/http"
)

// OpenWeatherMapProvider uses the current weather and 3-hour forecast
// endpoints of the OpenWeatherMap 2.5 API. The API key comes from keys.
type OpenWeatherMapProvider struct {
	client  *nethttp.Client
	baseURL string
	timeout time.Duration
	keys    *KeyStore
	now     func() time.Time
}

// NewOpenWeatherMapProvider creates a provider against baseURL.
func NewOpenWeatherMapProvider(client *nethttp.Client, baseURL string, timeout time.Duration, keys *KeyStore) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		keys:    keys,
		now:     time.Now,
	}
}

// Name implements Provider.
func (p *OpenWeatherMapProvider) Name() string {
	return "openweathermap"
}

type owmWeather struct {
	Description string `json:"description"`
}

type owmMain struct {
	Temp     float64 `json:"temp"`
	Humidity int     `json:"humidity"`
}

type owmCurrent struct {
	Weather []owmWeather `json:"weather"`
	Main    owmMain      `json:"main"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type owmForecast struct {
	List []struct {
		Dt      int64        `json:"dt"`
		Main    owmMain      `json:"main"`
		Weather []owmWeather `json:"weather"`
	} `json:"list"`
}

func owmDescription(w []owmWeather) string {
	if len(w) == 0 || w[0].Description == "" {
		return "맑음"
	}
	return w[0].Description
}

func (p *OpenWeatherMapProvider) endpoint(path, key string, loc Location) string {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%g", loc.Latitude))
	q.Set("lon", fmt.Sprintf("%g", loc.Longitude))
	q.Set("units", "metric")
	q.Set("lang", "kr")
	q.Set("appid", key)
	if path == "forecast" {
		q.Set("cnt", fmt.Sprintf("%d", constants.WeatherHourlySlots))
	}
	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, q.Encode())
}

// Fetch implements Provider.
func (p *OpenWeatherMapProvider) Fetch(ctx context.Context, loc Location) (Report, error) {
	key, err := p.keys.APIKey()
	if err != nil {
		return Report{}, err
	}

	var cur owmCurrent
	if err := clockhttp.GetJSON(ctx, p.client, p.endpoint("weather", key, loc), p.timeout, &cur); err != nil {
		return Report{}, fmt.Errorf("openweathermap current request failed: %w", err)
	}

	desc := owmDescription(cur.Weather)
	report := Report{
		Current: Current{
			Temp:        fmt.Sprintf("%.0f°C", cur.Main.Temp),
			Humidity:    fmt.Sprintf("%d%%", cur.Main.Humidity),
			Wind:        formatWind(cur.Wind.Speed),
			Description: desc,
			Icon:        IconFor(desc),
		},
		Hourly:   []Slot{},
		Location: loc.Label(),
	}

	// The forecast is optional; a failure leaves the hourly list empty.
	var fc owmForecast
	if err := clockhttp.GetJSON(ctx, p.client, p.endpoint("forecast", key, loc), p.timeout, &fc); err == nil {
		tz := p.now().Location()
		for i, item := range fc.List {
			if i >= constants.WeatherHourlySlots {
				break
			}
			hdesc := owmDescription(item.Weather)
			report.Hourly = append(report.Hourly, Slot{
				Time: time.Unix(item.Dt, 0).In(tz).Format("15:04"),
				Icon: IconFor(hdesc),
				Temp: fmt.Sprintf("%.0f°C", item.Main.Temp),
				Desc: hdesc,
			})
		}
	}
	return report, nil
}
