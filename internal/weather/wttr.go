package weather

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/koreawook/ClockApp/internal/constants"
	clockhttp "github.com/koreawook/ClockApp/internal/http"
)

// WttrProvider reads the wttr.in j1 format.
type WttrProvider struct {
	client  *nethttp.Client
	baseURL string
	timeout time.Duration
}

// NewWttrProvider creates a provider against baseURL (https://wttr.in).
func NewWttrProvider(client *nethttp.Client, baseURL string, timeout time.Duration) *WttrProvider {
	return &WttrProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// Name implements Provider.
func (p *WttrProvider) Name() string {
	return "wttr"
}

type wttrValue struct {
	Value string `json:"value"`
}

type wttrCondition struct {
	TempC         string      `json:"temp_C"`
	Humidity      string      `json:"humidity"`
	WindspeedKmph string      `json:"windspeedKmph"`
	WeatherDesc   []wttrValue `json:"weatherDesc"`
}

type wttrHourly struct {
	Time        string      `json:"time"`
	TempC       string      `json:"tempC"`
	WeatherDesc []wttrValue `json:"weatherDesc"`
}

type wttrDay struct {
	Hourly []wttrHourly `json:"hourly"`
}

type wttrResponse struct {
	CurrentCondition []wttrCondition `json:"current_condition"`
	Weather          []wttrDay       `json:"weather"`
}

func firstValue(v []wttrValue, def string) string {
	if len(v) == 0 || v[0].Value == "" {
		return def
	}
	return v[0].Value
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Fetch implements Provider.
func (p *WttrProvider) Fetch(ctx context.Context, loc Location) (Report, error) {
	url := fmt.Sprintf("%s/%g,%g?format=j1", p.baseURL, loc.Latitude, loc.Longitude)

	var resp wttrResponse
	if err := clockhttp.GetJSON(ctx, p.client, url, p.timeout, &resp); err != nil {
		return Report{}, fmt.Errorf("wttr request failed: %w", err)
	}
	if len(resp.CurrentCondition) == 0 {
		return Report{}, fmt.Errorf("wttr response has no current_condition")
	}

	cur := resp.CurrentCondition[0]
	kmh, err := strconv.ParseFloat(orDefault(cur.WindspeedKmph, "7"), 64)
	if err != nil {
		return Report{}, fmt.Errorf("bad wind speed %q: %w", cur.WindspeedKmph, err)
	}
	desc := firstValue(cur.WeatherDesc, "맑음")

	report := Report{
		Current: Current{
			Temp:        formatTemp(orDefault(cur.TempC, "20")),
			Humidity:    orDefault(cur.Humidity, "65") + "%",
			Wind:        formatWind(kmhToMS(kmh)),
			Description: desc,
			Icon:        IconFor(desc),
		},
		Hourly:   []Slot{},
		Location: loc.Label(),
	}

	if len(resp.Weather) > 0 {
		for i, h := range resp.Weather[0].Hourly {
			if i >= constants.WeatherHourlySlots {
				break
			}
			hdesc := firstValue(h.WeatherDesc, "맑음")
			report.Hourly = append(report.Hourly, Slot{
				Time: fmt.Sprintf("%02d:00", i*3),
				Icon: IconFor(hdesc),
				Temp: formatTemp(orDefault(h.TempC, "20")),
				Desc: hdesc,
			})
		}
	}
	return report, nil
}
