package weather

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	clockhttp "github.com/koreawook/ClockApp/internal/http"
)

// ErrNoCoordinates is returned when geolocation does not yield a position.
var ErrNoCoordinates = errors.New("geolocation returned no coordinates")

// Location is the caller's approximate position from IP geolocation.
type Location struct {
	Latitude  float64
	Longitude float64
	City      string
	Region    string
	Country   string
}

// Label formats the location for display.
func (l Location) Label() string {
	return LocationLabel(l.City, l.Region, l.Country)
}

// Locator resolves the caller's approximate position.
type Locator interface {
	Locate(ctx context.Context) (Location, error)
}

// Provider fetches a report for coordinates.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Report, error)
}

// IPAPILocator queries an ipapi.co compatible endpoint.
type IPAPILocator struct {
	client  *nethttp.Client
	url     string
	timeout time.Duration
}

// NewIPAPILocator creates a locator for url bounded by timeout.
func NewIPAPILocator(client *nethttp.Client, url string, timeout time.Duration) *IPAPILocator {
	return &IPAPILocator{client: client, url: url, timeout: timeout}
}

type ipapiResponse struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryName string   `json:"country_name"`
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
}

// Locate implements Locator.
func (l *IPAPILocator) Locate(ctx context.Context) (Location, error) {
	var resp ipapiResponse
	if err := clockhttp.GetJSON(ctx, l.client, l.url, l.timeout, &resp); err != nil {
		return Location{}, fmt.Errorf("geolocation failed: %w", err)
	}
	if resp.Error {
		return Location{}, fmt.Errorf("geolocation failed: %s", resp.Reason)
	}
	if resp.Latitude == nil || resp.Longitude == nil {
		return Location{}, ErrNoCoordinates
	}

	city := resp.City
	if city == "" {
		city = "Seoul"
	}
	return Location{
		Latitude:  *resp.Latitude,
		Longitude: *resp.Longitude,
		City:      city,
		Region:    resp.Region,
		Country:   resp.CountryName,
	}, nil
}
