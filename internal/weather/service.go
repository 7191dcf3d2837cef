package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/koreawook/ClockApp/internal/config"
	"github.com/koreawook/ClockApp/internal/events"
	clockhttp "github.com/koreawook/ClockApp/internal/http"
	"github.com/koreawook/ClockApp/internal/logging"
	"github.com/koreawook/ClockApp/internal/ratelimit"
)

// ErrDisabled is reported when weather lookups are turned off in clock.conf.
var ErrDisabled = errors.New("weather lookups disabled")

// Source says where a Result came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Result is the outcome of Service.Get. Report is always usable; Err is
// informational and is set only for the fallback source.
type Result struct {
	Report    Report
	Raw       json.RawMessage
	Source    Source
	FetchedAt time.Time
	Err       error
}

// Options configures a Service.
type Options struct {
	Cache    *Cache
	Locator  Locator
	Provider Provider
	Disabled bool
	// Limiter throttles forced refreshes; a throttled refresh reads the cache.
	Limiter *ratelimit.RateLimiter
	Now     func() time.Time
	Logger  *logging.Logger
	Bus     *events.EventBus
}

// Service combines the cache, geolocation and a provider.
type Service struct {
	opts Options

	// fetchMu serializes network fetches so concurrent callers share one.
	fetchMu sync.Mutex
}

// NewService creates a service from opts.
func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts}
}

// NewFromConfig wires the HTTP client, cache and provider selected in cfg.
func NewFromConfig(cfg *config.AppConfig, paths config.Paths, logger *logging.Logger, bus *events.EventBus) (*Service, error) {
	w := cfg.Weather
	client, err := clockhttp.NewClient(clockhttp.ProxyConfig{
		Mode:    w.ProxyMode,
		URL:     w.ProxyURL,
		NoProxy: w.NoProxy,
	}, clockhttp.DefaultRetryOptions(), logger)
	if err != nil {
		return nil, err
	}

	var provider Provider
	switch w.Provider {
	case config.ProviderOpenWeatherMap:
		provider = NewOpenWeatherMapProvider(client, w.OWMURL, cfg.WeatherTimeout(), NewKeyStore())
	default:
		provider = NewWttrProvider(client, w.WttrURL, cfg.WeatherTimeout())
	}

	return NewService(Options{
		Cache:    NewCache(paths.WeatherCacheFile(), cfg.CacheTTL()),
		Locator:  NewIPAPILocator(client, w.GeoURL, cfg.GeoTimeout()),
		Provider: provider,
		Disabled: !w.Enabled,
		Limiter:  ratelimit.NewWeatherRefreshLimiter(),
		Logger:   logger,
		Bus:      bus,
	}), nil
}

// Cache returns the service cache.
func (s *Service) Cache() *Cache {
	return s.opts.Cache
}

// ProviderName returns the configured provider name.
func (s *Service) ProviderName() string {
	if s.opts.Provider == nil {
		return ""
	}
	return s.opts.Provider.Name()
}

// Get returns weather for display. A fresh cache entry is returned unchanged
// unless force is set. Any failure yields the time-of-day fallback.
func (s *Service) Get(ctx context.Context, force bool) Result {
	res := s.get(ctx, force)
	s.publish(res)
	return res
}

func (s *Service) get(ctx context.Context, force bool) Result {
	if s.opts.Disabled {
		return s.fallback(ErrDisabled)
	}

	if force && s.opts.Limiter != nil && !s.opts.Limiter.Allow() {
		if s.opts.Logger != nil {
			s.opts.Logger.Debug().Msg("Forced weather refresh throttled, reading cache")
		}
		force = false
	}

	if !force {
		if res, ok := s.fromCache(); ok {
			return res
		}
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	// Another caller may have refreshed the cache while we waited.
	if !force {
		if res, ok := s.fromCache(); ok {
			return res
		}
	}

	report, err := s.fetch(ctx)
	if err != nil {
		if s.opts.Logger != nil {
			s.opts.Logger.Warn().Err(err).Msg("Weather fetch failed, using fallback")
		}
		return s.fallback(err)
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return s.fallback(fmt.Errorf("failed to encode report: %w", err))
	}
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Write(raw); err != nil && s.opts.Logger != nil {
			s.opts.Logger.Warn().Err(err).Msg("Failed to save weather cache")
		}
	}

	return Result{Report: report, Raw: raw, Source: SourceLive, FetchedAt: s.opts.Now()}
}

func (s *Service) fromCache() (Result, bool) {
	if s.opts.Cache == nil {
		return Result{}, false
	}
	entry, ok := s.opts.Cache.Fresh()
	if !ok {
		return Result{}, false
	}
	var report Report
	if err := json.Unmarshal(entry.Data, &report); err != nil {
		return Result{}, false
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Debug().Time("fetched_at", entry.FetchedAt).Msg("Using cached weather")
	}
	return Result{Report: report, Raw: entry.Data, Source: SourceCache, FetchedAt: entry.FetchedAt}, true
}

func (s *Service) fetch(ctx context.Context) (Report, error) {
	if s.opts.Locator == nil || s.opts.Provider == nil {
		return Report{}, errors.New("weather service not configured")
	}
	loc, err := s.opts.Locator.Locate(ctx)
	if err != nil {
		return Report{}, err
	}
	return s.opts.Provider.Fetch(ctx, loc)
}

func (s *Service) fallback(err error) Result {
	now := s.opts.Now()
	report := Fallback(now)
	raw, _ := json.Marshal(report)
	return Result{Report: report, Raw: raw, Source: SourceFallback, FetchedAt: now, Err: err}
}

func (s *Service) publish(res Result) {
	if s.opts.Bus == nil {
		return
	}
	s.opts.Bus.Publish(&events.WeatherEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventWeatherUpdate, Time: s.opts.Now()},
		Summary:   res.Report.Summary(),
		Source:    string(res.Source),
	})
}
