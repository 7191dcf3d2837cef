// Package http builds the outbound HTTP client used by the weather
// fetcher: proxy selection, retries and small JSON helpers.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/koreawook/ClockApp/internal/logging"
)

// maxBodySize bounds JSON responses; weather payloads are a few dozen KB.
const maxBodySize = 4 << 20

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	if l.log != nil {
		l.log.Warn().Fields(keysAndValues).Msg("[RETRY ERROR] " + msg)
	}
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not all info
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.log != nil {
		l.log.Debug().Fields(keysAndValues).Msg(msg)
	}
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	if l.log != nil {
		l.log.Warn().Fields(keysAndValues).Msg("[RETRY WARN] " + msg)
	}
}

// RetryOptions tunes NewClient.
type RetryOptions struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultRetryOptions suits short interactive lookups: two retries, quick waits.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		RetryMax:     2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,
	}
}

// NewClient returns a standard *http.Client that retries connection errors
// and 5xx/429 responses on top of the proxy-configured base client.
func NewClient(p ProxyConfig, opts RetryOptions, logger *logging.Logger) (*nethttp.Client, error) {
	base, err := ConfigureHTTPClient(p)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}
	return WrapRetry(base, opts, logger), nil
}

// WrapRetry wraps base with retryablehttp.
func WrapRetry(base *nethttp.Client, opts RetryOptions, logger *logging.Logger) *nethttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = &retryLogger{log: logger}
	return retryClient.StandardClient()
}

// StatusError is returned by GetJSON for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// GetBytes performs a GET bounded by timeout and returns the body.
func GetBytes(ctx context.Context, client *nethttp.Client, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ClockApp")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// GetJSON performs a GET and decodes the JSON body into v.
func GetJSON(ctx context.Context, client *nethttp.Client, url string, timeout time.Duration, v interface{}) error {
	body, err := GetBytes(ctx, client, url, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
