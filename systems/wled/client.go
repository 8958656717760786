// Package wled contains WLED JSON API client.
package wled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/plugins/device"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/go-home-io/wled-effects/systems/breaker"
	"github.com/go-home-io/wled-effects/systems/metrics"
	"github.com/go-home-io/wled-effects/systems/ratelimit"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const (
	// Logger system.
	logSystem = "wled"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRetries is the default number of attempts for transient failures.
	DefaultMaxRetries = 3
	// DefaultBackoff is the base of exponential backoff.
	DefaultBackoff = time.Second
	// DefaultInfoTTL defines how long device info is cached.
	DefaultInfoTTL = 10 * time.Minute

	cacheKeyInfo = "info"
)

// ConstructClient has data required for a new device client.
type ConstructClient struct {
	Logger     common.ILoggerProvider
	Host       string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	InfoTTL    time.Duration
	Buffer     *BufferSettings
	Limiter    providers.IRateLimiterProvider
	Breaker    providers.ICircuitBreakerProvider
	HTTPClient *http.Client
}

// WLED JSON API client implementation.
type client struct {
	sync.Mutex

	logger     common.ILoggerProvider
	host       string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	buffer     *BufferSettings
	limiter    providers.IRateLimiterProvider
	breaker    providers.ICircuitBreakerProvider
	http       *http.Client
	ownsHTTP   bool
	cache      *cache.Cache
	closed     bool
}

// NewClient constructs a new device client.
func NewClient(ctor *ConstructClient) providers.IDeviceClientProvider {
	c := &client{
		logger:     ctor.Logger,
		host:       ctor.Host,
		baseURL:    BaseURL(ctor.Host),
		timeout:    ctor.Timeout,
		maxRetries: ctor.MaxRetries,
		backoff:    ctor.Backoff,
		buffer:     ctor.Buffer,
		limiter:    ctor.Limiter,
		breaker:    ctor.Breaker,
		http:       ctor.HTTPClient,
	}

	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}

	if c.maxRetries <= 0 {
		c.maxRetries = DefaultMaxRetries
	}

	if c.backoff <= 0 {
		c.backoff = DefaultBackoff
	}

	if nil == c.buffer {
		c.buffer = NewBufferSettings()
	}

	if nil == c.limiter {
		c.limiter = ratelimit.NewRateLimiter(&ratelimit.ConstructRateLimiter{Logger: c.logger})
	}

	if nil == c.breaker {
		c.breaker = breaker.NewCircuitBreaker(&breaker.ConstructCircuitBreaker{
			Logger: c.logger,
			Name:   c.host,
			OnStateChange: func(name string, state providers.CircuitState) {
				metrics.SetCircuitState(name, string(state))
			},
		})
	}

	if nil == c.http {
		c.http = &http.Client{}
		c.ownsHTTP = true
	}

	ttl := ctor.InfoTTL
	if ttl <= 0 {
		ttl = DefaultInfoTTL
	}

	c.cache = cache.New(ttl, 2*ttl)
	c.logger.Debug("WLED client initialized", common.LogSystemToken, logSystem,
		common.LogDeviceHostToken, c.host)
	return c
}

// BaseURL converts host into device URL.
func BaseURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimSuffix(host, "/")
	}

	return "http://" + host
}

// Host returns device host.
func (c *client) Host() string {
	return c.host
}

// GetState returns current device state.
func (c *client) GetState(ctx context.Context) (*device.State, error) {
	state := &device.State{}
	if err := c.request(ctx, http.MethodGet, device.EndpointState, nil, state); err != nil {
		return nil, err
	}

	return state, nil
}

// GetInfo returns device information, cached after the first query.
func (c *client) GetInfo(ctx context.Context) (*device.Info, error) {
	if cached, ok := c.cache.Get(cacheKeyInfo); ok {
		return cached.(*device.Info), nil
	}

	info := &device.Info{}
	if err := c.request(ctx, http.MethodGet, device.EndpointInfo, nil, info); err != nil {
		return nil, err
	}

	c.cache.SetDefault(cacheKeyInfo, info)
	return info, nil
}

// GetEffects returns names of built-in device effects.
func (c *client) GetEffects(ctx context.Context) ([]string, error) {
	return c.getList(ctx, device.EndpointEffects)
}

// GetPalettes returns names of built-in device palettes.
func (c *client) GetPalettes(ctx context.Context) ([]string, error) {
	return c.getList(ctx, device.EndpointPalettes)
}

// SetState validates and sends partial state.
// Full state is returned only if requested.
func (c *client) SetState(ctx context.Context, state *device.StateRequest, returnFull bool) (*device.State, error) {
	if err := validateState(state); err != nil {
		return nil, err
	}

	req := *state
	req.Verbose = returnFull
	if !returnFull {
		return nil, c.request(ctx, http.MethodPost, device.EndpointState, &req, nil)
	}

	full := &device.State{}
	if err := c.request(ctx, http.MethodPost, device.EndpointState, &req, full); err != nil {
		return nil, err
	}

	return full, nil
}

// TestConnection checks whether device responds.
func (c *client) TestConnection(ctx context.Context) error {
	_, err := c.GetState(ctx)
	return err
}

// Close releases client resources.
func (c *client) Close() error {
	c.Lock()
	defer c.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cache.Flush()
	if c.ownsHTTP {
		c.http.CloseIdleConnections()
	}

	c.logger.Debug("WLED client closed", common.LogSystemToken, logSystem,
		common.LogDeviceHostToken, c.host)
	return nil
}

// Loads string list endpoint.
func (c *client) getList(ctx context.Context, endpoint string) ([]string, error) {
	list := make([]string, 0)
	if err := c.request(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}

	return list, nil
}

// Checks whether client was closed.
func (c *client) isClosed() bool {
	c.Lock()
	defer c.Unlock()
	return c.closed
}

// Sends request through rate limiter and circuit breaker.
func (c *client) request(ctx context.Context, method string, endpoint string, body interface{}, out interface{}) error {
	if c.isClosed() {
		return &common.ErrConnection{Host: c.host, Message: endpoint, Err: &ErrClosed{}}
	}

	var payload []byte
	if nil != body {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &common.ErrConfiguration{Message: fmt.Sprintf("failed to serialize request: %s", err.Error())}
		}
	}

	if err := c.limiter.Acquire(ctx, c.timeout); err != nil {
		return err
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.requestWithRetries(ctx, method, endpoint, payload, out)
	})
}

// Retries 5xx, timeouts and connection errors with exponential backoff.
func (c *client) requestWithRetries(ctx context.Context, method string, endpoint string,
	payload []byte, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.IncrementDeviceRetries(c.host)
			if err := Sleep(ctx, c.backoff*time.Duration(1<<uint(attempt-1))); err != nil {
				return err
			}
		}

		retry, err := c.do(ctx, method, endpoint, payload, out)
		if nil == err {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		if !retry {
			c.logger.Error("WLED request failed", err, common.LogSystemToken, logSystem,
				common.LogDeviceHostToken, c.host, common.LogEndpointToken, endpoint)
			return &common.ErrConnection{Host: c.host, Message: fmt.Sprintf("%s %s", method, endpoint), Err: err}
		}

		c.logger.Warn(fmt.Sprintf("WLED request failed, retrying: %s", err.Error()),
			common.LogSystemToken, logSystem, common.LogDeviceHostToken, c.host,
			common.LogEndpointToken, endpoint, common.LogAttemptToken, fmt.Sprintf("%d/%d", attempt+1, c.maxRetries))
	}

	c.logger.Error("WLED request failed after all attempts", lastErr, common.LogSystemToken, logSystem,
		common.LogDeviceHostToken, c.host, common.LogEndpointToken, endpoint)
	return &common.ErrConnection{
		Host:    c.host,
		Message: fmt.Sprintf("%s %s failed after %d attempts", method, endpoint, c.maxRetries),
		Err:     lastErr,
	}
}

// Performs single HTTP request. Returns whether failure is retryable.
func (c *client) do(ctx context.Context, method string, endpoint string, payload []byte, out interface{}) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if nil != payload {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+endpoint, body)
	if err != nil {
		return false, errors.Wrap(err, "failed to create request")
	}

	if nil != payload {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveDeviceRequest(c.host, method, false, time.Since(start).Seconds())
		return true, errors.Wrap(err, "request failed")
	}

	defer resp.Body.Close() // nolint: errcheck
	data, err := io.ReadAll(resp.Body)
	metrics.ObserveDeviceRequest(c.host, method, err == nil && resp.StatusCode < 300, time.Since(start).Seconds())
	if err != nil {
		return true, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return true, &ErrStatus{Code: resp.StatusCode}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return false, &ErrStatus{Code: resp.StatusCode}
	}

	if nil == out || 0 == len(bytes.TrimSpace(data)) ||
		!strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrap(err, "failed to decode response")
	}

	return false, nil
}

// Sleep waits for the given duration or until context is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
