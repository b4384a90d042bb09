// Package routingapi is a client for the hosted Mapbox-compatible directions, matrix and
// geocoding API.
package routingapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/geo"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

const (
	DefaultBaseURL   = "https://api.mapbox.com"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "service-routing/1.0"

	serviceName  = "routing-api"
	maxErrorBody = 4 << 10
)

// Config holds the client settings.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client calls the hosted routing API. Identical in-flight GETs share one upstream call.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	group     singleflight.Group
	logger    *zap.Logger
}

// NewClient creates a new Client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid routing API base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      httpClient,
		logger:    logger,
	}, nil
}

// APIError is a failure reported by the routing API, either as a non-2xx status or as a
// response code other than "Ok".
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("routing API error (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("routing API error (%d): %s", e.Status, e.Message)
}

// Unwrap exposes the domain error the API error corresponds to.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "NoRoute", "NoSegment", "NoMatch":
		return domain.NewNotFoundError("route", "")
	case "InvalidInput", "InvalidProfile", "ProfileNotFound":
		return domain.NewValidationError(e.Message)
	}
	return domain.NewUpstreamError(serviceName, e.Status, e.Code, e.Message)
}

// envelope is the part of every directions/matrix response that reports success.
type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e envelope) err(status int) error {
	if e.Code == "" || e.Code == "Ok" {
		return nil
	}
	return &APIError{Status: status, Code: e.Code, Message: e.Message}
}

// get performs a GET against path and decodes the JSON body into out. The upstream call is
// shared by every caller asking for the same URL, so it runs detached from any single
// caller's context; each caller only stops waiting when its own context ends.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("access_token", c.token)
	target := c.baseURL + path + "?" + query.Encode()

	ch := c.group.DoChan(target, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx, path, target)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case res = <-ch:
	}
	if res.Err != nil {
		return res.Err
	}
	if res.Shared {
		c.logger.Debug("shared upstream response", zap.String("path", path))
	}

	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return fmt.Errorf("failed to decode routing API response: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, context.Cause(ctx)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// url.Error carries the full URL, token included.
			err = urlErr.Err
		}
		return nil, domain.NewUpstreamError(serviceName, 0, "", err.Error())
	}
	defer resp.Body.Close()

	c.logger.Debug("routing API call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var env envelope
		_ = json.Unmarshal(body, &env)
		if env.Message == "" {
			env.Message = strings.TrimSpace(string(body))
		}
		if env.Message == "" {
			env.Message = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing API response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if apiErr := env.err(resp.StatusCode); apiErr != nil {
			return nil, apiErr
		}
	}
	return body, nil
}

// --- Helpers ---

func joinCoordinates(coords []geo.Coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.LngLat()
	}
	return strings.Join(parts, ";")
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprint(idx)
	}
	return strings.Join(parts, ";")
}

// lngLat is a [lng, lat] position as returned by the API.
type lngLat [2]float64

func (p lngLat) coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: p[1], Lng: p[0]}
}
