// Package solarapi is the outbound client for the building-insights endpoint of the Google Solar API.
package solarapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/helios/internal/models"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Solar API host.
const DefaultBaseURL = "https://solar.googleapis.com"

// findClosestPath requests the building-insights record closest to a point.
const findClosestPath = "/v1/buildingInsights:findClosest"

// RequiredQuality is the minimum imagery quality requested for every lookup.
const RequiredQuality = "HIGH"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Common errors for the Solar API client.
var (
	ErrMissingAPIKey = errors.New("API key is required for the Solar API client")
	ErrEmptyBody     = errors.New("solar API returned an empty body")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher returns the raw building-insights body for a coordinate.
type Fetcher interface {
	FindClosest(ctx context.Context, coord models.Coordinate) ([]byte, error)
}

// Options configure a Client.
type Options struct {
	APIKey    string        // APIKey is sent as the key query parameter.
	BaseURL   string        // BaseURL overrides DefaultBaseURL.
	RateLimit int           // RateLimit is requests per second; 0 disables limiting.
	Timeout   time.Duration // Timeout bounds a single request when the default HTTP client is used.
}

// Client calls the building-insights endpoint.
type Client struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Solar API
	apiKey  string        // API key with Solar API access
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// New creates a client with its own http.Client.
func New(opts Options, log *slog.Logger) (*Client, error) {
	const defaultTimeout = 10 * time.Second

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return NewWithClient(&http.Client{Timeout: timeout}, opts, log)
}

// NewWithClient allows injecting a custom HTTP client.
func NewWithClient(client HTTPClient, opts Options, log *slog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		log:     log,
		limiter: limiter,
	}, nil
}

// FindClosest requests the building-insights record closest to coord with HIGH quality imagery.
//
// Any HTTP status with a readable body is returned as is: the API reports its own failures
// as a JSON error object, and deciding on that is left to the caller. Only transport
// problems (request construction, network, unreadable or empty body) are errors here.
func (c *Client) FindClosest(ctx context.Context, coord models.Coordinate) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := c.buildURL(coord)
	if err != nil {
		return nil, err
	}

	c.log.DebugContext(ctx, "Requesting building insights",
		"lat", coord.Latitude, "lng", coord.Longitude, "quality", RequiredQuality)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute building insights request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%w (status %d)", ErrEmptyBody, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.WarnContext(ctx, "Solar API returned non-OK status", "status", resp.StatusCode)
	}

	return body, nil
}

func (c *Client) buildURL(coord models.Coordinate) (string, error) {
	reqURL, err := url.Parse(c.baseURL + findClosestPath)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("location.latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	query.Set("location.longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	query.Set("requiredQuality", RequiredQuality)
	query.Set("key", c.apiKey)
	reqURL.RawQuery = query.Encode()

	return reqURL.String(), nil
}
