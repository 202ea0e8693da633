package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/helios/internal/geocoding"
	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respond(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(_ *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
		}, nil
	}
}

func TestNominatimProvider_ReverseGeocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	coord := models.Coordinate{Latitude: 41.092865, Longitude: 28.991783}
	unlimited := rate.NewLimiter(rate.Inf, 0)

	t.Run("successful reverse geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), geocoding.NominatimBaseURL)
				assert.Equal(t, "41.092865", req.URL.Query().Get("lat"))
				assert.Equal(t, "28.991783", req.URL.Query().Get("lon"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(
					t,
					"Helios-Solar-Map/1.0 (https://github.com/UnknownOlympus/helios)",
					req.Header.Get("User-Agent"),
				)

				return respond(http.StatusOK, `{"display_name":"Maslak, Sarıyer, İstanbul"}`)(req)
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, unlimited, logger)
		address, err := provider.ReverseGeocode(ctx, coord)

		require.NoError(t, err)
		assert.Equal(t, "Maslak, Sarıyer, İstanbul", address)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, `{}`)}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, unlimited, logger)
		address, err := provider.ReverseGeocode(ctx, coord)

		require.Empty(t, address)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
	})

	t.Run("no address at location", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, `{"error":"Unable to geocode"}`)}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, unlimited, logger)
		_, err := provider.ReverseGeocode(ctx, coord)

		require.ErrorIs(t, err, geocoding.ErrNominatimNotFound)
		assert.Contains(t, err.Error(), "Unable to geocode")
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: respond(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`),
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, unlimited, logger)
		_, err := provider.ReverseGeocode(ctx, coord)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, `invalid json`)}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, unlimited, logger)
		_, err := provider.ReverseGeocode(ctx, coord)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, unlimited, logger)
		_, err := provider.ReverseGeocode(ctx, coord)

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("rate limit blocks cancelled context", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called when rate limit blocks")
				return &http.Response{}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, rate.NewLimiter(1, 1), logger)
		_, err := provider.ReverseGeocode(newCtx, coord)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit exceeded")
	})
}
