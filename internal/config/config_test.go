package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/helios/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HELIOS_SOLAR_API_KEY", "testAPIKey")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "testAPIKey", cfg.Solar.APIKey)
	assert.Equal(t, "https://solar.googleapis.com", cfg.Solar.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Solar.Timeout)
	assert.Equal(t, "testAPIKey", cfg.Maps.JSKey)
	assert.InDelta(t, 41.092865156416345, cfg.Maps.CenterLat, 1e-12)
	assert.InDelta(t, 28.991783817617385, cfg.Maps.CenterLng, 1e-12)
	assert.Equal(t, 18, cfg.Maps.Zoom)
	assert.Equal(t, "none", cfg.Geocoder.Provider)
	assert.Equal(t, "testAPIKey", cfg.Geocoder.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 50, cfg.Session.MaxDiagnostics)
}

func Test_LoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HELIOS_ENV", "local")
	t.Setenv("HELIOS_SERVER_PORT", "9090")
	t.Setenv("HELIOS_SOLAR_API_KEY", "solarKey")
	t.Setenv("HELIOS_SOLAR_TIMEOUT", "3s")
	t.Setenv("HELIOS_MAPS_JS_KEY", "browserKey")
	t.Setenv("HELIOS_GEOCODER_PROVIDER", "nominatim")
	t.Setenv("HELIOS_SESSION_TTL", "10m")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "solarKey", cfg.Solar.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Solar.Timeout)
	assert.Equal(t, "browserKey", cfg.Maps.JSKey)
	assert.Equal(t, "nominatim", cfg.Geocoder.Provider)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
}

func Test_LoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "helios.yaml")
	filet.File(t, path, `
env: development
server:
  port: 7070
solar:
  api_key: fileKey
  rate_limit: 2
maps:
  zoom: 16
geocoder:
  provider: google
session:
  max_diagnostics: 5
`)
	t.Setenv("HELIOS_SERVER_PORT", "7171")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 7171, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, "fileKey", cfg.Solar.APIKey)
	assert.Equal(t, 2, cfg.Solar.RateLimit)
	assert.Equal(t, 16, cfg.Maps.Zoom)
	assert.Equal(t, "google", cfg.Geocoder.Provider)
	assert.Equal(t, 5, cfg.Session.MaxDiagnostics)
}

func Test_LoadSearchesWorkingDirectory(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	filet.File(t, filepath.Join(dir, "helios.yaml"), "solar:\n  api_key: searched\n")
	t.Chdir(dir)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "searched", cfg.Solar.APIKey)
}

func Test_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("validation collects every problem", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HELIOS_SOLAR_API_KEY", "")
		t.Setenv("HELIOS_SERVER_PORT", "70000")
		t.Setenv("HELIOS_GEOCODER_PROVIDER", "visicom")
		t.Setenv("HELIOS_MAPS_CENTER_LAT", "95")

		_, err := config.Load("")

		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "server.port must be 1-65535, got 70000")
		assert.Contains(t, err.Error(), "solar.api_key is required")
		assert.Contains(t, err.Error(), `geocoder.provider must be none, google or nominatim, got "visicom"`)
		assert.Contains(t, err.Error(), "maps center")
	})
}

func TestLoad_SessionTTLTooShort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HELIOS_SOLAR_API_KEY", "key")
	t.Setenv("HELIOS_SESSION_TTL", "1ns")

	cfg, err := config.Load("")

	require.Nil(t, cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "session.ttl must be at least 1s, got 1ns")
}
