package config

import (
	"os"
	"path/filepath"
	"testing"

	"turfbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: turfbook
storage:
  path: /tmp/turfbook
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, models.OpenHour, cfg.Venue.OpenHour)
	assert.Equal(t, models.CloseHour, cfg.Venue.CloseHour)
	assert.Equal(t, models.DefaultMaxDuration, cfg.Venue.MaxDuration)
	assert.Equal(t, models.DefaultPeakMultiplier, cfg.Pricing.PeakMultiplier)
	assert.Equal(t, "json", cfg.Storage.Backend)
	assert.Equal(t, models.StorageKey, cfg.Storage.Key)
	assert.Equal(t, models.DefaultSessionTTL, cfg.Session.TTLSeconds)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "exports", cfg.Exports.Path)

	require.Len(t, cfg.Pricing.Coupons, 1)
	assert.Equal(t, models.DefaultCouponCode, cfg.Pricing.Coupons[0].Code)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TURFBOOK_STORAGE_PATH", "/var/lib/turfbook")
	t.Setenv("TURFBOOK_REDIS_PASSWORD", "s3cret")

	path := writeConfig(t, `
storage:
  path: ${TURFBOOK_STORAGE_PATH}
redis:
  address: localhost:6379
  password: ${TURFBOOK_REDIS_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/turfbook", cfg.Storage.Path)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"MissingStoragePath",
			`app: {name: turfbook}`,
			"storage path is required",
		},
		{
			"OpenAfterClose",
			"storage: {path: /tmp/x}\nvenue: {open_hour: 22, close_hour: 6}",
			"invalid operating hours",
		},
		{
			"UnknownTurfSize",
			"storage: {path: /tmp/x}\npricing:\n  turfs:\n    - {size: \"11\", rate_per_hour: 900}",
			"unknown turf size",
		},
		{
			"DuplicateTurf",
			"storage: {path: /tmp/x}\npricing:\n  turfs:\n    - {size: \"5\", rate_per_hour: 800}\n    - {size: \"5\", rate_per_hour: 900}",
			"duplicate turf size",
		},
		{
			"NonPositiveRate",
			"storage: {path: /tmp/x}\npricing:\n  turfs:\n    - {size: \"5\", rate_per_hour: 0}",
			"invalid rate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRates(t *testing.T) {
	cfg := &Config{}
	rates := cfg.Rates()
	assert.Equal(t, models.DefaultRateSmall, rates[models.TurfSmall])
	assert.Equal(t, models.DefaultRateLarge, rates[models.TurfLarge])

	cfg.Pricing.Turfs = []TurfRate{{Size: models.TurfSmall, RatePerHour: 950}}
	rates = cfg.Rates()
	assert.Equal(t, 950, rates[models.TurfSmall])
	assert.Equal(t, models.DefaultRateLarge, rates[models.TurfLarge])
}

func TestCouponTable(t *testing.T) {
	cfg := &Config{}
	cfg.Pricing.Coupons = []CouponCode{
		{Code: " turf10 ", Discount: 0.10},
		{Code: "opening25", Discount: 0.25},
	}

	table := cfg.CouponTable()
	assert.Equal(t, 0.10, table["TURF10"])
	assert.Equal(t, 0.25, table["OPENING25"])
}

func TestAuthForcedOnPublicAPI(t *testing.T) {
	path := writeConfig(t, `
storage:
  path: /tmp/x
api:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.API.Auth.Enabled)
}
