package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"turfbook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Venue      VenueConfig      `yaml:"venue"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Session    SessionConfig    `yaml:"session"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type VenueConfig struct {
	OpenHour    int `yaml:"open_hour"`
	CloseHour   int `yaml:"close_hour"`
	MaxDuration int `yaml:"max_duration"`
}

type PricingConfig struct {
	Turfs          []TurfRate   `yaml:"turfs"`
	PeakMultiplier float64      `yaml:"peak_multiplier"`
	Coupons        []CouponCode `yaml:"coupons"`
}

type TurfRate struct {
	Size        models.TurfSize `yaml:"size"`
	RatePerHour int             `yaml:"rate_per_hour"`
}

type CouponCode struct {
	Code     string  `yaml:"code"`
	Discount float64 `yaml:"discount"`
}

type StorageConfig struct {
	// Backend selects the snapshot implementation: "json" (default) or "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// Key names the snapshot inside Path. Must stay stable across versions.
	Key string `yaml:"key"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment wins either way.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Substitute environment variables before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	if c.Venue.OpenHour < 0 || c.Venue.CloseHour > 24 || c.Venue.OpenHour >= c.Venue.CloseHour {
		return fmt.Errorf("invalid operating hours [%d, %d)", c.Venue.OpenHour, c.Venue.CloseHour)
	}
	if c.Venue.MaxDuration < 1 {
		return errors.New("venue max_duration must be at least 1 hour")
	}
	return ValidateTurfs(c.Pricing.Turfs)
}

func ValidateTurfs(turfs []TurfRate) error {
	seen := make(map[models.TurfSize]bool)
	for _, t := range turfs {
		if !t.Size.Valid() {
			return fmt.Errorf("unknown turf size %q", t.Size)
		}
		if seen[t.Size] {
			return fmt.Errorf("duplicate turf size found: %s", t.Size)
		}
		if t.RatePerHour <= 0 {
			return fmt.Errorf("turf %s has invalid rate %d", t.Size, t.RatePerHour)
		}
		seen[t.Size] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Venue.OpenHour == 0 {
		c.Venue.OpenHour = models.OpenHour
	}
	if c.Venue.CloseHour == 0 {
		c.Venue.CloseHour = models.CloseHour
	}
	if c.Venue.MaxDuration == 0 {
		c.Venue.MaxDuration = models.DefaultMaxDuration
	}
	if c.Pricing.PeakMultiplier == 0 {
		c.Pricing.PeakMultiplier = models.DefaultPeakMultiplier
	}
	if len(c.Pricing.Coupons) == 0 {
		c.Pricing.Coupons = []CouponCode{{Code: models.DefaultCouponCode, Discount: models.DefaultCouponDiscount}}
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "json"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = models.StorageKey
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = models.DefaultSessionTTL
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Enabled && !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// Rates converts the configured turf list into the calculator's map form,
// falling back to the stock rates when the list is empty.
func (c *Config) Rates() map[models.TurfSize]int {
	rates := map[models.TurfSize]int{
		models.TurfSmall: models.DefaultRateSmall,
		models.TurfLarge: models.DefaultRateLarge,
	}
	for _, t := range c.Pricing.Turfs {
		rates[t.Size] = t.RatePerHour
	}
	return rates
}

// CouponTable converts the configured coupon list to upper-case code -> discount.
func (c *Config) CouponTable() map[string]float64 {
	table := make(map[string]float64, len(c.Pricing.Coupons))
	for _, cp := range c.Pricing.Coupons {
		table[strings.ToUpper(strings.TrimSpace(cp.Code))] = cp.Discount
	}
	return table
}
