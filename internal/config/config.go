package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"subaacare-server/internal/models"
)

const devJWTSecret = "dev_only_jwt_secret_change_me"

// Config holds all configuration for our application
type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	Database DatabaseConfig `mapstructure:",squash"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`

	// Redis backs the session denylist; empty RedisAddr disables it.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AuthRateLimitPerMin int `mapstructure:"AUTH_RATE_LIMIT_PER_MIN"`
	AuthRateLimitBurst  int `mapstructure:"AUTH_RATE_LIMIT_BURST"`

	BookingRequireSlot   bool   `mapstructure:"BOOKING_REQUIRE_SLOT"`
	HousekeepingSchedule string `mapstructure:"HOUSEKEEPING_SCHEDULE"`
	MaxDocumentBytes     int64  `mapstructure:"MAX_DOCUMENT_BYTES"`
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string `mapstructure:"DB_DRIVER"`
	DSN      string `mapstructure:"DATABASE_DSN"`
	Host     string `mapstructure:"DB_HOST"`
	Port     string `mapstructure:"DB_PORT"`
	Username string `mapstructure:"DB_USERNAME"`
	Password string `mapstructure:"DB_PASSWORD"`
	Name     string `mapstructure:"DB_NAME"`
	Debug    bool   `mapstructure:"DB_DEBUG"`
}

var defaults = map[string]interface{}{
	"PORT":                    "3001",
	"ENV":                     "development",
	"LOG_LEVEL":               "info",
	"DB_DRIVER":               "mysql",
	"DATABASE_DSN":            "",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "",
	"DB_USERNAME":             "root",
	"DB_PASSWORD":             "",
	"DB_NAME":                 "subaacare",
	"DB_DEBUG":                false,
	"JWT_SECRET":              "",
	"SESSION_TTL_HOURS":       168,
	"CORS_ORIGINS":            "http://localhost:3000",
	"REDIS_ADDR":              "",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"AUTH_RATE_LIMIT_PER_MIN": 30,
	"AUTH_RATE_LIMIT_BURST":   10,
	"BOOKING_REQUIRE_SLOT":    true,
	"HOUSEKEEPING_SCHEDULE":   "@every 15m",
	"MAX_DOCUMENT_BYTES":      5 << 20,
}

// Load reads configuration from the environment, optionally overlaid on a
// config.yaml in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want mysql or postgres", c.Database.Driver)
	}

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("invalid SESSION_TTL_HOURS: %d", c.SessionTTLHours)
	}
	if c.AuthRateLimitPerMin <= 0 || c.AuthRateLimitBurst <= 0 {
		return errors.New("AUTH_RATE_LIMIT_PER_MIN and AUTH_RATE_LIMIT_BURST must be positive")
	}
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("invalid MAX_DOCUMENT_BYTES: %d", c.MaxDocumentBytes)
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SessionTTL is the fixed lifetime of session tokens.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// AllowedOrigins splits CORS_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// BuildDSN returns DATABASE_DSN, or builds one for the driver from the DB_* parts.
func (d DatabaseConfig) BuildDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	port := d.Port
	if d.Driver == "postgres" {
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, port, d.Username, d.Password, d.Name)
	}
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, port, d.Name)
}

// Models converts to the connection settings models.Open expects.
func (d DatabaseConfig) Models() models.DatabaseConfig {
	return models.DatabaseConfig{Driver: d.Driver, DSN: d.BuildDSN(), Debug: d.Debug}
}
