package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	RedisURL    string   `mapstructure:"REDIS_URL"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Clinic service window. Hours are wall-clock hours in ClinicTZ.
	ClinicTZ        string `mapstructure:"CLINIC_TZ"`
	WindowOpenHour  int    `mapstructure:"WINDOW_OPEN_HOUR"`
	WindowCloseHour int    `mapstructure:"WINDOW_CLOSE_HOUR"`
	BookingStepMin  int    `mapstructure:"BOOKING_STEP_MIN"`
	WindowPolicy    string `mapstructure:"WINDOW_POLICY"`

	// AutoConfirm books appointments directly into CONFIRMED instead of
	// PENDING.
	AutoConfirm bool `mapstructure:"AUTO_CONFIRM"`

	// LockTTLSeconds bounds how long a booking may hold the Redis
	// per-professional lock.
	LockTTLSeconds int `mapstructure:"LOCK_TTL_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("CLINIC_TZ", "America/Manaus")
	v.SetDefault("WINDOW_OPEN_HOUR", 14)
	v.SetDefault("WINDOW_CLOSE_HOUR", 18)
	v.SetDefault("BOOKING_STEP_MIN", 30)
	v.SetDefault("WINDOW_POLICY", "reject")
	v.SetDefault("AUTO_CONFIRM", true)
	v.SetDefault("LOCK_TTL_SECONDS", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("CLINIC_TZ")
	v.BindEnv("WINDOW_OPEN_HOUR")
	v.BindEnv("WINDOW_CLOSE_HOUR")
	v.BindEnv("BOOKING_STEP_MIN")
	v.BindEnv("WINDOW_POLICY")
	v.BindEnv("AUTO_CONFIRM")
	v.BindEnv("LOCK_TTL_SECONDS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get admin access.")
		log.Println("WARNING: Set ENV=production and JWT_SECRET before deploying.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location loads the clinic time zone. Validate must have passed first.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ClinicTZ)
}

// Validate checks that the configuration is safe to run: the clinic time
// zone must load, the service window must be a sane daily range on the
// booking grid, and production must have a JWT secret.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.ClinicTZ); err != nil {
		return fmt.Errorf("CLINIC_TZ %q is not a valid IANA zone: %w", c.ClinicTZ, err)
	}
	if c.WindowOpenHour < 0 || c.WindowOpenHour > 23 {
		return fmt.Errorf("WINDOW_OPEN_HOUR must be 0..23, got %d", c.WindowOpenHour)
	}
	if c.WindowCloseHour < 1 || c.WindowCloseHour > 24 {
		return fmt.Errorf("WINDOW_CLOSE_HOUR must be 1..24, got %d", c.WindowCloseHour)
	}
	if c.WindowOpenHour >= c.WindowCloseHour {
		return fmt.Errorf("service window is empty: open %d >= close %d", c.WindowOpenHour, c.WindowCloseHour)
	}
	if c.BookingStepMin <= 0 {
		return fmt.Errorf("BOOKING_STEP_MIN must be positive, got %d", c.BookingStepMin)
	}
	if (c.WindowCloseHour-c.WindowOpenHour)*60 < c.BookingStepMin {
		return fmt.Errorf("service window is shorter than one booking step")
	}
	switch c.WindowPolicy {
	case "reject", "clamp":
	default:
		return fmt.Errorf("WINDOW_POLICY must be \"reject\" or \"clamp\", got %q", c.WindowPolicy)
	}
	if c.LockTTLSeconds <= 0 {
		return fmt.Errorf("LOCK_TTL_SECONDS must be positive, got %d", c.LockTTLSeconds)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}
