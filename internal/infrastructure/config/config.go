package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	Store           string        `mapstructure:"STORE"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	MaxSlotsPerTime int `mapstructure:"MAX_SLOTS_PER_TIME"`

	CaptchaDisabled    bool          `mapstructure:"CAPTCHA_DISABLED"`
	RecaptchaSecretKey string        `mapstructure:"RECAPTCHA_SECRET_KEY"`
	RecaptchaVerifyURL string        `mapstructure:"RECAPTCHA_VERIFY_URL"`
	RecaptchaMinScore  float64       `mapstructure:"RECAPTCHA_MIN_SCORE"`
	RecaptchaTimeout   time.Duration `mapstructure:"RECAPTCHA_TIMEOUT"`

	AdminUsername     string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword     string        `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTTTL            time.Duration `mapstructure:"JWT_TTL"`
	CookieSecure      bool          `mapstructure:"COOKIE_SECURE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	BookingRateLimit int           `mapstructure:"BOOKING_RATE_LIMIT"`
	LoginRateLimit   int           `mapstructure:"LOGIN_RATE_LIMIT"`
	RateLimitWindow  time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	MercadoPagoAccessToken string `mapstructure:"MERCADOPAGO_ACCESS_TOKEN"`

	OTLPEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "STORE", "SHUTDOWN_TIMEOUT",
	"MAX_SLOTS_PER_TIME",
	"CAPTCHA_DISABLED", "RECAPTCHA_SECRET_KEY", "RECAPTCHA_VERIFY_URL", "RECAPTCHA_MIN_SCORE", "RECAPTCHA_TIMEOUT",
	"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "JWT_SECRET", "JWT_TTL", "COOKIE_SECURE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"BOOKING_RATE_LIMIT", "LOGIN_RATE_LIMIT", "RATE_LIMIT_WINDOW",
	"CORS_ORIGINS",
	"MERCADOPAGO_ACCESS_TOKEN",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
}

// Load reads configuration from the environment (and .env when present).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE", StoreDynamoDB)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MAX_SLOTS_PER_TIME", 2)
	v.SetDefault("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	v.SetDefault("RECAPTCHA_TIMEOUT", "5s")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BOOKING_RATE_LIMIT", 5)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("OTEL_SERVICE_NAME", "clinic-api")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Store != StoreDynamoDB && c.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreDynamoDB, StoreMemory, c.Store))
	}
	if c.MaxSlotsPerTime < 1 {
		errs = append(errs, errors.New("MAX_SLOTS_PER_TIME must be at least 1"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if c.AdminUsername == "" || (c.AdminPassword == "" && c.AdminPasswordHash == "") {
			errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD or ADMIN_PASSWORD_HASH are required in production"))
		}
		if !c.CaptchaDisabled && c.RecaptchaSecretKey == "" {
			errs = append(errs, errors.New("RECAPTCHA_SECRET_KEY is required unless CAPTCHA_DISABLED=true"))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
