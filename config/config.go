// config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port     string
	AppEnv   string
	MongoURI string
	DBName   string

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	SessionSecret      string
	SessionMaxAge      time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	GoogleClientID string

	CORSAllowedOrigins []string
	OTPSendLimit       int
}

// Load reads the .env file (if any) and the process environment.
func Load() (Config, error) {
	envErr := godotenv.Load()

	cfg := Config{
		EnvFileLoaded: envErr == nil,

		Port:     getEnv("PORT", "8000"),
		AppEnv:   getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
		MongoURI: os.Getenv("MONGO_URI"),
		DBName:   getEnv("DB_NAME", "salus"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		AccessTokenSecret:  os.Getenv("JWT_ACCESS_TOKEN_SECRET_KEY"),
		AccessTokenExpiry:  getDuration("JWT_ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenSecret: os.Getenv("JWT_REFRESH_TOKEN_SECRET_KEY"),
		RefreshTokenExpiry: getDuration("JWT_REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionMaxAge:      getDuration("SESSION_MAX_AGE", 24*time.Hour),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "Salus <no-reply@salus.app>"),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		OTPSendLimit:       getInt("OTP_SEND_LIMIT", 5),
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGODB_URI")
	}
	if cfg.MongoURI == "" && cfg.IsDevelopment() {
		cfg.MongoURI = "mongodb://localhost:27017"
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI or MONGODB_URI is required"))
	}
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_SECRET_KEY is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_SECRET_KEY is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.AccessTokenExpiry <= 0 || c.RefreshTokenExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development") || strings.EqualFold(c.AppEnv, "dev")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getDuration accepts Go durations ("15m") and the bare-number/day forms
// ("900", "7d") used by older deployments.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if strings.HasSuffix(v, "d") {
		if n, err := strconv.Atoi(strings.TrimSuffix(v, "d")); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
