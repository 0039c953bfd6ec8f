package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	CORSOrigins    string

	// City is the single operating city of this deployment.
	City   string
	AppURL string

	RedisAddr string

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string
	EmailFrom string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadPreset string

	// ResetSweepSchedule is a cron expression; empty disables the sweep.
	ResetSweepSchedule string

	// AuthRateLimit is requests per minute per IP on credential endpoints; 0 disables it.
	AuthRateLimit int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file loaded, using environment variables directly")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "8000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		CORSOrigins:            getEnv("CORS_ORIGINS", "*"),
		City:                   getEnv("CITY", "Ibadan"),
		AppURL:                 strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		SMTPHost:               os.Getenv("SMTP_HOST"),
		EmailUser:              os.Getenv("EMAIL_USER"),
		EmailPass:              os.Getenv("EMAIL_PASS"),
		EmailFrom:              getEnv("EMAIL_FROM", os.Getenv("EMAIL_USER")),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadPreset: os.Getenv("CLOUDINARY_UPLOAD_PRESET"),
		ResetSweepSchedule:     os.Getenv("RESET_SWEEP_SCHEDULE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	limit := getEnv("AUTH_RATE_LIMIT", "10")
	cfg.AuthRateLimit, err = strconv.Atoi(limit)
	if err != nil || cfg.AuthRateLimit < 0 {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT %q", limit)
	}

	port := getEnv("SMTP_PORT", "587")
	cfg.SMTPPort, err = strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
