package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	PostgresDSN string

	TokenSecret string
	SessionTTL  time.Duration
	ResetTTL    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	PublicBaseURL string
	CORSOrigins   []string
}

func Load() *Config {
	return &Config{
		Port:        getenv("PORT", "8080"),
		MongoURI:    getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("MONGO_DB", "skincareapp"),
		PostgresDSN: getenv("POSTGRES_DSN", ""),

		TokenSecret: getenv("TOKEN_SECRET", ""),
		SessionTTL:  getduration("SESSION_TTL", time.Hour),
		ResetTTL:    getduration("RESET_TTL", 15*time.Minute),

		SMTPHost:     getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getint("SMTP_PORT", 587),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),

		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:3000"),
		CORSOrigins:   getlist("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func getlist(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
