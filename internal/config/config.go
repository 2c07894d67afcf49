package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment. Policy
// ceilings (daily window, pass length, scan confirmation timing) live here
// so a deployment can retune them without a code change.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Seed admin account, used when no admin exists in the store yet.
	AdminEmail    string
	AdminPassword string

	// PublicBaseURL is what the cancellation QR encodes; it must be
	// reachable from the phone scanning the code, not just localhost.
	PublicBaseURL string
	MediaDir      string

	MaxDailyWindow time.Duration
	MaxPassDays    int
	MaxYearlyDays  int

	ScanPollInterval time.Duration
	ScanConfirmWait  time.Duration
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		MediaDir:         getEnv("MEDIA_DIR", "media"),
		MaxDailyWindow:   getDuration("MAX_DAILY_WINDOW", 6*time.Hour),
		MaxPassDays:      getInt("MAX_PASS_DAYS", 30),
		MaxYearlyDays:    getInt("MAX_YEARLY_DAYS", 366),
		ScanPollInterval: getDuration("SCAN_POLL_INTERVAL", 2*time.Second),
		ScanConfirmWait:  getDuration("SCAN_CONFIRM_WAIT", 2*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
