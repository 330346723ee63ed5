package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	HourlyRate        float64
	OvertimeWeekHours float64

	RosterFresh time.Duration
	RosterEvict time.Duration

	ReconcileInterval  time.Duration
	ReconcileBatchSize int

	StoreTimeout time.Duration

	RateLimitPerMinute     int
	RateLimitBurst         int
	UserRateLimitPerMinute int
	UserRateLimitBurst     int

	NotifyProvider     string
	NotifyWebhookURL   string
	NotifyWebhookToken string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:                   port,
		DatabaseURL:            os.Getenv("DB_DSN"),
		HourlyRate:             readFloat("HOURLY_RATE", 25),
		OvertimeWeekHours:      readFloat("OVERTIME_WEEK_HOURS", 40),
		RosterFresh:            readDurationSeconds("ROSTER_FRESH_SECONDS", 300),
		RosterEvict:            readDurationSeconds("ROSTER_EVICT_SECONDS", 600),
		ReconcileInterval:      readDurationSeconds("RECONCILE_INTERVAL_SECONDS", 300),
		ReconcileBatchSize:     readInt("RECONCILE_BATCH_SIZE", 100),
		StoreTimeout:           readDurationSeconds("STORE_TIMEOUT_SECONDS", 5),
		RateLimitPerMinute:     readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:         readInt("RATE_LIMIT_BURST", 30),
		UserRateLimitPerMinute: readInt("USER_RATE_LIMIT_PER_MIN", 600),
		UserRateLimitBurst:     readInt("USER_RATE_LIMIT_BURST", 120),
		NotifyProvider:         os.Getenv("NOTIFY_PROVIDER"),
		NotifyWebhookURL:       os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookToken:     os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
	}
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
