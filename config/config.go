package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	DBDriver string // sqlite|postgres
	DBPath   string
	Postgres PostgresConfig

	FrostWindow       time.Duration
	LivenessTolerance float64

	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string

	KafkaBrokers       []string
	KafkaReadingsTopic string

	RedisAddr     string
	RedisPassword string

	RequireUser bool
	DevUserID   string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Debug("[cfg] no .env file loaded", "error", err)
	}

	get := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return def
	}
	dur := func(k string, def time.Duration) time.Duration {
		raw := get(k, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			slog.Warn("[cfg] invalid duration, using default", "key", k, "value", raw, "default", def)
			return def
		}
		return d
	}
	num := func(k string, def float64) float64 {
		raw := get(k, "")
		if raw == "" {
			return def
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 {
			slog.Warn("[cfg] invalid number, using default", "key", k, "value", raw, "default", def)
			return def
		}
		return f
	}

	cfg := AppConfig{
		Port:      get("PORT", "8080"),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "text"),

		DBDriver: strings.ToLower(get("DB_DRIVER", "sqlite")),
		DBPath:   get("DB_PATH", "agrisense.db"),
		Postgres: PostgresConfig{
			Host:     get("POSTGRES_HOST", "localhost"),
			Port:     get("POSTGRES_PORT", "5432"),
			User:     get("POSTGRES_USER", "agrisense"),
			Password: get("POSTGRES_PASSWORD", ""),
			DBName:   get("POSTGRES_DB", "agrisense"),
			SSLMode:  get("POSTGRES_SSLMODE", "disable"),
		},

		FrostWindow:       dur("FROST_WINDOW", time.Hour),
		LivenessTolerance: num("LIVENESS_TOLERANCE", 3),

		MQTTBrokerURL:   get("MQTT_BROKER_URL", ""),
		MQTTClientID:    get("MQTT_CLIENT_ID", "agrisense"),
		MQTTTopicPrefix: get("MQTT_TOPIC_PREFIX", "agrisense/devices/"),

		KafkaBrokers:       splitList(get("KAFKA_BROKERS", "")),
		KafkaReadingsTopic: get("KAFKA_READINGS_TOPIC", "agrisense.readings"),

		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),

		RequireUser: get("REQUIRE_USER", "false") == "true",
		DevUserID:   get("DEV_USER_ID", "dev-user"),
	}
	slog.Info("[cfg] loaded",
		"port", cfg.Port,
		"db_driver", cfg.DBDriver,
		"frost_window", cfg.FrostWindow,
		"mqtt", cfg.MQTTBrokerURL != "",
		"kafka", len(cfg.KafkaBrokers) > 0,
		"redis", cfg.RedisAddr != "",
	)
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
