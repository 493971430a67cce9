package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr     string
	PostgresDSN  string // kosong = pakai storage in-memory (dev)
	KafkaBrokers []string
	ServiceName  string
	LogLevel     string
}

func Load() Config {
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:  getenv("SERVICE_NAME", "shop-api"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
