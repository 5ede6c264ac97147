// Package config reads runtime settings from the environment, with defaults
// suited to local docker-compose development.
package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	KafkaTopic      string
	ServiceName     string
	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getenv("MONGO_DB_NAME", "thriftmarket"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		KafkaBrokers:    splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:      getenv("KAFKA_TOPIC", "marketplace-events"),
		ServiceName:     getenv("SERVICE_NAME", "transaction-engine"),
		ShutdownTimeout: 10 * time.Second,
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
