package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Optional backends stay empty
// when unset and the bootstrap falls back to in-memory implementations.
type Server struct {
	Addr           string
	JWTSigningKey  string
	AdminTokenHash string

	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server and workers.
var ShutdownTimeout = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ORGANMATCH_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	topic := os.Getenv("KAFKA_TOPIC")

	return Server{
		Addr:           addr,
		JWTSigningKey:  jwtSigningKey,
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
	}
}
