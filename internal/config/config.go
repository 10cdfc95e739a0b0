// Package config loads service configuration from the environment, with
// an optional .env file for local runs.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	LegTimeout   time.Duration `env:"POSTING_LEG_TIMEOUT" envDefault:"5s"`
	PostgresDSN  string        `env:"POSTGRES_DSN"`
	KafkaBrokers []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string        `env:"KAFKA_TOPIC" envDefault:"account-events"`
	KafkaGroupID string        `env:"KAFKA_GROUP_ID" envDefault:"bookentry-readmodel"`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
