package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	WSSURL      string
	KafkaBroker string
	KafkaTopic  string
	RedisURL    string
	LogLevel    string

	BatchSize     int
	BatchInterval time.Duration
}

var cfg *Config

func GetConfig() (*Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	cfg = &Config{}
	if err := load(cfg); err != nil {
		cfg = nil
		return nil, err
	}
	return cfg, nil
}

const (
	_WSS_URL           = "WSS_URL"
	_KAFKA_BROKER      = "KAFKA_BROKER"
	_KAFKA_TOPIC       = "KAFKA_TOPIC"
	_REDIS_URL         = "REDIS_URL"
	_BATCH_SIZE        = "BATCH_SIZE"
	_BATCH_INTERVAL_MS = "BATCH_INTERVAL_MS"
	_LOG_LEVEL         = "LOG_LEVEL"

	defaultKafkaTopic      = "mev-alerts"
	defaultBatchSize       = 100
	defaultBatchIntervalMs = 1000
	defaultLogLevel        = "info"
)

func load(c *Config) error {
	godotenv.Load()

	c.WSSURL = os.Getenv(_WSS_URL)
	if c.WSSURL == "" {
		return buildLoadingEnvError(_WSS_URL)
	}

	c.KafkaBroker = os.Getenv(_KAFKA_BROKER)
	if c.KafkaBroker == "" {
		return buildLoadingEnvError(_KAFKA_BROKER)
	}

	c.RedisURL = os.Getenv(_REDIS_URL)
	if c.RedisURL == "" {
		return buildLoadingEnvError(_REDIS_URL)
	}

	c.KafkaTopic = os.Getenv(_KAFKA_TOPIC)
	if c.KafkaTopic == "" {
		c.KafkaTopic = defaultKafkaTopic
	}

	c.LogLevel = os.Getenv(_LOG_LEVEL)
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	c.BatchSize = defaultBatchSize
	if v := os.Getenv(_BATCH_SIZE); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return buildLoadingEnvError(_BATCH_SIZE)
		}
		c.BatchSize = n
	}

	intervalMs := defaultBatchIntervalMs
	if v := os.Getenv(_BATCH_INTERVAL_MS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return buildLoadingEnvError(_BATCH_INTERVAL_MS)
		}
		intervalMs = n
	}
	c.BatchInterval = time.Duration(intervalMs) * time.Millisecond

	return nil
}

func buildLoadingEnvError(key string) error {
	return fmt.Errorf("error with variable: %s", key)
}
